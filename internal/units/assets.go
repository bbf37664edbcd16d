package units

import (
	"context"
	"fmt"
	"path"
	"runtime"

	"github.com/go-git/go-billy/v5"
	plaitfs "go.trai.ch/plait/internal/adapters/fs"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/pipeline"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// CopyAssets copies fonts, images, php, vendor files and templates verbatim
// into the output root.
type CopyAssets struct {
	unit
	fsys   billy.Filesystem
	walker *plaitfs.Walker
}

// NewCopyAssets creates the copyAssets unit.
func NewCopyAssets(d Deps) *CopyAssets {
	return &CopyAssets{unit: pipeline.CopyAssets, fsys: d.FS, walker: d.Walker}
}

func (u *CopyAssets) Run(ctx context.Context, cfg *domain.Config) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, dir := range domain.CopiedDirs {
		src, dst := cfg.Paths.Src(dir), cfg.Out(dir)
		if src == dst {
			continue
		}

		files, err := u.walker.Files(u.fsys, src, nil)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrReadFailed.Error()), "path", src)
		}

		for _, file := range files {
			g.Go(func() error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				data, err := readSource(u.fsys, file)
				if err != nil {
					return err
				}
				return writeOutput(u.fsys, path.Join(dst, relTo(src, file)), data)
			})
		}
	}

	return g.Wait()
}

// Images losslessly optimizes every image of the source tree into the dist
// root, adding a .webp alternate for png and jpg files. Images never branch
// on the build mode.
type Images struct {
	unit
	fsys      billy.Filesystem
	logger    ports.Logger
	resolver  ports.InputResolver
	optimizer ports.ImageOptimizer
}

// NewImages creates the images unit.
func NewImages(d Deps) *Images {
	return &Images{
		unit:      pipeline.Images,
		fsys:      d.FS,
		logger:    d.Logger,
		resolver:  d.Resolver,
		optimizer: d.Images,
	}
}

func (u *Images) Run(ctx context.Context, cfg *domain.Config) error {
	src := cfg.Paths.Source
	patterns := make([]string, 0, len(domain.ImagePatterns)+len(domain.DependencyMetadata))
	for _, p := range domain.ImagePatterns {
		patterns = append(patterns, cfg.Paths.Src(p))
	}
	for _, p := range domain.DependencyMetadata {
		patterns = append(patterns, "!"+p+"/**")
	}

	files, err := u.resolver.ResolveInputs(u.fsys, patterns)
	if err != nil {
		return err
	}

	opts := ports.ImageOptions{Tools: cfg.Settings.Tools, Dir: cfg.Root}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, file := range files {
		g.Go(func() error {
			data, err := readSource(u.fsys, file)
			if err != nil {
				return err
			}
			optimized, err := u.optimizer.Optimize(ctx, domain.Asset{Path: file, Data: data}, opts)
			if err != nil {
				return err
			}
			for _, asset := range optimized {
				out := domain.CleanRel(path.Join(cfg.Paths.Dist, relTo(src, asset.Path)))
				if err := writeOutput(u.fsys, out, asset.Data); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	u.logger.Info(fmt.Sprintf("optimized %d image(s) into %s", len(files), cfg.Paths.Dist))
	return nil
}
