package plugins

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ImageOptimizer = (*ImageOptimizer)(nil)

// ImageOptimizer recompresses images with external tools and adds a lossless
// WebP alternate for PNG and JPEG sources. A missing tool is reported once
// and the image passes through unchanged.
type ImageOptimizer struct {
	executor ports.Executor
	logger   ports.Logger
	warned   sync.Map
}

// NewImageOptimizer creates a new ImageOptimizer.
func NewImageOptimizer(executor ports.Executor, logger ports.Logger) *ImageOptimizer {
	return &ImageOptimizer{executor: executor, logger: logger}
}

// Optimize returns the optimized image followed by its alternates.
func (o *ImageOptimizer) Optimize(ctx context.Context, img domain.Asset, opts ports.ImageOptions) ([]domain.Asset, error) {
	ext := strings.ToLower(path.Ext(img.Path))

	sc, err := newScratch("plait-img-")
	if err != nil {
		return nil, err
	}
	defer func() { _ = sc.Close() }()

	optimized := domain.Asset{Path: img.Path, Data: img.Data}
	if argv := optimizerFor(ext, opts.Tools); len(argv) > 0 {
		data, ok, err := o.run(ctx, sc, argv, img.Data, ext, ext, opts.Dir)
		if err != nil {
			return nil, zerr.With(err, "path", img.Path)
		}
		if ok {
			optimized.Data = data
		}
	}

	assets := []domain.Asset{optimized}
	if !webpSource(ext) || len(opts.Tools.Cwebp) == 0 {
		return assets, nil
	}

	data, ok, err := o.run(ctx, sc, opts.Tools.Cwebp, optimized.Data, ext, ".webp", opts.Dir)
	if err != nil {
		return nil, zerr.With(err, "path", img.Path)
	}
	if ok {
		assets = append(assets, domain.Asset{
			Path: strings.TrimSuffix(img.Path, path.Ext(img.Path)) + ".webp",
			Data: data,
		})
	}
	return assets, nil
}

// run feeds data to argv through scratch files. ok is false when the tool
// is not installed.
func (o *ImageOptimizer) run(
	ctx context.Context, sc *scratch, argv []string, data []byte, inExt, outExt, dir string,
) ([]byte, bool, error) {
	in, out := "in"+inExt, "out"+outExt
	if err := util.WriteFile(sc, in, data, domain.PrivateFilePerm); err != nil {
		return nil, false, zerr.Wrap(err, domain.ErrWriteFailed.Error())
	}
	_ = sc.Remove(out)

	_, err := o.executor.Capture(ctx, ports.Command{
		Args: expandArgs(argv, map[string]string{"in": sc.Abs(in), "out": sc.Abs(out)}),
		Dir:  dir,
		Env:  toolEnv(dir),
	})
	if toolMissing(err) {
		o.warnMissing(argv[0])
		return nil, false, nil
	}
	if err != nil {
		return nil, false, zerr.Wrap(err, domain.ErrTransformFailed.Error())
	}

	result, err := util.ReadFile(sc, out)
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrTransformFailed.Error()), "tool", argv[0])
	}
	return result, true, nil
}

func (o *ImageOptimizer) warnMissing(tool string) {
	if _, loaded := o.warned.LoadOrStore(tool, struct{}{}); !loaded {
		o.logger.Warn(tool + " not found on PATH, images pass through unchanged")
	}
}

func optimizerFor(ext string, tools domain.ToolSettings) []string {
	switch ext {
	case ".gif":
		return tools.Gifsicle
	case ".jpg", ".jpeg":
		return tools.Jpegtran
	case ".png":
		return tools.Optipng
	case ".svg":
		return tools.Svgo
	default:
		return nil
	}
}

func webpSource(ext string) bool {
	return ext == ".png" || ext == ".jpg" || ext == ".jpeg"
}
