package units

import (
	"context"
	"fmt"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// BuildFonts regenerates the icon font from the SVG glyphs. The output lives
// in the source tree so the stylesheet can import the partial.
type BuildFonts struct {
	unit
	fsys      billy.Filesystem
	logger    ports.Logger
	resolver  ports.InputResolver
	generator ports.IconFontGenerator
}

// NewBuildFonts creates the buildFonts unit.
func NewBuildFonts(d Deps) *BuildFonts {
	return &BuildFonts{
		unit:      pipeline.BuildFonts,
		fsys:      d.FS,
		logger:    d.Logger,
		resolver:  d.Resolver,
		generator: d.IconFont,
	}
}

// Run wipes the icon-font directory and regenerates it.
func (u *BuildFonts) Run(ctx context.Context, cfg *domain.Config) error {
	outDir := cfg.Paths.Src(domain.IconFontDir)
	if err := util.RemoveAll(u.fsys, outDir); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", outDir)
	}

	iconDir := cfg.Paths.Src(domain.IconsDir)
	files, err := u.resolver.ResolveInputs(u.fsys, []string{path.Join(iconDir, "**/*.svg")})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		u.logger.Info(fmt.Sprintf("no icons under %s, skipping font generation", iconDir))
		return nil
	}

	glyphs := make([]domain.Asset, 0, len(files))
	for _, file := range files {
		data, err := readSource(u.fsys, file)
		if err != nil {
			return err
		}
		glyphs = append(glyphs, domain.Asset{Path: relTo(iconDir, file), Data: data})
	}

	icons := cfg.Settings.Icons
	assets, err := u.generator.Generate(ctx, glyphs, ports.IconFontOptions{
		FontName:       icons.FontName,
		ClassName:      icons.ClassName,
		FontPath:       icons.FontPath,
		StartCodepoint: icons.StartCodepoint,
		Command:        cfg.Settings.Tools.IconFont,
		Dir:            cfg.Root,
	})
	if err != nil {
		return err
	}

	for _, asset := range assets {
		if err := writeOutput(u.fsys, path.Join(outDir, asset.Path), asset.Data); err != nil {
			return err
		}
	}

	u.logger.Info(fmt.Sprintf("generated %s from %d glyph(s)", icons.FontName, len(glyphs)))
	return nil
}
