package units

import (
	"context"
	"path"

	"github.com/go-git/go-billy/v5"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/pipeline"
)

const styleOutput = "main.css"

// BuildStyles compiles the stylesheet entry, adds vendor prefixes and writes
// main.css and main.min.css.
type BuildStyles struct {
	unit
	fsys     billy.Filesystem
	compiler ports.StyleCompiler
	prefixer ports.Prefixer
	minifier ports.Minifier
	reloader ports.Reloader
}

// NewBuildStyles creates the buildStyles unit.
func NewBuildStyles(d Deps) *BuildStyles {
	return &BuildStyles{
		unit:     pipeline.BuildStyles,
		fsys:     d.FS,
		compiler: d.Styles,
		prefixer: d.Prefixer,
		minifier: d.Minifier,
		reloader: d.Reloader,
	}
}

// Run builds the stylesheet and pushes it to connected browsers.
func (u *BuildStyles) Run(ctx context.Context, cfg *domain.Config) error {
	entry := cfg.Paths.Src(domain.StyleEntry)
	data, err := readSource(u.fsys, entry)
	if err != nil {
		return err
	}

	compiled, err := u.compiler.Compile(ctx, domain.Asset{Path: entry, Data: data}, ports.StyleOptions{
		SourceMap: cfg.Strategy.SourceMaps,
		LoadPaths: []string{cfg.Abs(cfg.Paths.Src(domain.StyleOutputDir)), cfg.Root},
		Command:   cfg.Settings.Tools.Sass,
		Dir:       cfg.Root,
	})
	if err != nil {
		return err
	}

	css, err := u.prefixer.Prefix(domain.Asset{Path: entry, Data: compiled}, cfg.Strategy.SourceMaps)
	if err != nil {
		return err
	}

	outDir := cfg.Out(domain.StyleOutputDir)
	if err := writeOutput(u.fsys, path.Join(outDir, styleOutput), css); err != nil {
		return err
	}

	minified := css
	if cfg.Strategy.Minify {
		if minified, err = u.minifier.Minify(ports.MinifyCSS, css); err != nil {
			return err
		}
	}
	if err := writeOutput(u.fsys, path.Join(outDir, minSibling(styleOutput)), minified); err != nil {
		return err
	}

	u.reloader.InjectStyles([]string{
		path.Join(domain.StyleOutputDir, styleOutput),
		path.Join(domain.StyleOutputDir, minSibling(styleOutput)),
	})
	return nil
}
