package units

import (
	"context"
	"path"

	"github.com/go-git/go-billy/v5"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// BuildTemplates expands the top-level page templates into the output root.
type BuildTemplates struct {
	unit
	fsys     billy.Filesystem
	resolver ports.InputResolver
	includer ports.Includer
	minifier ports.Minifier
}

// NewBuildTemplates creates the buildTemplates unit.
func NewBuildTemplates(d Deps) *BuildTemplates {
	return &BuildTemplates{
		unit:     pipeline.BuildTemplates,
		fsys:     d.FS,
		resolver: d.Resolver,
		includer: d.Includer,
		minifier: d.Minifier,
	}
}

func (u *BuildTemplates) Run(_ context.Context, cfg *domain.Config) error {
	pages, err := u.resolver.ResolveInputs(u.fsys, []string{cfg.Paths.Src(domain.TemplatesDir, "*.html")})
	if err != nil {
		return err
	}

	for _, page := range pages {
		html, err := u.includer.Include(u.fsys, page)
		if err != nil {
			return err
		}
		if cfg.Strategy.Minify {
			if html, err = u.minifier.Minify(ports.MinifyHTML, html); err != nil {
				return zerr.With(err, "path", page)
			}
		}
		if err := writeOutput(u.fsys, cfg.Out(path.Base(page)), html); err != nil {
			return err
		}
	}
	return nil
}
