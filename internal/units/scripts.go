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

// BuildScripts expands includes in one script entry and writes it with its
// .min sibling.
type BuildScripts struct {
	unit
	entry    string
	fsys     billy.Filesystem
	includer ports.Includer
	minifier ports.Minifier
}

// NewBuildScripts creates the buildScripts unit for assets/js/main.js.
func NewBuildScripts(d Deps) *BuildScripts {
	return newScriptUnit(pipeline.BuildScripts, domain.ScriptEntry, d)
}

// NewBuildScriptsVendor creates the buildScriptsVendor unit for assets/js/vendor.js.
func NewBuildScriptsVendor(d Deps) *BuildScripts {
	return newScriptUnit(pipeline.BuildScriptsVendor, domain.VendorScriptEntry, d)
}

func newScriptUnit(name, entry string, d Deps) *BuildScripts {
	return &BuildScripts{
		unit:     unit(name),
		entry:    entry,
		fsys:     d.FS,
		includer: d.Includer,
		minifier: d.Minifier,
	}
}

func (u *BuildScripts) Run(_ context.Context, cfg *domain.Config) error {
	code, err := u.includer.Include(u.fsys, cfg.Paths.Src(u.entry))
	if err != nil {
		return err
	}

	out := cfg.Out(u.entry)
	if err := writeOutput(u.fsys, out, code); err != nil {
		return err
	}

	minified := code
	if cfg.Strategy.Minify {
		if minified, err = u.minifier.Minify(ports.MinifyJS, code); err != nil {
			return zerr.With(err, "path", out)
		}
	}
	return writeOutput(u.fsys, path.Join(path.Dir(out), minSibling(path.Base(out))), minified)
}
