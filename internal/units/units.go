// Package units implements the task units composed by the pipeline entry
// points. Every unit reads and writes through a billy filesystem rooted at
// the project root and consults only the Strategy for mode decisions.
package units

import (
	"bytes"
	"errors"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	plaitfs "go.trai.ch/plait/internal/adapters/fs"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

// Deps bundles the adapters the task units are built from.
type Deps struct {
	FS       billy.Filesystem
	Logger   ports.Logger
	Walker   *plaitfs.Walker
	Resolver ports.InputResolver

	Includer ports.Includer
	Prefixer ports.Prefixer
	Minifier ports.Minifier
	Styles   ports.StyleCompiler
	Images   ports.ImageOptimizer
	IconFont ports.IconFontGenerator

	Archiver ports.Archiver
	Uploader ports.Uploader

	Server   ports.PreviewServer
	Reloader ports.Reloader
	Watcher  ports.Watcher
	Runner   ports.StepRunner
}

// All returns every task unit.
func All(d Deps) []ports.Unit {
	return []ports.Unit{
		NewCleanDev(d),
		NewCleanDist(d),
		NewBuildFonts(d),
		NewBuildStyles(d),
		NewBuildScripts(d),
		NewBuildScriptsVendor(d),
		NewBuildTemplates(d),
		NewCopyAssets(d),
		NewImages(d),
		NewBrowser(d),
		NewWatch(d),
		NewBrowserReload(d),
		NewZipBuild(d),
	}
}

// readSource reads a project file, distinguishing a missing file from a
// failed read.
func readSource(fsys billy.Filesystem, name string) ([]byte, error) {
	data, err := util.ReadFile(fsys, name)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, zerr.With(domain.ErrSourceNotFound, "path", name)
	}
	return nil, zerr.With(zerr.Wrap(err, domain.ErrReadFailed.Error()), "path", name)
}

// writeOutput writes data to name unless the file already holds exactly
// those bytes, so in-place builds do not wake the watcher.
func writeOutput(fsys billy.Filesystem, name string, data []byte) error {
	if current, err := util.ReadFile(fsys, name); err == nil && bytes.Equal(current, data) {
		return nil
	}
	if err := fsys.MkdirAll(path.Dir(name), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrWriteFailed.Error()), "path", name)
	}
	if err := util.WriteFile(fsys, name, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrWriteFailed.Error()), "path", name)
	}
	return nil
}

// relTo returns p relative to root. Both are project-relative.
func relTo(root, p string) string {
	if root == domain.ProjectRoot {
		return p
	}
	return strings.TrimPrefix(p, root+"/")
}

// minSibling returns the ".min" variant of a file name: main.js -> main.min.js.
func minSibling(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + ".min" + ext
}

// unit is the name shared by every task unit.
type unit string

func (u unit) Name() string { return string(u) }
