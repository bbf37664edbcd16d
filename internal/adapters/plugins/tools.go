package plugins

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/zerr"
)

// toolEnv puts the project's node_modules/.bin in front of PATH.
func toolEnv(root string) []string {
	if root == "" {
		return nil
	}
	return []string{"PATH=" + filepath.Join(root, "node_modules", ".bin")}
}

// expandArgs substitutes "{key}" placeholders in every argument.
func expandArgs(argv []string, vars map[string]string) []string {
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)

	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = r.Replace(arg)
	}
	return out
}

// toolMissing reports whether err means the command binary was not found.
func toolMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// scratch is a temporary directory exchanged with external tools.
type scratch struct {
	billy.Filesystem
	parent billy.Filesystem
	name   string
}

func newScratch(prefix string) (*scratch, error) {
	parent := osfs.New(os.TempDir(), osfs.WithBoundOS())
	name, err := util.TempDir(parent, ".", prefix)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWriteFailed.Error()), "path", os.TempDir())
	}
	fsys, err := parent.Chroot(name)
	if err != nil {
		_ = util.RemoveAll(parent, name)
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWriteFailed.Error()), "path", name)
	}
	return &scratch{Filesystem: fsys, parent: parent, name: name}, nil
}

// Abs returns the OS path of a scratch-relative file.
func (s *scratch) Abs(rel string) string {
	return filepath.Join(s.Root(), filepath.FromSlash(rel))
}

// Close removes the scratch directory.
func (s *scratch) Close() error {
	return util.RemoveAll(s.parent, s.name)
}
