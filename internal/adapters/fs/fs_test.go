package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/plait/internal/adapters/fs"
	"go.trai.ch/plait/internal/core/domain"
)

func newTree(t *testing.T, files ...string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for _, name := range files {
		require.NoError(t, util.WriteFile(fsys, name, []byte(name), domain.FilePerm))
	}
	return fsys
}

func TestWalker_WalkFiles(t *testing.T) {
	fsys := newTree(t,
		"src/assets/js/main.js",
		"src/assets/css/main.scss",
		"package.json",
		".git/config",
		".jj/store",
	)

	files := slices.Collect(fs.NewWalker().WalkFiles(fsys, ".", nil))

	assert.Equal(t, []string{
		"package.json",
		"src/assets/css/main.scss",
		"src/assets/js/main.js",
	}, files)
}

func TestWalker_WalkFiles_Ignores(t *testing.T) {
	fsys := newTree(t,
		"dist/assets/css/main.css",
		"dev/index.html",
		"node_modules/jquery/dist/jquery.js",
		"src/node_modules/nested.js",
		"src/templates/index.html",
		"src/debug.log",
		"package-lock.json",
		"plait.yaml",
	)

	files := slices.Collect(fs.NewWalker().WalkFiles(fsys, ".", []string{
		"dist", "dev", "node_modules", "package-lock.json", "*.log",
	}))

	assert.Equal(t, []string{"plait.yaml", "src/templates/index.html"}, files)
}

func TestWalker_WalkFiles_Subtree(t *testing.T) {
	fsys := newTree(t, "src/assets/img/a.png", "src/assets/img/icons/b.svg", "src/assets/js/main.js")

	files := slices.Collect(fs.NewWalker().WalkFiles(fsys, "src/assets/img", nil))

	assert.Equal(t, []string{"src/assets/img/a.png", "src/assets/img/icons/b.svg"}, files)
}

func TestWalker_WalkFiles_MissingRoot(t *testing.T) {
	files, err := fs.NewWalker().Files(memfs.New(), "src/assets/font", nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWalker_WalkFiles_EarlyStop(t *testing.T) {
	fsys := newTree(t, "a.txt", "b.txt", "c.txt")

	var seen []string
	for file := range fs.NewWalker().WalkFiles(fsys, ".", nil) {
		seen = append(seen, file)
		if len(seen) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"a.txt", "b.txt"}, seen)
}

func TestIgnored(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"dist", []string{"dist"}, true},
		{"src/dist", []string{"dist"}, true},
		{"src/dist", []string{"./dist/**"}, false},
		{"dist/main.css", []string{"dist/**"}, true},
		{"src/a.log", []string{"*.log"}, true},
		{"src/a.js", []string{"*.log"}, false},
		{"src.zip", []string{"src.zip"}, true},
		{"./src.zip", []string{"src.zip"}, true},
		{"src.zip", []string{"/src.zip"}, true},
		{"src/src.zip", []string{"/src.zip"}, false},
		{"src/assets/src.zip", []string{"/src.zip"}, false},
		{"dist/main.css", []string{"/dist/**"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, fs.Ignored(tt.path, tt.patterns))
		})
	}
}

func TestOpen(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.js"), []byte("a"), domain.PrivateFilePerm))

	fsys := fs.Open(root)
	data, err := util.ReadFile(fsys, "src/a.js")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	require.NoError(t, util.WriteFile(fsys, "dev/b.js", []byte("b"), domain.FilePerm))
	_, err = os.Stat(filepath.Join(root, "dev", "b.js"))
	require.NoError(t, err)
}
