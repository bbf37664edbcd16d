// Package fs provides project filesystem adapters built on go-billy.
package fs

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Open returns the project filesystem rooted at root.
// Paths are resolved relative to root and may not escape it.
func Open(root string) billy.Filesystem {
	return osfs.New(root, osfs.WithBoundOS())
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the slash-separated paths of all regular files below root
// in lexical order, skipping .git, .jj and anything matched by ignores.
//
// An ignore pattern without a slash matches base names at any depth, like
// "node_modules" or "*.log". Otherwise it is matched against the whole path.
// A missing root yields nothing.
func (w *Walker) WalkFiles(fsys billy.Filesystem, root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = w.walk(fsys, root, ignores, func(p string) bool { return yield(p) })
	}
}

// Files collects WalkFiles into a slice and reports walk errors.
func (w *Walker) Files(fsys billy.Filesystem, root string, ignores []string) ([]string, error) {
	var files []string
	err := w.walk(fsys, root, ignores, func(p string) bool {
		files = append(files, p)
		return true
	})
	return files, err
}

func (w *Walker) walk(fsys billy.Filesystem, root string, ignores []string, visit func(string) bool) error {
	err := util.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}

		rel := filepath.ToSlash(p)
		if w.shouldSkip(rel, info, ignores) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if !visit(rel) {
			return filepath.SkipAll
		}
		return nil
	})
	if errors.Is(err, filepath.SkipAll) {
		return nil
	}
	return err
}

func (w *Walker) shouldSkip(rel string, info os.FileInfo, ignores []string) bool {
	name := path.Base(rel)
	if info.IsDir() && (name == ".git" || name == ".jj") {
		return true
	}
	return rel != "." && Ignored(rel, ignores)
}

// Ignored reports whether the slash-separated path rel matches one of the patterns.
// A pattern without a slash matches the base name at any depth; a leading
// slash anchors a pattern to the whole path.
func Ignored(rel string, patterns []string) bool {
	rel = strings.TrimPrefix(rel, "./")
	name := path.Base(rel)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(pattern, "./")
		target := rel
		if anchored, ok := strings.CutPrefix(pattern, "/"); ok {
			pattern = anchored
		} else if !strings.Contains(pattern, "/") {
			target = name
		}
		if ok, _ := doublestar.Match(pattern, target); ok {
			return true
		}
	}
	return false
}
