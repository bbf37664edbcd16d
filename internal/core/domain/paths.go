package domain

import (
	"path"
	"strings"
)

// PathSet holds the three project-relative roots of the pipeline.
type PathSet struct {
	Source string
	Dev    string
	Dist   string
}

// DefaultPaths returns the conventional src/dev/dist layout.
func DefaultPaths() PathSet {
	return PathSet{
		Source: DefaultSourceDir,
		Dev:    DefaultDevDir,
		Dist:   DefaultDistDir,
	}
}

// ResolvePaths applies the --srcPath flag to defaults.
// "this" collapses every root onto the project root.
func ResolvePaths(srcPath string, defaults PathSet) PathSet {
	if srcPath == InPlaceSourcePath {
		return PathSet{Source: ProjectRoot, Dev: ProjectRoot, Dist: ProjectRoot}
	}
	return PathSet{
		Source: CleanRel(defaults.Source),
		Dev:    CleanRel(defaults.Dev),
		Dist:   CleanRel(defaults.Dist),
	}
}

// InPlace reports whether the source root doubles as an output root.
func (p PathSet) InPlace() bool {
	return p.Source == p.Dev || p.Source == p.Dist
}

// Src joins elem onto the source root.
func (p PathSet) Src(elem ...string) string {
	return path.Join(append([]string{p.Source}, elem...)...)
}

// CleanRel normalizes a project-relative path to slash form without a
// leading "./" or trailing slash. The empty path becomes ".".
func CleanRel(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ProjectRoot
	}
	return p
}

// Within reports whether child equals parent or lies beneath it.
// Both paths are project-relative.
func Within(child, parent string) bool {
	child, parent = CleanRel(child), CleanRel(parent)
	if parent == ProjectRoot || child == parent {
		return true
	}
	return strings.HasPrefix(child, parent+"/")
}
