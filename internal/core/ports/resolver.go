package ports

import "github.com/go-git/go-billy/v5"

// InputResolver defines the interface for resolving source globs.
//
//go:generate mockgen -destination=mocks/resolver_mock.go -package=mocks -source=resolver.go
type InputResolver interface {
	// ResolveInputs expands doublestar patterns (with "!" negations) to the
	// sorted list of matching regular files.
	ResolveInputs(fsys billy.Filesystem, patterns []string) ([]string, error)
}
