package fs

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using doublestar patterns.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs resolves the given patterns to a sorted, de-duplicated list of
// files. Patterns prefixed with "!" remove earlier matches. A pattern that
// matches nothing is not an error.
func (r *Resolver) ResolveInputs(fsys billy.Filesystem, patterns []string) ([]string, error) {
	var include, exclude []string
	for _, raw := range patterns {
		negated := strings.HasPrefix(raw, "!")
		pattern := domain.CleanRel(strings.TrimPrefix(raw, "!"))
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(domain.ErrGlobFailed, "pattern", raw)
		}
		if negated {
			exclude = append(exclude, pattern)
		} else {
			include = append(include, pattern)
		}
	}

	unique := make(map[string]struct{})
	for _, pattern := range include {
		base, _ := doublestar.SplitPattern(pattern)
		files, err := r.walker.Files(fsys, base, nil)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrReadFailed.Error()), "path", base)
		}
		for _, file := range files {
			if ok, _ := doublestar.Match(pattern, file); !ok {
				continue
			}
			if excluded(file, exclude) {
				continue
			}
			unique[file] = struct{}{}
		}
	}

	result := make([]string, 0, len(unique))
	for file := range unique {
		result = append(result, file)
	}
	slices.Sort(result)

	return result, nil
}

func excluded(file string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, file); ok {
			return true
		}
	}
	return false
}
