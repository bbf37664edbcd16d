// Package plugins implements the transformation plugins behind the ports used
// by task units: file includes, style compilation, prefixing, minification,
// image optimization and icon-font generation.
package plugins

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Includer = (*Includer)(nil)

const (
	// IncludePrefix starts every directive and variable reference.
	IncludePrefix = "//@@"

	includeDirective = IncludePrefix + "include("
)

// Includer expands //@@include('file', {"key": "value"}) directives.
// Included files may reference context values as //@@key.
type Includer struct{}

// NewIncluder creates a new Includer.
func NewIncluder() *Includer {
	return &Includer{}
}

// Include returns the expanded content of name.
func (i *Includer) Include(fsys billy.Filesystem, name string) ([]byte, error) {
	return i.expand(fsys, domain.CleanRel(name), nil, nil)
}

func (i *Includer) expand(fsys billy.Filesystem, name string, vars map[string]any, stack []string) ([]byte, error) {
	if slices.Contains(stack, name) {
		chain := strings.Join(append(slices.Clone(stack), name), " -> ")
		return nil, zerr.With(zerr.With(domain.ErrIncludeCycle, "path", name), "chain", chain)
	}

	data, err := util.ReadFile(fsys, name)
	if err != nil {
		return nil, readError(err, name, stack)
	}

	data = substitute(data, vars)
	stack = append(slices.Clip(stack), name)

	var out bytes.Buffer
	rest := data
	for {
		idx := bytes.Index(rest, []byte(includeDirective))
		if idx < 0 {
			out.Write(rest)
			break
		}
		out.Write(rest[:idx])

		rest = rest[idx+len(includeDirective):]
		target, local, n, err := parseDirective(rest)
		if err != nil {
			return nil, zerr.With(err, "path", name)
		}
		rest = rest[n:]

		merged := maps.Clone(vars)
		if merged == nil {
			merged = make(map[string]any, len(local))
		}
		maps.Copy(merged, local)

		content, err := i.expand(fsys, domain.CleanRel(path.Join(path.Dir(name), target)), merged, stack)
		if err != nil {
			return nil, err
		}
		out.Write(content)
	}

	return out.Bytes(), nil
}

func readError(err error, name string, stack []string) error {
	if len(stack) == 0 {
		if errors.Is(err, fs.ErrNotExist) {
			return zerr.With(domain.ErrSourceNotFound, "path", name)
		}
		return zerr.With(zerr.Wrap(err, domain.ErrReadFailed.Error()), "path", name)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.With(domain.ErrIncludeNotFound, "path", name), "from", stack[len(stack)-1])
	}
	return zerr.With(zerr.Wrap(err, domain.ErrReadFailed.Error()), "path", name)
}

// parseDirective parses the arguments following "include(" and returns the
// target path, the optional context object and the number of bytes consumed
// including the closing parenthesis.
func parseDirective(b []byte) (string, map[string]any, int, error) {
	pos := skipSpace(b, 0)
	if pos >= len(b) || (b[pos] != '\'' && b[pos] != '"') {
		return "", nil, 0, directiveError("expected quoted path")
	}
	quote := b[pos]
	end := bytes.IndexByte(b[pos+1:], quote)
	if end < 0 {
		return "", nil, 0, directiveError("unterminated path")
	}
	target := string(b[pos+1 : pos+1+end])
	pos = skipSpace(b, pos+end+2)

	var vars map[string]any
	if pos < len(b) && b[pos] == ',' {
		dec := json.NewDecoder(bytes.NewReader(b[pos+1:]))
		if err := dec.Decode(&vars); err != nil {
			return "", nil, 0, zerr.With(zerr.Wrap(err, domain.ErrTransformFailed.Error()), "reason", "invalid include context")
		}
		pos = skipSpace(b, pos+1+int(dec.InputOffset()))
	}

	if pos >= len(b) || b[pos] != ')' {
		return "", nil, 0, directiveError("expected )")
	}
	return target, vars, pos + 1, nil
}

func directiveError(reason string) error {
	return zerr.With(domain.ErrTransformFailed, "reason", "malformed include: "+reason)
}

func skipSpace(b []byte, pos int) int {
	for pos < len(b) && (b[pos] == ' ' || b[pos] == '\t' || b[pos] == '\n' || b[pos] == '\r') {
		pos++
	}
	return pos
}

// substitute replaces //@@key with the context value of key. Longer keys are
// replaced first so that one key never clobbers another it prefixes.
func substitute(data []byte, vars map[string]any) []byte {
	if len(vars) == 0 {
		return data
	}

	keys := slices.Collect(maps.Keys(vars))
	slices.SortFunc(keys, func(a, b string) int {
		if d := len(b) - len(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, IncludePrefix+k, stringify(vars[k]))
	}
	return []byte(strings.NewReplacer(pairs...).Replace(string(data)))
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
