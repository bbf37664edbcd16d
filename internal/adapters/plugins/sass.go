package plugins

import (
	"bytes"
	"context"
	"slices"

	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StyleCompiler = (*SassCompiler)(nil)

// SassCompiler compiles SCSS with the dart-sass command line, fed on stdin.
type SassCompiler struct {
	executor ports.Executor
}

// NewSassCompiler creates a new SassCompiler.
func NewSassCompiler(executor ports.Executor) *SassCompiler {
	return &SassCompiler{executor: executor}
}

// Compile returns the CSS compiled from src.
func (c *SassCompiler) Compile(ctx context.Context, src domain.Asset, opts ports.StyleOptions) ([]byte, error) {
	if len(opts.Command) == 0 {
		return nil, zerr.With(domain.ErrInvalidConfig, "tool", "sass")
	}

	args := append(slices.Clone(opts.Command), "--stdin", "--no-error-css")
	for _, p := range opts.LoadPaths {
		args = append(args, "--load-path="+p)
	}
	if opts.SourceMap {
		args = append(args, "--embed-source-map", "--embed-sources")
	} else {
		args = append(args, "--no-source-map")
	}

	out, err := c.executor.Capture(ctx, ports.Command{
		Args:  args,
		Dir:   opts.Dir,
		Env:   toolEnv(opts.Dir),
		Stdin: rewriteTildeImports(src.Data),
	})
	if err != nil {
		if toolMissing(err) {
			return nil, err
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrTransformFailed.Error()), "path", src.Path)
	}
	return out, nil
}

var importRules = [][]byte{[]byte("@import"), []byte("@use"), []byte("@forward")}

// rewriteTildeImports resolves webpack-style "~pkg" imports against
// node_modules/, which is reachable through the project-root load path.
func rewriteTildeImports(scss []byte) []byte {
	lines := bytes.SplitAfter(scss, []byte("\n"))
	for i, line := range lines {
		trimmed := bytes.TrimLeft(line, " \t")
		if !slices.ContainsFunc(importRules, func(rule []byte) bool { return bytes.HasPrefix(trimmed, rule) }) {
			continue
		}
		line = bytes.ReplaceAll(line, []byte(`"~`), []byte(`"node_modules/`))
		lines[i] = bytes.ReplaceAll(line, []byte(`'~`), []byte(`'node_modules/`))
	}
	return bytes.Join(lines, nil)
}
