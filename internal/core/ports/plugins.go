package ports

import (
	"context"

	"github.com/go-git/go-billy/v5"
	"go.trai.ch/plait/internal/core/domain"
)

//go:generate mockgen -source=plugins.go -destination=mocks/mock_plugins.go -package=mocks

// StyleOptions configures one stylesheet compilation.
type StyleOptions struct {
	// SourceMap requests an embedded sourcemap in the output.
	SourceMap bool
	// LoadPaths are absolute directories searched for imports.
	LoadPaths []string
	// Command is the compiler argv.
	Command []string
	// Dir is the project root; its node_modules/.bin is searched first.
	Dir string
}

// StyleCompiler compiles a SCSS entry file into CSS.
type StyleCompiler interface {
	Compile(ctx context.Context, src domain.Asset, opts StyleOptions) ([]byte, error)
}

// Prefixer adds vendor prefixes to compiled CSS. With sourceMap set, an
// inline source map in src is chained into the inline map of the result.
type Prefixer interface {
	Prefix(src domain.Asset, sourceMap bool) ([]byte, error)
}

// MinifyKind selects the minifier for a payload.
type MinifyKind int

const (
	// MinifyCSS minifies stylesheets.
	MinifyCSS MinifyKind = iota
	// MinifyJS minifies scripts.
	MinifyJS
	// MinifyHTML minifies markup including inline styles and scripts.
	MinifyHTML
)

// Minifier compresses text assets.
type Minifier interface {
	Minify(kind MinifyKind, data []byte) ([]byte, error)
}

// Includer expands file-include directives in a source file.
type Includer interface {
	// Include returns the content of path with every directive replaced by
	// the referenced file, resolved relative to the including file.
	Include(fsys billy.Filesystem, path string) ([]byte, error)
}

// ImageOptions configures image optimization.
type ImageOptions struct {
	Tools domain.ToolSettings
	// Dir is the project root; its node_modules/.bin is searched first.
	Dir string
}

// ImageOptimizer losslessly recompresses an image.
type ImageOptimizer interface {
	// Optimize returns the optimized image followed by any alternates
	// (a .webp for png/jpg sources).
	Optimize(ctx context.Context, img domain.Asset, opts ImageOptions) ([]domain.Asset, error)
}

// IconFontOptions configures icon-font generation.
type IconFontOptions struct {
	FontName       string
	ClassName      string
	FontPath       string
	StartCodepoint rune
	// Command is the generator argv.
	Command []string
	// Dir is the project root; its node_modules/.bin is searched first.
	Dir string
}

// Glyph is one icon of a generated font.
type Glyph struct {
	Name      string
	Codepoint rune
}

// IconFontGenerator turns SVG glyphs into font files and a SCSS partial.
type IconFontGenerator interface {
	// Generate returns the font files and the partial, with paths relative
	// to the icon-font output directory.
	Generate(ctx context.Context, glyphs []domain.Asset, opts IconFontOptions) ([]domain.Asset, error)
}
