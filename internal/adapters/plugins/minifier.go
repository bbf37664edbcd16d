package plugins

import (
	"regexp"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Minifier = (*Minifier)(nil)

const mediaTypeHTML = "text/html"

var scriptMediaType = regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`)

// Minifier compresses stylesheets and scripts with esbuild and markup with
// tdewolff/minify. Markup keeps its whitespace; comments are removed and
// inline styles and scripts are minified.
type Minifier struct {
	markup *minify.M
}

// NewMinifier creates a new Minifier.
func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(scriptMediaType, js.Minify)
	m.Add(mediaTypeHTML, &html.Minifier{
		KeepWhitespace:   true,
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return &Minifier{markup: m}
}

// Minify compresses data according to kind.
func (m *Minifier) Minify(kind ports.MinifyKind, data []byte) ([]byte, error) {
	switch kind {
	case ports.MinifyCSS:
		return esbuildMinify(api.LoaderCSS, data)
	case ports.MinifyJS:
		return esbuildMinify(api.LoaderJS, data)
	case ports.MinifyHTML:
		out, err := m.markup.Bytes(mediaTypeHTML, data)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrTransformFailed.Error()), "media_type", mediaTypeHTML)
		}
		return out, nil
	default:
		return nil, zerr.With(domain.ErrTransformFailed, "reason", "unknown minifier")
	}
}
