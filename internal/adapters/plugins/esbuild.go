package plugins

import (
	"path"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Prefixer = (*Prefixer)(nil)

// legacyEngines approximates a "last 100 versions" browser list.
var legacyEngines = []api.Engine{
	{Name: api.EngineChrome, Version: "49"},
	{Name: api.EngineEdge, Version: "14"},
	{Name: api.EngineFirefox, Version: "52"},
	{Name: api.EngineIE, Version: "11"},
	{Name: api.EngineIOS, Version: "9"},
	{Name: api.EngineSafari, Version: "9"},
}

// Prefixer adds vendor prefixes with esbuild's CSS lowering.
type Prefixer struct {
	engines []api.Engine
}

// NewPrefixer creates a Prefixer targeting legacy browsers.
func NewPrefixer() *Prefixer {
	return &Prefixer{engines: legacyEngines}
}

// Prefix returns the CSS of src with vendor-prefixed declarations added.
// When sourceMap is set, the inline map of src is read and the result ends
// with a map that points through it at the original sources.
func (p *Prefixer) Prefix(src domain.Asset, sourceMap bool) ([]byte, error) {
	opts := api.TransformOptions{
		Loader:        api.LoaderCSS,
		Engines:       p.engines,
		LegalComments: api.LegalCommentsInline,
		Sourcefile:    path.Base(src.Path),
	}
	if sourceMap {
		opts.Sourcemap = api.SourceMapInline
	}

	result := api.Transform(string(src.Data), opts)
	if err := transformError(result.Errors); err != nil {
		return nil, err
	}
	return result.Code, nil
}

// esbuildMinify minifies CSS or JS without renaming top-level symbols.
func esbuildMinify(loader api.Loader, code []byte) ([]byte, error) {
	result := api.Transform(string(code), api.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LegalComments:     api.LegalCommentsNone,
	})
	if err := transformError(result.Errors); err != nil {
		return nil, err
	}
	return result.Code, nil
}

func transformError(msgs []api.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	msg := msgs[0]
	err := zerr.With(domain.ErrTransformFailed, "reason", msg.Text)
	if loc := msg.Location; loc != nil {
		err = zerr.With(err, "line", loc.Line)
		err = zerr.With(err, "column", loc.Column)
	}
	if len(msgs) > 1 {
		err = zerr.With(err, "errors", len(msgs))
	}
	return err
}
