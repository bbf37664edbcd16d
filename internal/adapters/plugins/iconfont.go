package plugins

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"text/template"

	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.IconFontGenerator = (*IconFontGenerator)(nil)

// IconPartialName is the SCSS partial written next to the fonts.
const IconPartialName = "_index.scss"

// fontTypes are the generated formats, in @font-face source order.
var fontTypes = []string{"eot", "woff2", "woff", "ttf", "svg"}

var partialTemplate = template.Must(template.New("partial").Funcs(template.FuncMap{
	"hex": func(r rune) string { return fmt.Sprintf("%x", r) },
}).Parse(`@font-face {
  font-family: "{{.FontName}}";
  src: url("{{.FontPath}}{{.FontName}}.eot");
  src: url("{{.FontPath}}{{.FontName}}.eot?#iefix") format("embedded-opentype"),
    url("{{.FontPath}}{{.FontName}}.woff2") format("woff2"),
    url("{{.FontPath}}{{.FontName}}.woff") format("woff"),
    url("{{.FontPath}}{{.FontName}}.ttf") format("truetype"),
    url("{{.FontPath}}{{.FontName}}.svg#{{.FontName}}") format("svg");
  font-weight: normal;
  font-style: normal;
}

%{{.ClassName}} {
  font-family: "{{.FontName}}";
  -webkit-font-smoothing: antialiased;
  -moz-osx-font-smoothing: grayscale;
  font-style: normal;
  font-variant: normal;
  font-weight: normal;
  line-height: 1;
  text-decoration: none;
  text-transform: none;
}

.{{.ClassName}}:before {
  @extend %{{.ClassName}};
}

${{.ClassName}}-chars: (
{{- range .Glyphs}}
  "{{.Name}}": "\{{hex .Codepoint}}",
{{- end}}
);

@function {{.ClassName}}-char($name) {
  @return map-get(${{.ClassName}}-chars, $name);
}

@mixin {{.ClassName}}($name, $insert: before) {
  &:#{$insert} {
    @extend %{{.ClassName}};
    content: {{.ClassName}}-char($name);
  }
}
{{range .Glyphs}}
.{{$.ClassName}}-{{.Name}}:before {
  content: "\{{hex .Codepoint}}";
}
{{end -}}
`))

type partialData struct {
	ports.IconFontOptions
	Glyphs []ports.Glyph
}

// generatorConfig is the config file handed to the generator command.
type generatorConfig struct {
	InputDir   string         `json:"inputDir"`
	OutputDir  string         `json:"outputDir"`
	Name       string         `json:"name"`
	FontTypes  []string       `json:"fontTypes"`
	AssetTypes []string       `json:"assetTypes"`
	Codepoints map[string]int `json:"codepoints"`
	Normalize  bool           `json:"normalize"`
	FontHeight int            `json:"fontHeight"`
}

// IconFontGenerator builds icon fonts with an external generator and renders
// the matching SCSS partial itself.
type IconFontGenerator struct {
	executor ports.Executor
}

// NewIconFontGenerator creates a new IconFontGenerator.
func NewIconFontGenerator(executor ports.Executor) *IconFontGenerator {
	return &IconFontGenerator{executor: executor}
}

// Generate returns the font files followed by the SCSS partial.
func (g *IconFontGenerator) Generate(
	ctx context.Context, glyphs []domain.Asset, opts ports.IconFontOptions,
) ([]domain.Asset, error) {
	if len(glyphs) == 0 {
		return nil, nil
	}
	if len(opts.Command) == 0 {
		return nil, zerr.With(domain.ErrInvalidConfig, "tool", "iconfont")
	}

	named, err := AssignCodepoints(glyphs, opts.StartCodepoint)
	if err != nil {
		return nil, err
	}

	sc, err := newScratch("plait-icons-")
	if err != nil {
		return nil, err
	}
	defer func() { _ = sc.Close() }()

	cfg := generatorConfig{
		InputDir:   sc.Abs("in"),
		OutputDir:  sc.Abs("out"),
		Name:       opts.FontName,
		FontTypes:  fontTypes,
		AssetTypes: []string{},
		Codepoints: make(map[string]int, len(named)),
		Normalize:  true,
		FontHeight: 5000,
	}
	for i, glyph := range named {
		cfg.Codepoints[glyph.Name] = int(glyph.Codepoint)
		if err := util.WriteFile(sc, path.Join("in", glyph.Name+".svg"), glyphs[i].Data, domain.PrivateFilePerm); err != nil {
			return nil, zerr.Wrap(err, domain.ErrWriteFailed.Error())
		}
	}
	if err := sc.MkdirAll("out", domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrWriteFailed.Error())
	}
	configJSON, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrTransformFailed.Error())
	}
	if err := util.WriteFile(sc, "fantasticonrc.json", configJSON, domain.PrivateFilePerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrWriteFailed.Error())
	}

	err = g.executor.Execute(ctx, ports.Command{
		Args: expandArgs(opts.Command, map[string]string{
			"config": sc.Abs("fantasticonrc.json"),
			"in":     cfg.InputDir,
			"out":    cfg.OutputDir,
			"name":   opts.FontName,
		}),
		Dir: opts.Dir,
		Env: toolEnv(opts.Dir),
	}, ports.OutputFrom(ctx), io.Discard)
	if err != nil {
		if toolMissing(err) {
			return nil, err
		}
		return nil, zerr.Wrap(err, domain.ErrTransformFailed.Error())
	}

	var out []domain.Asset
	for _, ext := range fontTypes {
		name := opts.FontName + "." + ext
		data, err := util.ReadFile(sc, path.Join("out", name))
		if err != nil {
			continue
		}
		out = append(out, domain.Asset{Path: name, Data: data})
	}
	if len(out) == 0 {
		return nil, zerr.With(domain.ErrTransformFailed, "reason", "generator produced no fonts")
	}

	partial, err := RenderPartial(named, opts)
	if err != nil {
		return nil, err
	}
	return append(out, domain.Asset{Path: IconPartialName, Data: partial}), nil
}

// AssignCodepoints names glyphs after their file and numbers them from start
// in the order given. glyphs must be sorted by path.
func AssignCodepoints(glyphs []domain.Asset, start rune) ([]ports.Glyph, error) {
	out := make([]ports.Glyph, len(glyphs))
	seen := make(map[string]string, len(glyphs))
	for i, g := range glyphs {
		name := strings.TrimSuffix(path.Base(g.Path), path.Ext(g.Path))
		if prev, dup := seen[name]; dup {
			err := zerr.With(domain.ErrTransformFailed, "reason", "duplicate glyph name "+name)
			return nil, zerr.With(err, "paths", prev+", "+g.Path)
		}
		seen[name] = g.Path
		out[i] = ports.Glyph{Name: name, Codepoint: start + rune(i)}
	}
	return out, nil
}

// RenderPartial renders the SCSS partial declaring the font and one class
// per glyph.
func RenderPartial(glyphs []ports.Glyph, opts ports.IconFontOptions) ([]byte, error) {
	var buf bytes.Buffer
	data := partialData{IconFontOptions: opts, Glyphs: slices.Clone(glyphs)}
	if err := partialTemplate.Execute(&buf, data); err != nil {
		return nil, zerr.Wrap(err, domain.ErrTransformFailed.Error())
	}
	return buf.Bytes(), nil
}
