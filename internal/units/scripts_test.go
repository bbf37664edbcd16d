package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/units"
)

var scriptSources = map[string]string{
	"src/assets/js/main.js":           "//@@include('modules/menu.js')\nfunction init(options) {\n  return options.value;\n}\ninit({ value: 1 });\n",
	"src/assets/js/modules/menu.js":   "var menuLabel = 'menu';\n",
	"src/assets/js/vendor.js":         "//@@include('../vendor/lib.js')\n",
	"src/assets/vendor/lib.js":        "window.lib = function () { return 42; };\n",
	"src/templates/index.html":        "<!DOCTYPE html>\n<html>\n<body>\n<!-- nav -->\n//@@include('parts/header.html', {\"title\": \"Home\"})\n</body>\n</html>\n",
	"src/templates/about.html":        "<p>about</p>\n",
	"src/templates/parts/header.html": "<header>//@@title</header>\n",
}

func TestBuildScripts_Raw(t *testing.T) {
	h := newHarness(t, scriptSources)

	require.NoError(t, units.NewBuildScripts(h.deps).Run(t.Context(), rawConfig()))

	js := h.read(t, "dev/assets/js/main.js")
	assert.Contains(t, js, "var menuLabel = 'menu';")
	assert.NotContains(t, js, "//@@include")
	assert.Equal(t, js, h.read(t, "dev/assets/js/main.min.js"))
}

func TestBuildScripts_Optimized(t *testing.T) {
	h := newHarness(t, scriptSources)

	require.NoError(t, units.NewBuildScripts(h.deps).Run(t.Context(), optimizedConfig()))

	js := h.read(t, "dist/assets/js/main.js")
	minified := h.read(t, "dist/assets/js/main.min.js")
	assert.Contains(t, js, "function init(options)")
	assert.Less(t, len(minified), len(js))
	assert.NotContains(t, minified, "\n  ")
}

func TestBuildScriptsVendor(t *testing.T) {
	h := newHarness(t, scriptSources)

	require.NoError(t, units.NewBuildScriptsVendor(h.deps).Run(t.Context(), optimizedConfig()))

	assert.Contains(t, h.read(t, "dist/assets/js/vendor.js"), "window.lib")
	assert.True(t, h.exists("dist/assets/js/vendor.min.js"))
	assert.False(t, h.exists("dist/assets/js/main.js"))
}

func TestBuildScripts_MissingEntry(t *testing.T) {
	h := newHarness(t, nil)

	err := units.NewBuildScriptsVendor(h.deps).Run(t.Context(), rawConfig())
	require.ErrorContains(t, err, domain.ErrSourceNotFound.Error())
}

func TestBuildScripts_InvalidScript(t *testing.T) {
	h := newHarness(t, map[string]string{"src/assets/js/main.js": "function ( {"})

	err := units.NewBuildScripts(h.deps).Run(t.Context(), optimizedConfig())
	require.ErrorContains(t, err, domain.ErrTransformFailed.Error())
}

func TestBuildTemplates_Raw(t *testing.T) {
	h := newHarness(t, scriptSources)

	require.NoError(t, units.NewBuildTemplates(h.deps).Run(t.Context(), rawConfig()))

	index := h.read(t, "dev/index.html")
	assert.Contains(t, index, "<header>Home</header>")
	assert.Contains(t, index, "<!-- nav -->")
	assert.Equal(t, "<p>about</p>\n", h.read(t, "dev/about.html"))
	assert.False(t, h.exists("dev/header.html"))
	assert.False(t, h.exists("dev/parts/header.html"))
}

func TestBuildTemplates_Optimized(t *testing.T) {
	h := newHarness(t, scriptSources)

	require.NoError(t, units.NewBuildTemplates(h.deps).Run(t.Context(), optimizedConfig()))

	index := h.read(t, "dist/index.html")
	assert.Contains(t, index, "<header>Home</header>")
	assert.NotContains(t, index, "<!-- nav -->")
}

func TestBuildTemplates_NoTemplates(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, units.NewBuildTemplates(h.deps).Run(t.Context(), optimizedConfig()))
	assert.False(t, h.exists("dist"))
}
