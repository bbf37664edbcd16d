package units_test

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/plait/internal/adapters/archive"
	plaitfs "go.trai.ch/plait/internal/adapters/fs"
	"go.trai.ch/plait/internal/adapters/plugins"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports/mocks"
	"go.trai.ch/plait/internal/engine/pipeline"
	"go.trai.ch/plait/internal/units"
	"go.uber.org/mock/gomock"
)

const projectRoot = "/project"

// harness wires the units over an in-memory project. Plugins implemented in
// Go are real; plugins running external tools are mocked.
type harness struct {
	fs       billy.Filesystem
	deps     units.Deps
	logger   *mocks.MockLogger
	styles   *mocks.MockStyleCompiler
	images   *mocks.MockImageOptimizer
	iconFont *mocks.MockIconFontGenerator
	reloader *mocks.MockReloader
	server   *mocks.MockPreviewServer
	uploader *mocks.MockUploader
	watcher  *mocks.MockWatcher
	runner   *mocks.MockStepRunner
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	fsys := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fsys, name, []byte(content), domain.FilePerm))
	}

	walker := plaitfs.NewWalker()
	h := &harness{
		fs:       fsys,
		logger:   mocks.NewMockLogger(ctrl),
		styles:   mocks.NewMockStyleCompiler(ctrl),
		images:   mocks.NewMockImageOptimizer(ctrl),
		iconFont: mocks.NewMockIconFontGenerator(ctrl),
		reloader: mocks.NewMockReloader(ctrl),
		server:   mocks.NewMockPreviewServer(ctrl),
		uploader: mocks.NewMockUploader(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
		runner:   mocks.NewMockStepRunner(ctrl),
	}
	h.deps = units.Deps{
		FS:       fsys,
		Logger:   h.logger,
		Walker:   walker,
		Resolver: plaitfs.NewResolver(walker),
		Includer: plugins.NewIncluder(),
		Prefixer: plugins.NewPrefixer(),
		Minifier: plugins.NewMinifier(),
		Styles:   h.styles,
		Images:   h.images,
		IconFont: h.iconFont,
		Archiver: archive.NewZipper(walker),
		Uploader: h.uploader,
		Server:   h.server,
		Reloader: h.reloader,
		Watcher:  h.watcher,
		Runner:   h.runner,
	}
	return h
}

func (h *harness) read(t *testing.T, name string) string {
	t.Helper()
	data, err := util.ReadFile(h.fs, name)
	require.NoError(t, err, name)
	return string(data)
}

func (h *harness) exists(name string) bool {
	_, err := h.fs.Stat(name)
	return err == nil
}

func rawConfig() *domain.Config {
	return domain.NewConfig(projectRoot, "", true, domain.DefaultSettings())
}

func optimizedConfig() *domain.Config {
	return domain.NewConfig(projectRoot, "", false, domain.DefaultSettings())
}

func inPlaceConfig(disableOptimize bool) *domain.Config {
	return domain.NewConfig(projectRoot, domain.InPlaceSourcePath, disableOptimize, domain.DefaultSettings())
}

func TestAll_CoversEveryEntryUnit(t *testing.T) {
	h := newHarness(t, nil)

	names := make(map[string]bool)
	for _, u := range units.All(h.deps) {
		require.False(t, names[u.Name()], "duplicate unit %s", u.Name())
		names[u.Name()] = true
	}
	assert.Len(t, names, 13)

	for entry, step := range pipeline.Entries() {
		for _, name := range step.Units() {
			assert.True(t, names[name], "%s references unknown unit %s", entry, name)
		}
	}
	for _, rule := range pipeline.WatchRules(domain.DefaultPaths()) {
		for _, name := range rule.Reaction.Units() {
			assert.True(t, names[name], "rule %s references unknown unit %s", rule.Name, name)
		}
	}
}

func TestClean_RemovesOutputRoot(t *testing.T) {
	h := newHarness(t, map[string]string{
		"dev/index.html":          "dev",
		"dev/assets/css/main.css": "dev",
		"dist/index.html":         "dist",
		"src/templates/a.html":    "src",
	})

	require.NoError(t, units.NewCleanDev(h.deps).Run(t.Context(), rawConfig()))
	assert.False(t, h.exists("dev/index.html"))
	assert.False(t, h.exists("dev"))
	assert.True(t, h.exists("dist/index.html"))

	require.NoError(t, units.NewCleanDist(h.deps).Run(t.Context(), rawConfig()))
	assert.False(t, h.exists("dist"))
	assert.True(t, h.exists("src/templates/a.html"))
}

func TestClean_MissingRootIsFine(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, units.NewCleanDist(h.deps).Run(t.Context(), optimizedConfig()))
}

func TestClean_RefusesToRemoveSources(t *testing.T) {
	h := newHarness(t, map[string]string{"assets/css/main.scss": "a{}"})
	h.logger.EXPECT().Warn(`cleanDist: refusing to remove ".", it contains the sources`)
	h.logger.EXPECT().Warn(`cleanDev: refusing to remove ".", it contains the sources`)

	cfg := inPlaceConfig(false)
	require.NoError(t, units.NewCleanDist(h.deps).Run(t.Context(), cfg))
	require.NoError(t, units.NewCleanDev(h.deps).Run(t.Context(), cfg))
	assert.True(t, h.exists("assets/css/main.scss"))
}

func TestClean_RefusesParentOfSources(t *testing.T) {
	h := newHarness(t, map[string]string{"site/src/a.js": "x"})
	h.logger.EXPECT().Warn(gomock.Any())

	settings := domain.DefaultSettings()
	settings.Paths = domain.PathSet{Source: "site/src", Dev: "site", Dist: "dist"}
	cfg := domain.NewConfig(projectRoot, "", true, settings)

	require.NoError(t, units.NewCleanDev(h.deps).Run(t.Context(), cfg))
	assert.True(t, h.exists("site/src/a.js"))
}
