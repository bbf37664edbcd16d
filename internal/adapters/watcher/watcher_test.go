package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/plait/internal/adapters/watcher"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// nextEvent returns the first event for path, failing after a timeout.
func nextEvent(t *testing.T, events <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream closed before %s", path)
			if ev.Path == path {
				return ev
			}
		case <-timeout:
			t.Fatalf("no event for %s", path)
		}
	}
}

func startWatcher(t *testing.T, root string, ignore []string) <-chan ports.WatchEvent {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context(), root, ignore))
	t.Cleanup(func() { _ = w.Stop() })

	out := make(chan ports.WatchEvent, 64)
	go func() {
		defer close(out)
		for ev := range w.Events() {
			out <- ev
		}
	}()
	return out
}

func TestWatcher_ReportsWrites(t *testing.T) {
	root := t.TempDir()
	styles := filepath.Join(root, "src", "assets", "css")
	require.NoError(t, os.MkdirAll(styles, domain.DirPerm))

	events := startWatcher(t, root, nil)

	file := filepath.Join(styles, "main.scss")
	require.NoError(t, os.WriteFile(file, []byte("body{}"), domain.PrivateFilePerm))

	ev := nextEvent(t, events, file)
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	events := startWatcher(t, root, nil)

	dir := filepath.Join(root, "src", "templates")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), domain.DirPerm))
	nextEvent(t, events, filepath.Join(root, "src"))
	require.NoError(t, os.Mkdir(dir, domain.DirPerm))
	nextEvent(t, events, dir)

	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(file, []byte("<html></html>"), domain.PrivateFilePerm))
	nextEvent(t, events, file)
}

func TestWatcher_SkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"dist", "node_modules", "src"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), domain.DirPerm))
	}

	events := startWatcher(t, root, []string{"dist"})

	require.NoError(t, os.WriteFile(filepath.Join(root, "dist", "main.css"), []byte("a"), domain.PrivateFilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "x.js"), []byte("a"), domain.PrivateFilePerm))
	marker := filepath.Join(root, "src", "marker.js")
	require.NoError(t, os.WriteFile(marker, []byte("a"), domain.PrivateFilePerm))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			assert.NotContains(t, ev.Path, filepath.Join(root, "dist")+string(filepath.Separator))
			assert.NotContains(t, ev.Path, "node_modules"+string(filepath.Separator))
			if ev.Path == marker {
				return
			}
		case <-timeout:
			t.Fatal("no event for marker file")
		}
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	root := t.TempDir()
	ctrl := gomock.NewController(t)

	w, err := watcher.NewWatcher(mocks.NewMockLogger(ctrl))
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context(), root, nil))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	done := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events not closed after Stop")
	}
}
