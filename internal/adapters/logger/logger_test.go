package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/plait/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated testing.
// It also sets NO_COLOR=1 to ensure deterministic output without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	tests := []struct {
		name       string
		msg        string
		goldenName string
	}{
		{
			name:       "simple message",
			msg:        "compiled assets/css/main.css",
			goldenName: "info_basic",
		},
		{
			name:       "empty message",
			msg:        "",
			goldenName: "info_empty",
		},
		{
			name:       "multiline message",
			msg:        "watching src\nserving dev on http://localhost:3000",
			goldenName: "info_multiline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Info(tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Warn(t *testing.T) {
	tests := []struct {
		name       string
		msg        string
		goldenName string
	}{
		{
			name:       "simple warning",
			msg:        "cwebp not found on PATH, passing image through",
			goldenName: "warn_basic",
		},
		{
			name:       "empty warning",
			msg:        "",
			goldenName: "warn_empty",
		},
		{
			name:       "multiline warning",
			msg:        "refusing to clean .\noutput root contains the source root",
			goldenName: "warn_multiline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Warn(tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "simple error",
			err:        os.ErrPermission,
			goldenName: "error_simple",
		},
		{
			name:       "not found error",
			err:        os.ErrNotExist,
			goldenName: "error_notfound",
		},
		{
			name:       "multiline error",
			err:        errors.New("yaml: unmarshal errors:\n  line 4: cannot unmarshal !!str `abc` into int"),
			goldenName: "error_multiline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_ZerrChain(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name: "three level chain",
			err: zerr.Wrap(
				zerr.Wrap(
					errors.New("exit status 65"),
					"command failed",
				),
				"transformation failed",
			),
			goldenName: "error_chain_zerr_three",
		},
		{
			name: "two level chain",
			err: zerr.Wrap(
				errors.New("no such file or directory"),
				"failed to read file",
			),
			goldenName: "error_chain_zerr_two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_StdlibChain(t *testing.T) {
	// Standard errors using fmt.Errorf don't support chain traversal like zerr
	innerErr := errors.New("address already in use")
	middleErr := fmt.Errorf("listen tcp :3000: %w", innerErr)
	outerErr := fmt.Errorf("preview server failed: %w", middleErr)

	lg, buf := newTestLogger(t)
	lg.Error(outerErr)

	g := goldie.New(t)
	g.Assert(t, "error_chain_stdlib", buf.Bytes())
}

func TestLogger_Error_WithMetadata(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name: "single metadata field",
			err: zerr.With(
				zerr.New("task unit failed"),
				"unit", "buildStyles",
			),
			goldenName: "error_metadata_single",
		},
		{
			name: "multiple metadata fields",
			err: func() error {
				e := zerr.New("task unit failed")
				e = zerr.With(e, "unit", "buildStyles")
				e = zerr.With(e, "task", "build:buildStyles")
				return e
			}(),
			goldenName: "error_metadata_multi",
		},
		{
			name: "metadata on main error",
			err: func() error {
				inner := errors.New("exit status 1")
				outer := zerr.Wrap(inner, "command failed")
				outer = zerr.With(outer, "command", "sass")
				outer = zerr.With(outer, "exit_code", 1)
				return outer
			}(),
			goldenName: "error_metadata_main",
		},
		{
			name: "partial metadata in chain",
			err: func() error {
				inner := zerr.With(zerr.New("included file not found"), "include", "partials/nav.js")
				middle := zerr.Wrap(inner, "transformation failed") // No metadata
				outer := zerr.With(middle, "file", "src/assets/js/main.js")
				return outer
			}(),
			goldenName: "error_metadata_partial",
		},
		{
			name: "sorted metadata keys",
			err: func() error {
				e := zerr.New("invalid configuration")
				e = zerr.With(e, "zebra", "z")
				e = zerr.With(e, "alpha", "a")
				e = zerr.With(e, "mike", "m")
				return e
			}(),
			goldenName: "error_metadata_sorted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String(), "Expected no output for nil error")
}

func TestLogger_SetJSON(t *testing.T) {
	tests := []struct {
		name     string
		jsonMode bool
		err      error
		wantJSON bool
	}{
		{
			name:     "JSON mode enabled",
			jsonMode: true,
			err:      errors.New("test error message"),
			wantJSON: true,
		},
		{
			name:     "JSON mode disabled",
			jsonMode: false,
			err:      errors.New("test error message"),
			wantJSON: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.SetJSON(tt.jsonMode)
			lg.Error(tt.err)

			output := buf.String()
			if tt.wantJSON {
				assert.Contains(t, output, `"error"`, "JSON output should contain error field")
				assert.Contains(t, output, `"level":"ERROR"`, "JSON output should contain level field")
				assert.NotContains(t, output, "✗", "JSON format should not have pretty markers")
			} else {
				g := goldie.New(t)
				g.Assert(t, "setjson_disabled", buf.Bytes())
			}
		})
	}
}

func TestLogger_SetJSON_WithErrorChain(t *testing.T) {
	err := zerr.Wrap(errors.New("exit status 65"), "command failed")
	err = zerr.With(err, "command", "sass --stdin")
	err = zerr.With(zerr.Wrap(err, "unit failed"), "unit", "buildStyles")

	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Error(err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "unit failed", record["msg"])
	assert.Equal(t, err.Error(), record["error"])
	assert.Equal(t, "buildStyles", record["unit"])
	assert.Equal(t, "sass --stdin", record["command"])
}

func TestLogger_Error_Joined(t *testing.T) {
	styles := zerr.With(zerr.Wrap(errors.New("exit status 65"), "unit failed"), "task", "watch:buildStyles")
	scripts := zerr.With(zerr.Wrap(errors.New("include cycle"), "unit failed"), "task", "watch:buildScripts")

	lg, buf := newTestLogger(t)
	lg.Error(errors.Join(styles, errors.Join(scripts, nil)))

	g := goldie.New(t)
	g.Assert(t, "error_joined", buf.Bytes())
}

func TestLogger_SetJSON_Joined(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Error(errors.Join(
		zerr.With(zerr.New("unit failed"), "task", "build:buildStyles"),
		zerr.With(zerr.New("unit failed"), "task", "build:buildScripts"),
	))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var tasks []string
	for _, line := range lines {
		var record map[string]any
		require.NoError(t, json.Unmarshal(line, &record))
		tasks = append(tasks, record["task"].(string))
	}
	assert.Equal(t, []string{"build:buildStyles", "build:buildScripts"}, tasks)
}

func TestLogger_FormatSwitching(t *testing.T) {
	lg, buf := newTestLogger(t)

	// Phase 1: Pretty format (default)
	err1 := errors.New("error in pretty mode")
	lg.Error(err1)
	prettyOutput := buf.String()
	buf.Reset()

	// Phase 2: Switch to JSON
	lg.SetJSON(true)
	err2 := errors.New("error in json mode")
	lg.Error(err2)
	jsonOutput := buf.String()
	buf.Reset()

	// Phase 3: Switch back to pretty
	lg.SetJSON(false)
	err3 := errors.New("error back in pretty mode")
	lg.Error(err3)
	backToPrettyOutput := buf.String()

	// Assertions
	assert.Contains(t, prettyOutput, "✗", "Pretty format should have error icon")
	assert.NotContains(t, prettyOutput, `"error"`, "Pretty format should not have JSON markers")

	assert.Contains(t, jsonOutput, `"error"`, "JSON format should have error field")
	assert.NotContains(t, jsonOutput, "✗", "JSON format should not have pretty markers")

	assert.Contains(t, backToPrettyOutput, "✗", "After switch back should have error icon")
	assert.NotContains(t, backToPrettyOutput, `"error"`, "After switch back should not have JSON markers")
}

func TestLogger_SetOutput(t *testing.T) {
	tests := []struct {
		name   string
		writer *bytes.Buffer
	}{
		{
			name:   "valid buffer",
			writer: &bytes.Buffer{},
		},
		{
			name:   "nil writer defaults to stderr",
			writer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Just verify no panic occurs
			require.NotPanics(t, func() {
				lg := logger.New().(*logger.Logger)
				lg.SetOutput(tt.writer)
			})
		})
	}
}

func TestLogger_New(t *testing.T) {
	lg := logger.New()
	require.NotNil(t, lg, "New() should return a non-nil logger")
}

// TestLogger_ConcurrentAccess tests thread-safety of the logger.
func TestLogger_ConcurrentAccess(t *testing.T) {
	lg, _ := newTestLogger(t)

	// Run concurrent operations
	done := make(chan bool, 6)

	go func() {
		lg.Info("concurrent info")
		done <- true
	}()
	go func() {
		lg.Warn("concurrent warn")
		done <- true
	}()
	go func() {
		lg.Error(errors.New("concurrent error"))
		done <- true
	}()
	go func() {
		lg.SetJSON(true)
		done <- true
	}()
	go func() {
		lg.SetJSON(false)
		done <- true
	}()
	go func() {
		buf := &bytes.Buffer{}
		lg.SetOutput(buf)
		done <- true
	}()

	// Wait for all goroutines to complete
	for i := 0; i < 6; i++ {
		<-done
	}

	// If we get here without panic or deadlock, the test passes
}
