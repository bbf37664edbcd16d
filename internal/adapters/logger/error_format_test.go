package logger_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/plait/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []logger.ErrorEntry
	}{
		{
			name: "plain error",
			err:  fs.ErrNotExist,
			want: []logger.ErrorEntry{{Message: "file does not exist"}},
		},
		{
			name: "sentinel with metadata",
			err:  zerr.With(zerr.With(zerr.New("source not found"), "path", "src/assets/css/main.scss"), "unit", "buildStyles"),
			want: []logger.ErrorEntry{{
				Message:  "source not found",
				Metadata: map[string]any{"path": "src/assets/css/main.scss", "unit": "buildStyles"},
			}},
		},
		{
			name: "unit failure wrapping a tool error",
			err: func() error {
				cmd := zerr.With(zerr.Wrap(errors.New("exit status 65"), "command failed"), "exit_code", 65)
				return zerr.With(zerr.Wrap(cmd, "unit failed"), "task", "build:buildStyles")
			}(),
			want: []logger.ErrorEntry{
				{Message: "unit failed", Metadata: map[string]any{"task": "build:buildStyles"}},
				{Message: "command failed", Metadata: map[string]any{"exit_code": 65}},
				{Message: "exit status 65"},
			},
		},
		{
			name: "metadata on a plain error stays with it",
			err: zerr.Wrap(
				zerr.With(fs.ErrPermission, "path", "dist"),
				"failed to clean output root",
			),
			want: []logger.ErrorEntry{
				{Message: "failed to clean output root", Metadata: map[string]any{}},
				{Message: "permission denied", Metadata: map[string]any{"path": "dist"}},
			},
		},
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logger.CollectErrorEntries(tt.err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Message, got[i].Message, "entry %d", i)
				if len(tt.want[i].Metadata) == 0 {
					assert.Empty(t, got[i].Metadata, "entry %d", i)
					continue
				}
				assert.Equal(t, tt.want[i].Metadata, got[i].Metadata, "entry %d", i)
			}
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "no entries",
			entries: nil,
			want:    "",
		},
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{{Message: "entry point not found"}},
			want:    "Error: entry point not found",
		},
		{
			name: "metadata sorted under the message",
			entries: []logger.ErrorEntry{{
				Message:  "entry point not found",
				Metadata: map[string]any{"entry": "deploy", "available": "default, build, zip"},
			}},
			want: "Error: entry point not found\n" +
				"       available: default, build, zip\n" +
				"       entry: deploy",
		},
		{
			name: "causes are listed once",
			entries: []logger.ErrorEntry{
				{Message: "unit failed"},
				{Message: "transformation failed", Metadata: map[string]any{"path": "dist/assets/js/main.js"}},
				{Message: "unexpected end of file"},
			},
			want: "Error: unit failed\n\n" +
				"  Caused by:\n" +
				"    → transformation failed\n" +
				"      path: dist/assets/js/main.js\n" +
				"    → unexpected end of file",
		},
		{
			name: "multiline messages keep their indent",
			entries: []logger.ErrorEntry{
				{Message: "failed to load configuration"},
				{Message: "yaml: unmarshal errors:\n  line 3: field port not found"},
			},
			want: "Error: failed to load configuration\n\n" +
				"  Caused by:\n" +
				"    → yaml: unmarshal errors:\n" +
				"        line 3: field port not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}

func TestSplitJoined(t *testing.T) {
	a := errors.New("styles")
	b := errors.New("scripts")
	c := errors.New("templates")

	assert.Nil(t, logger.SplitJoined(nil))
	assert.Equal(t, []error{a}, logger.SplitJoined(a))
	assert.Equal(t, []error{a, b, c}, logger.SplitJoined(errors.Join(a, errors.Join(b, c))))
}
