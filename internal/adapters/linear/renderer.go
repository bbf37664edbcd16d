// Package linear provides a synchronous, line-buffered progress renderer.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/muesli/termenv"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/ui/output"
	"go.trai.ch/plait/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// taskColors are assigned to task prefixes by name hash.
var taskColors = []termenv.ANSIColor{
	termenv.ANSICyan,
	termenv.ANSIMagenta,
	termenv.ANSIBlue,
	termenv.ANSIYellow,
	termenv.ANSIGreen,
	termenv.ANSIBrightMagenta,
}

// Renderer implements ports.Renderer as chronological, prefixed log lines.
// Unit output goes to stdout, lifecycle lines to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	tasks   map[string]*taskState // spanID -> task state
	buffers map[string]*bytes.Buffer
	run     *runState
}

// runState tracks the plan of the current run for its summary line.
type runState struct {
	name    string
	planned int
	done    int
	failed  bool
	start   time.Time
}

type taskState struct {
	name      string
	prefix    string
	startTime time.Time
}

// NewRenderer creates a new Renderer. Nil writers default to the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.WithProfile(stderr, output.ANSIProfile()),
		tasks:   make(map[string]*taskState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// WithProfile switches the color profile of lifecycle lines.
func (r *Renderer) WithProfile(p termenv.Profile) *Renderer {
	r.output = output.WithProfile(r.stderr, p)
	return r
}

// Start is a no-op for linear renderer (synchronous).
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all remaining buffers.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}

	return nil
}

// Wait is a no-op for linear renderer (synchronous).
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the planned units.
func (r *Renderer) OnPlanEmit(tasks []string, _ map[string][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.run = &runState{name: runName(targets), planned: len(tasks)}
	_, _ = fmt.Fprintf(r.stderr, "Running %s (%d unit(s))\n", strings.Join(targets, ", "), len(tasks))
}

// runName is the task name prefix shared by the targets, e.g. "build".
func runName(targets []string) string {
	if len(targets) == 0 {
		return "run"
	}
	name, _, _ := strings.Cut(targets[0], ":")
	return name
}

// OnTaskStart prints a task start message.
func (r *Renderer) OnTaskStart(spanID, _ string, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	color := taskColors[xxhash.Sum64String(name)%uint64(len(taskColors))]
	r.tasks[spanID] = &taskState{
		name:      name,
		prefix:    r.output.String("[" + name + "]").Foreground(color).String(),
		startTime: startTime,
	}
	r.buffers[spanID] = new(bytes.Buffer)
	if r.run != nil && r.run.start.IsZero() {
		r.run.start = startTime
	}

	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", r.tasks[spanID].prefix)
}

// OnTaskLog buffers log data and prints complete lines with task prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			// Keep the incomplete line for the next write.
			if len(line) > 0 {
				newBuf := new(bytes.Buffer)
				newBuf.Write(line)
				r.buffers[spanID] = newBuf
			}
			break
		}

		r.printLineLocked(task, line)
	}
}

// OnTaskComplete flushes remaining buffer and prints completion status.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)

	duration := endTime.Sub(task.startTime).Round(time.Millisecond)

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n",
			task.prefix, symbol, duration, err)
	} else {
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n",
			task.prefix, symbol, duration)
	}

	delete(r.tasks, spanID)
	delete(r.buffers, spanID)
	r.finishRunLocked(endTime, err)
}

// finishRunLocked prints the summary once every planned unit succeeded.
// Must be called with r.mu held.
func (r *Renderer) finishRunLocked(endTime time.Time, err error) {
	if r.run == nil {
		return
	}
	r.run.done++
	r.run.failed = r.run.failed || err != nil
	if r.run.done < r.run.planned {
		return
	}

	if !r.run.failed {
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s finished in %v\n",
			symbol, r.run.name, endTime.Sub(r.run.start).Round(time.Millisecond))
	}
	r.run = nil
}

// flushBufferLocked prints any partial line left for a task.
// Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(task, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked prints a line with the task prefix.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(task *taskState, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "%s %s\n", task.prefix, string(line))
}
