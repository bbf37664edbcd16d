// Package telemetry turns unit executions into OpenTelemetry spans and forwards them to a renderer.
package telemetry

import (
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultSizeLimit is the buffered output that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultFlushDelay bounds how long output waits before it is flushed.
	DefaultFlushDelay = 50 * time.Millisecond
)

var errBatcherClosed = zerr.New("output batcher is closed")

// OutputBatcher coalesces the tool output of one unit into larger chunks.
// The first write after a flush arms a timer; a full buffer flushes at once.
type OutputBatcher struct {
	limit int
	delay time.Duration
	emit  func([]byte)

	mu     sync.Mutex
	buf    []byte
	timer  *time.Timer
	closed bool
}

// NewOutputBatcher returns an OutputBatcher handing flushed chunks to emit.
// Non-positive limits select the defaults.
func NewOutputBatcher(limit int, delay time.Duration, emit func([]byte)) *OutputBatcher {
	if limit <= 0 {
		limit = DefaultSizeLimit
	}
	if delay <= 0 {
		delay = DefaultFlushDelay
	}
	return &OutputBatcher{limit: limit, delay: delay, emit: emit}
}

// Write buffers p.
func (b *OutputBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errBatcherClosed
	}

	b.buf = append(b.buf, p...)
	switch {
	case len(b.buf) >= b.limit:
		b.flushLocked()
	case b.timer == nil:
		b.timer = time.AfterFunc(b.delay, b.Flush)
	}
	return len(p), nil
}

// Flush emits buffered output.
func (b *OutputBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.flushLocked()
	}
}

// Close flushes what is left and rejects further writes.
func (b *OutputBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.flushLocked()
	b.closed = true
	return nil
}

// flushLocked must be called with mu held. emit runs under the lock so
// chunks of one unit keep their order.
func (b *OutputBatcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.buf) == 0 {
		return
	}

	chunk := b.buf
	b.buf = nil
	if b.emit != nil {
		b.emit(chunk)
	}
}
