package telemetry_test

import (
	"context"
	"sync"
	"time"
)

// recordingRenderer is a simple test double for ports.Renderer.
type recordingRenderer struct {
	mu            sync.Mutex
	plans         [][]string
	targets       [][]string
	startCalls    int
	completeCalls int
	logs          []byte
}

func (m *recordingRenderer) Start(_ context.Context) error { return nil }
func (m *recordingRenderer) Stop() error                   { return nil }
func (m *recordingRenderer) Wait() error                   { return nil }

func (m *recordingRenderer) OnPlanEmit(tasks []string, _ map[string][]string, targets []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, tasks)
	m.targets = append(m.targets, targets)
}

func (m *recordingRenderer) OnTaskStart(_, _, _ string, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
}

func (m *recordingRenderer) OnTaskLog(_ string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, data...)
}

func (m *recordingRenderer) OnTaskComplete(_ string, _ time.Time, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeCalls++
}

func (m *recordingRenderer) snapshot() (plans [][]string, logs string, starts, completes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plans, string(m.logs), m.startCalls, m.completeCalls
}
