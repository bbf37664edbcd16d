package pipeline

import (
	"context"
	"maps"
	"sync"

	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/scheduler"
)

var _ ports.StepRunner = (*Runner)(nil)

// Runner compiles compositions over a registry of task units and executes
// them with a fresh scheduler per run, so watch reactions may run while an
// entry point is still executing.
type Runner struct {
	tracer ports.Tracer
	logger ports.Logger
	cfg    *domain.Config

	mu    sync.RWMutex
	units map[string]ports.Unit
}

// NewRunner creates a Runner bound to the configuration of one invocation.
func NewRunner(tracer ports.Tracer, logger ports.Logger, cfg *domain.Config) *Runner {
	return &Runner{
		tracer: tracer,
		logger: logger,
		cfg:    cfg,
		units:  make(map[string]ports.Unit),
	}
}

// Register adds units to the registry, replacing any with the same name.
func (r *Runner) Register(units ...ports.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range units {
		r.units[u.Name()] = u
	}
}

// Run executes the named entry point.
func (r *Runner) Run(ctx context.Context, entry string) error {
	step, err := Entry(entry)
	if err != nil {
		return err
	}
	return r.RunStep(ctx, entry, step)
}

// RunStep compiles step with task names prefixed by name and executes it.
func (r *Runner) RunStep(ctx context.Context, name string, step domain.Step) error {
	graph, err := domain.Compile(name, step)
	if err != nil {
		return err
	}

	r.mu.RLock()
	units := maps.Clone(r.units)
	r.mu.RUnlock()

	return scheduler.NewScheduler(r.tracer, r.logger).Run(ctx, graph, units, r.cfg)
}
