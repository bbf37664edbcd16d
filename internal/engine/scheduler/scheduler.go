// Package scheduler executes compiled task graphs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
	// StatusSkipped indicates the task never ran because an upstream task failed
	// or the run was cancelled.
	StatusSkipped TaskStatus = "Skipped"
)

// Scheduler manages the execution of tasks in the dependency graph.
// Every task whose dependencies completed runs on its own goroutine.
type Scheduler struct {
	tracer ports.Tracer
	logger ports.Logger

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(tracer ports.Tracer, logger ports.Logger) *Scheduler {
	return &Scheduler{
		tracer:     tracer,
		logger:     logger,
		taskStatus: make(map[domain.InternedString]TaskStatus),
	}
}

// Status returns the status of a task from the most recent run.
func (s *Scheduler) Status(name string) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskStatus[domain.NewInternedString(name)]
}

func (s *Scheduler) initTaskStatuses(graph *domain.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taskStatus = make(map[domain.InternedString]TaskStatus, graph.TaskCount())
	for task := range graph.Walk() {
		s.taskStatus[task.Name] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run executes every task of graph with the unit registered under its name.
// A failed task stops its dependents; independent branches keep running.
// The returned error joins the failures of every failed task.
func (s *Scheduler) Run(
	ctx context.Context,
	graph *domain.Graph,
	units map[string]ports.Unit,
	cfg *domain.Config,
) error {
	if err := graph.Validate(); err != nil {
		return err
	}

	for task := range graph.Walk() {
		if _, ok := units[task.Unit.String()]; !ok {
			return zerr.With(zerr.With(domain.ErrUnitNotFound, "unit", task.Unit.String()), "task", task.Name.String())
		}
	}

	s.emitPlan(ctx, graph)
	s.initTaskStatuses(graph)

	state := newRunState(ctx, s, graph, units, cfg)
	err := state.runExecutionLoop()

	if skipped := s.markSkipped(graph); len(skipped) > 0 {
		s.logger.Warn(fmt.Sprintf("skipped %d unit(s) after failure: %v", len(skipped), skipped))
	}

	return err
}

func (s *Scheduler) emitPlan(ctx context.Context, graph *domain.Graph) {
	planned := make([]string, 0, graph.TaskCount())
	depMap := make(map[string][]string, graph.TaskCount())
	var targets []string

	for task := range graph.Walk() {
		name := task.Name.String()
		planned = append(planned, name)
		deps := make([]string, len(task.Dependencies))
		for i, dep := range task.Dependencies {
			deps[i] = dep.String()
		}
		depMap[name] = deps
		if len(graph.Dependents(task.Name)) == 0 {
			targets = append(targets, name)
		}
	}

	s.tracer.EmitPlan(ctx, planned, depMap, targets)
}

// markSkipped flags every task still pending and returns their names in
// execution order.
func (s *Scheduler) markSkipped(graph *domain.Graph) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var skipped []string
	for task := range graph.Walk() {
		if s.taskStatus[task.Name] == StatusPending {
			s.taskStatus[task.Name] = StatusSkipped
			skipped = append(skipped, task.Name.String())
		}
	}
	return skipped
}

type result struct {
	task domain.InternedString
	err  error
}

type schedulerRunState struct {
	s         *Scheduler
	ctx       context.Context
	graph     *domain.Graph
	units     map[string]ports.Unit
	cfg       *domain.Config
	inDegree  map[domain.InternedString]int
	ready     []domain.InternedString
	active    int
	pending   int
	resultsCh chan result
	errs      error
}

func newRunState(
	ctx context.Context,
	s *Scheduler,
	graph *domain.Graph,
	units map[string]ports.Unit,
	cfg *domain.Config,
) *schedulerRunState {
	inDegree := make(map[domain.InternedString]int, graph.TaskCount())
	var ready []domain.InternedString

	// Walk yields in execution order, so the initial ready queue is stable.
	for task := range graph.Walk() {
		inDegree[task.Name] = len(task.Dependencies)
		if len(task.Dependencies) == 0 {
			ready = append(ready, task.Name)
		}
	}

	return &schedulerRunState{
		s:         s,
		ctx:       ctx,
		graph:     graph,
		units:     units,
		cfg:       cfg,
		inDegree:  inDegree,
		ready:     ready,
		pending:   graph.TaskCount(),
		resultsCh: make(chan result, graph.TaskCount()),
	}
}

func (state *schedulerRunState) runExecutionLoop() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
			if state.active > 0 {
				state.handleResult(<-state.resultsCh)
			}
		}
	}

	// Cancellation only counts as a failure when it prevented work.
	if state.ctx.Err() != nil && state.pending > 0 {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	return state.errs
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(name, StatusRunning)

		task, _ := state.graph.GetTask(name)
		go state.executeTask(task)
	}
}

func (state *schedulerRunState) executeTask(t domain.Task) {
	// The span ends before the result is sent so the renderer has seen
	// completion by the time Run returns.
	res := func() result {
		ctx, span := state.s.tracer.Start(state.ctx, t.Name.String(), ports.WithUnit(t.Unit.String()))
		defer span.End()
		ctx = ports.WithOutput(ctx, span)

		err := runUnit(ctx, state.units[t.Unit.String()], state.cfg)
		if err != nil {
			span.RecordError(err)
		}
		return result{task: t.Name, err: err}
	}()

	state.resultsCh <- res
}

// runUnit runs one unit and converts a panic into an error.
func runUnit(ctx context.Context, unit ports.Unit, cfg *domain.Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(zerr.New("unit panicked"), "panic", fmt.Sprint(r))
		}
	}()
	return unit.Run(ctx, cfg)
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--
	state.pending--

	if res.err != nil {
		task, _ := state.graph.GetTask(res.task)
		enhancedErr := zerr.Wrap(res.err, domain.ErrUnitFailed.Error())
		enhancedErr = zerr.With(enhancedErr, "unit", task.Unit.String())
		enhancedErr = zerr.With(enhancedErr, "task", res.task.String())
		state.errs = errors.Join(state.errs, enhancedErr)
		state.s.updateStatus(res.task, StatusFailed)
		return
	}

	state.s.updateStatus(res.task, StatusCompleted)
	for _, dep := range state.graph.Dependents(res.task) {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}
