// Package watch turns file system events into rebuild reactions.
package watch

import (
	"context"
	"iter"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
)

// Dispatcher matches watch events against rules and runs the reaction of
// every matching rule. Reactions of one rule run one at a time in arrival
// order; rules do not wait for each other.
type Dispatcher struct {
	runner   ports.StepRunner
	logger   ports.Logger
	root     string
	rules    []domain.WatchRule
	debounce time.Duration
}

// NewDispatcher creates a Dispatcher for events under the absolute root.
// A positive debounce coalesces bursts per rule into one reaction.
func NewDispatcher(
	runner ports.StepRunner,
	logger ports.Logger,
	root string,
	rules []domain.WatchRule,
	debounce time.Duration,
) *Dispatcher {
	return &Dispatcher{
		runner:   runner,
		logger:   logger,
		root:     filepath.Clean(root),
		rules:    rules,
		debounce: debounce,
	}
}

// Match returns the names of the rules whose patterns match the
// project-relative path.
func (d *Dispatcher) Match(rel string) []string {
	var names []string
	for _, rule := range d.rules {
		if Matches(rule.Patterns, rel) {
			names = append(names, rule.Name)
		}
	}
	return names
}

// Matches reports whether rel matches at least one pattern and none of the
// "!" negations.
func Matches(patterns []string, rel string) bool {
	matched := false
	for _, raw := range patterns {
		pattern, negated := strings.CutPrefix(raw, "!")
		ok, _ := doublestar.Match(domain.CleanRel(pattern), rel)
		if !ok {
			continue
		}
		if negated {
			return false
		}
		matched = true
	}
	return matched
}

// Run consumes events until the sequence ends or ctx is cancelled. Queued
// reactions still run after the sequence ends unless ctx is cancelled.
// Reaction failures are logged and never stop the dispatcher.
func (d *Dispatcher) Run(ctx context.Context, events iter.Seq[ports.WatchEvent]) error {
	queues := make([]*ruleQueue, len(d.rules))
	var wg sync.WaitGroup
	for i, rule := range d.rules {
		q := newRuleQueue(rule)
		if d.debounce > 0 {
			q.debouncer = NewDebouncer(d.debounce, func([]string) { q.push() })
		}
		queues[i] = q
		wg.Go(func() { d.drain(ctx, q) })
	}

	defer func() {
		for _, q := range queues {
			if q.debouncer != nil {
				q.debouncer.Flush()
			}
			q.close()
		}
		wg.Wait()
	}()

	for event := range events {
		if ctx.Err() != nil {
			break
		}
		rel, ok := d.relative(event.Path)
		if !ok {
			continue
		}
		for _, q := range queues {
			if !Matches(q.rule.Patterns, rel) {
				continue
			}
			if q.debouncer != nil {
				q.debouncer.Add(rel)
			} else {
				q.push()
			}
		}
	}

	return nil
}

func (d *Dispatcher) relative(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		return domain.CleanRel(filepath.ToSlash(path)), true
	}
	rel, err := filepath.Rel(d.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (d *Dispatcher) drain(ctx context.Context, q *ruleQueue) {
	for q.pop() {
		if ctx.Err() != nil {
			return
		}
		d.logger.Info("change detected, running " + q.rule.Name)
		if err := d.runner.RunStep(ctx, q.rule.Name, q.rule.Reaction); err != nil && ctx.Err() == nil {
			d.logger.Error(err)
		}
	}
}

// ruleQueue counts pending reactions of one rule.
type ruleQueue struct {
	rule      domain.WatchRule
	debouncer *Debouncer

	mu      sync.Mutex
	cond    *sync.Cond
	pending int
	closed  bool
}

func newRuleQueue(rule domain.WatchRule) *ruleQueue {
	q := &ruleQueue{rule: rule}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *ruleQueue) push() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.pending++
	q.cond.Signal()
}

// pop blocks until a reaction is pending and reports false once the queue
// is closed and empty.
func (q *ruleQueue) pop() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pending == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.pending == 0 {
		return false
	}
	q.pending--
	return true
}

func (q *ruleQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
