package watch_test

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/core/ports/mocks"
	"go.trai.ch/plait/internal/engine/pipeline"
	"go.trai.ch/plait/internal/engine/watch"
	"go.uber.org/mock/gomock"
)

const root = "/project"

func events(paths ...string) iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for _, p := range paths {
			if !yield(ports.WatchEvent{Path: root + "/" + p, Operation: ports.OpWrite}) {
				return
			}
		}
	}
}

// stepLog is a StepRunner recording the rule names it ran.
type stepLog struct {
	mu   sync.Mutex
	runs []string
	errs map[string]error
}

func (s *stepLog) RunStep(_ context.Context, name string, _ domain.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, name)
	return s.errs[name]
}

func (s *stepLog) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.runs)
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	return log
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{"double star", []string{"src/**/*.scss"}, "src/assets/css/_grid.scss", true},
		{"second pattern", []string{"src/**/*.scss", "src/**/*.css"}, "src/assets/vendor/lib.css", true},
		{"outside source", []string{"src/**/*.scss"}, "dev/assets/css/x.scss", false},
		{"negation wins", []string{"**/*.css", "!assets/css/main.css"}, "assets/css/main.css", false},
		{"negation is specific", []string{"**/*.css", "!assets/css/main.css"}, "assets/css/grid.css", true},
		{"negation order", []string{"!assets/js/*.min.js", "assets/js/**/*.js"}, "assets/js/main.min.js", false},
		{"only negations", []string{"!a.js"}, "b.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, watch.Matches(tt.patterns, tt.path))
		})
	}
}

func TestDispatcher_Match(t *testing.T) {
	d := watch.NewDispatcher(&stepLog{}, nil, root, pipeline.WatchRules(domain.DefaultPaths()), 0)

	assert.Equal(t, []string{pipeline.RuleStyles}, d.Match("src/assets/css/main.scss"))
	assert.Equal(t, []string{pipeline.RuleScripts, pipeline.RuleVendor}, d.Match("src/assets/js/vendor.js"))
	assert.Equal(t, []string{pipeline.RuleTemplates}, d.Match("src/templates/index.html"))
	assert.Empty(t, d.Match("src/assets/img/logo.png"))
}

func TestDispatcher_RunsReactionPerEvent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &stepLog{}
		d := watch.NewDispatcher(runner, quietLogger(t), root, pipeline.WatchRules(domain.DefaultPaths()), 0)

		err := d.Run(t.Context(), events(
			"src/assets/css/main.scss",
			"src/assets/css/_grid.scss",
			"src/templates/index.html",
			"src/assets/img/logo.png",
			"README.md",
		))
		require.NoError(t, err)

		runs := runner.snapshot()
		assert.ElementsMatch(t, []string{pipeline.RuleStyles, pipeline.RuleStyles, pipeline.RuleTemplates}, runs)
	})
}

func TestDispatcher_IgnoresPathsOutsideRoot(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &stepLog{}
		d := watch.NewDispatcher(runner, quietLogger(t), root, pipeline.WatchRules(domain.DefaultPaths()), 0)

		seq := func(yield func(ports.WatchEvent) bool) {
			yield(ports.WatchEvent{Path: "/elsewhere/src/assets/css/main.scss", Operation: ports.OpWrite})
		}
		require.NoError(t, d.Run(t.Context(), seq))
		assert.Empty(t, runner.snapshot())
	})
}

func TestDispatcher_FailureKeepsWatching(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		boom := errors.New("sass failed")
		runner := &stepLog{errs: map[string]error{pipeline.RuleStyles: boom}}

		log := mocks.NewMockLogger(gomock.NewController(t))
		log.EXPECT().Info(gomock.Any()).AnyTimes()
		log.EXPECT().Error(boom).Times(2)

		d := watch.NewDispatcher(runner, log, root, pipeline.WatchRules(domain.DefaultPaths()), 0)
		err := d.Run(t.Context(), events(
			"src/assets/css/main.scss",
			"src/assets/js/main.js",
			"src/assets/css/main.scss",
		))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{pipeline.RuleStyles, pipeline.RuleScripts, pipeline.RuleStyles}, runner.snapshot())
	})
}

// blockingRunner holds every reaction until released.
type blockingRunner struct {
	stepLog
	release chan struct{}
	active  int
	maxSeen int
}

func (b *blockingRunner) RunStep(ctx context.Context, name string, step domain.Step) error {
	b.mu.Lock()
	b.active++
	b.maxSeen = max(b.maxSeen, b.active)
	b.mu.Unlock()

	<-b.release

	b.mu.Lock()
	b.active--
	b.mu.Unlock()
	return b.stepLog.RunStep(ctx, name, step)
}

func TestDispatcher_RuleReactionsAreSerialized(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &blockingRunner{release: make(chan struct{})}
		rules := []domain.WatchRule{{Name: "styles", Patterns: []string{"src/**/*.scss"}, Reaction: domain.Unit("buildStyles")}}
		d := watch.NewDispatcher(runner, quietLogger(t), root, rules, 0)

		done := make(chan error, 1)
		go func() {
			done <- d.Run(t.Context(), events("src/a.scss", "src/b.scss", "src/c.scss"))
		}()

		for range 3 {
			synctest.Wait()
			runner.release <- struct{}{}
		}
		require.NoError(t, <-done)

		assert.Equal(t, []string{"styles", "styles", "styles"}, runner.snapshot())
		assert.Equal(t, 1, runner.maxSeen)
	})
}

func TestDispatcher_Debounce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &stepLog{}
		d := watch.NewDispatcher(runner, quietLogger(t), root, pipeline.WatchRules(domain.DefaultPaths()), 100*time.Millisecond)

		ch := make(chan ports.WatchEvent)
		seq := func(yield func(ports.WatchEvent) bool) {
			for ev := range ch {
				if !yield(ev) {
					return
				}
			}
		}

		done := make(chan error, 1)
		go func() { done <- d.Run(t.Context(), seq) }()

		for _, p := range []string{"src/a.scss", "src/b.scss", "src/c.scss"} {
			ch <- ports.WatchEvent{Path: root + "/" + p, Operation: ports.OpWrite}
			time.Sleep(10 * time.Millisecond)
		}
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{pipeline.RuleStyles}, runner.snapshot())

		close(ch)
		require.NoError(t, <-done)
	})
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &stepLog{}
		d := watch.NewDispatcher(runner, quietLogger(t), root, pipeline.WatchRules(domain.DefaultPaths()), 0)

		ctx, cancel := context.WithCancel(t.Context())
		ch := make(chan ports.WatchEvent)
		seq := func(yield func(ports.WatchEvent) bool) {
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					if !yield(ev) {
						return
					}
				}
			}
		}

		done := make(chan error, 1)
		go func() { done <- d.Run(ctx, seq) }()

		synctest.Wait()
		cancel()
		require.NoError(t, <-done)
		assert.Empty(t, runner.snapshot())
	})
}
