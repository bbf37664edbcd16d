package units

import (
	"context"
	"fmt"
	"strings"

	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/pipeline"
	"go.trai.ch/plait/internal/engine/watch"
)

// Watch re-runs the matching reactions on every source change until the run
// is cancelled.
type Watch struct {
	unit
	logger  ports.Logger
	watcher ports.Watcher
	runner  ports.StepRunner
}

// NewWatch creates the watch unit.
func NewWatch(d Deps) *Watch {
	return &Watch{unit: pipeline.Watch, logger: d.Logger, watcher: d.Watcher, runner: d.Runner}
}

func (u *Watch) Run(ctx context.Context, cfg *domain.Config) error {
	ignore := outputIgnores(cfg.Paths)
	if err := u.watcher.Start(ctx, cfg.Root, ignore); err != nil {
		return err
	}
	defer func() { _ = u.watcher.Stop() }()

	rules := pipeline.WatchRules(cfg.Paths)
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	u.logger.Info(fmt.Sprintf("watching %s for %s", cfg.Paths.Source, strings.Join(names, ", ")))

	d := watch.NewDispatcher(u.runner, u.logger, cfg.Root, rules, cfg.Settings.Watch.Debounce)
	return d.Run(ctx, u.watcher.Events())
}

// outputIgnores lists the output roots that do not hold sources, anchored at
// the project root.
func outputIgnores(paths domain.PathSet) []string {
	var ignore []string
	for _, root := range []string{paths.Dev, paths.Dist} {
		if domain.Within(paths.Source, root) {
			continue
		}
		ignore = append(ignore, root+"/**")
	}
	return ignore
}
