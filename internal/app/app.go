// Package app implements the application layer for plait.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	plaitfs "go.trai.ch/plait/internal/adapters/fs"
	"go.trai.ch/plait/internal/adapters/telemetry"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/engine/pipeline"
	"go.trai.ch/plait/internal/units"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	renderer     ports.Renderer
	adapters     units.Deps
}

// New creates a new App instance. The filesystem, logger and step runner of
// adapters are filled in per run.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	renderer ports.Renderer,
	adapters units.Deps,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		renderer:     renderer,
		adapters:     adapters,
	}
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Root is the project root; empty means the working directory.
	Root string
	// SrcPath is the --srcPath flag; "this" builds in place.
	SrcPath string
	// DisableOptimize selects the raw build mode.
	DisableOptimize bool
	// ConfigPath overrides the location of plait.yaml.
	ConfigPath string
}

// Run executes the named entry point.
func (a *App) Run(ctx context.Context, entry string, opts RunOptions) error {
	// 1. Validate the entry point before touching anything
	if _, err := pipeline.Entry(entry); err != nil {
		return err
	}

	// 2. Build the run configuration
	cfg, err := a.configure(opts)
	if err != nil {
		return err
	}

	// 3. Initialize Telemetry
	// Spans started by the scheduler reach the renderer through the bridge.
	setupOTel(telemetry.NewBridge(a.renderer))
	tracer := telemetry.NewOTelTracer("plait").WithRenderer(a.renderer)
	defer func() {
		_ = tracer.Shutdown(context.WithoutCancel(ctx))
	}()

	// 4. Register the task units
	runner := pipeline.NewRunner(tracer, a.logger, cfg)
	deps := a.adapters
	deps.FS = plaitfs.Open(cfg.Root)
	deps.Logger = a.logger
	deps.Runner = runner
	runner.Register(units.All(deps)...)

	// 5. Run Renderer and Runner concurrently
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.renderer.Start(ctx); err != nil {
			return err
		}
		return a.renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Runner panic: %v\n", r)
			}
			_ = a.renderer.Stop()
		}()

		if err := runner.Run(ctx, entry); err != nil {
			return errors.Join(domain.ErrBuildExecutionFailed, err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) configure(opts RunOptions) (*domain.Config, error) {
	root := opts.Root
	if root == "" {
		root = domain.ProjectRoot
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "path", opts.Root)
	}

	settings, err := a.configLoader.Load(root, opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	return domain.NewConfig(root, opts.SrcPath, opts.DisableOptimize, *settings), nil
}

// EntryPlan describes one entry point for listing.
type EntryPlan struct {
	Name        string
	Composition string
	Tasks       []string
}

// List returns every entry point with its composition and execution order.
func (a *App) List() ([]EntryPlan, error) {
	names := pipeline.EntryNames()
	plans := make([]EntryPlan, 0, len(names))
	for _, name := range names {
		step, err := pipeline.Entry(name)
		if err != nil {
			return nil, err
		}
		tasks, err := pipeline.Plan(name)
		if err != nil {
			return nil, err
		}
		plans = append(plans, EntryPlan{Name: name, Composition: step.String(), Tasks: tasks})
	}
	return plans, nil
}

// setupOTel configures the OpenTelemetry SDK with the renderer bridge.
func setupOTel(bridge *telemetry.Bridge) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
}
