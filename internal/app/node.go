package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/plait/internal/adapters/archive"
	"go.trai.ch/plait/internal/adapters/config"
	plaitfs "go.trai.ch/plait/internal/adapters/fs"
	"go.trai.ch/plait/internal/adapters/linear"
	"go.trai.ch/plait/internal/adapters/logger"
	"go.trai.ch/plait/internal/adapters/plugins"
	"go.trai.ch/plait/internal/adapters/publish"
	"go.trai.ch/plait/internal/adapters/server"
	"go.trai.ch/plait/internal/adapters/watcher"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/plait/internal/units"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
	// AdaptersNodeID is the unique identifier for the task unit adapters Graft node.
	AdaptersNodeID graft.ID = "app.adapters"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[units.Deps]{
		ID:        AdaptersNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			plaitfs.WalkerNodeID,
			plaitfs.ResolverNodeID,
			plugins.IncluderNodeID,
			plugins.PrefixerNodeID,
			plugins.MinifierNodeID,
			plugins.StyleCompilerNodeID,
			plugins.ImageOptimizerNodeID,
			plugins.IconFontNodeID,
			archive.NodeID,
			publish.NodeID,
			server.NodeID,
			watcher.NodeID,
		},
		Run: runAdaptersNode,
	})

	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			linear.NodeID,
			AdaptersNodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			renderer, err := graft.Dep[ports.Renderer](ctx)
			if err != nil {
				return nil, err
			}
			adapters, err := graft.Dep[units.Deps](ctx)
			if err != nil {
				return nil, err
			}
			return New(loader, log, renderer, adapters), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

//nolint:cyclop // one lookup per adapter
func runAdaptersNode(ctx context.Context) (units.Deps, error) {
	var d units.Deps
	var err error

	if d.Walker, err = graft.Dep[*plaitfs.Walker](ctx); err != nil {
		return d, err
	}
	if d.Resolver, err = graft.Dep[ports.InputResolver](ctx); err != nil {
		return d, err
	}
	if d.Includer, err = graft.Dep[ports.Includer](ctx); err != nil {
		return d, err
	}
	if d.Prefixer, err = graft.Dep[ports.Prefixer](ctx); err != nil {
		return d, err
	}
	if d.Minifier, err = graft.Dep[ports.Minifier](ctx); err != nil {
		return d, err
	}
	if d.Styles, err = graft.Dep[ports.StyleCompiler](ctx); err != nil {
		return d, err
	}
	if d.Images, err = graft.Dep[ports.ImageOptimizer](ctx); err != nil {
		return d, err
	}
	if d.IconFont, err = graft.Dep[ports.IconFontGenerator](ctx); err != nil {
		return d, err
	}
	if d.Archiver, err = graft.Dep[ports.Archiver](ctx); err != nil {
		return d, err
	}
	if d.Uploader, err = graft.Dep[ports.Uploader](ctx); err != nil {
		return d, err
	}
	if d.Watcher, err = graft.Dep[ports.Watcher](ctx); err != nil {
		return d, err
	}

	srv, err := graft.Dep[*server.Server](ctx)
	if err != nil {
		return d, err
	}
	d.Server = srv
	d.Reloader = srv

	return d, nil
}
