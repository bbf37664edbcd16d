package plugins

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/plait/internal/adapters/logger"
	"go.trai.ch/plait/internal/adapters/shell"
	"go.trai.ch/plait/internal/core/ports"
)

const (
	// IncluderNodeID is the graft node ID for the file includer.
	IncluderNodeID graft.ID = "plugin.includer"
	// PrefixerNodeID is the graft node ID for the CSS prefixer.
	PrefixerNodeID graft.ID = "plugin.prefixer"
	// MinifierNodeID is the graft node ID for the minifier.
	MinifierNodeID graft.ID = "plugin.minifier"
	// StyleCompilerNodeID is the graft node ID for the SCSS compiler.
	StyleCompilerNodeID graft.ID = "plugin.sass"
	// ImageOptimizerNodeID is the graft node ID for the image optimizer.
	ImageOptimizerNodeID graft.ID = "plugin.images"
	// IconFontNodeID is the graft node ID for the icon-font generator.
	IconFontNodeID graft.ID = "plugin.iconfont"
)

func init() {
	graft.Register(graft.Node[ports.Includer]{
		ID:        IncluderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Includer, error) {
			return NewIncluder(), nil
		},
	})

	graft.Register(graft.Node[ports.Prefixer]{
		ID:        PrefixerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Prefixer, error) {
			return NewPrefixer(), nil
		},
	})

	graft.Register(graft.Node[ports.Minifier]{
		ID:        MinifierNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Minifier, error) {
			return NewMinifier(), nil
		},
	})

	graft.Register(graft.Node[ports.StyleCompiler]{
		ID:        StyleCompilerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.StyleCompiler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewSassCompiler(executor), nil
		},
	})

	graft.Register(graft.Node[ports.ImageOptimizer]{
		ID:        ImageOptimizerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.ImageOptimizer, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewImageOptimizer(executor, log), nil
		},
	})

	graft.Register(graft.Node[ports.IconFontGenerator]{
		ID:        IconFontNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.IconFontGenerator, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewIconFontGenerator(executor), nil
		},
	})
}
