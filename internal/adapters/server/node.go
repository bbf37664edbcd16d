package server

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/plait/internal/adapters/logger"
	"go.trai.ch/plait/internal/core/ports"
)

// NodeID is the unique identifier for the preview server Graft node.
const NodeID graft.ID = "adapter.server"

func init() {
	graft.Register(graft.Node[*Server]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Server, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewServer(log), nil
		},
	})
}
