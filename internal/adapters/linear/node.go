package linear

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/plait/internal/adapters/detector"
	"go.trai.ch/plait/internal/core/ports"
)

// NodeID is the unique identifier for the renderer Graft node.
const NodeID graft.ID = "adapter.renderer"

func init() {
	graft.Register(graft.Node[ports.Renderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Renderer, error) {
			profile := detector.Detect(os.Stderr).Profile()
			return NewRenderer(nil, nil).WithProfile(profile), nil
		},
	})
}
