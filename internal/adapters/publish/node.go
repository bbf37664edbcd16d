package publish

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/plait/internal/core/ports"
)

// NodeID is the unique identifier for the uploader Graft node.
const NodeID graft.ID = "adapter.uploader"

func init() {
	graft.Register(graft.Node[ports.Uploader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Uploader, error) {
			return NewS3Uploader(), nil
		},
	})
}
