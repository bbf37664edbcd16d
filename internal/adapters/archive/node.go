package archive

import (
	"context"

	"github.com/grindlemire/graft"
	plaitfs "go.trai.ch/plait/internal/adapters/fs"
	"go.trai.ch/plait/internal/core/ports"
)

// NodeID is the unique identifier for the archiver Graft node.
const NodeID graft.ID = "adapter.archiver"

func init() {
	graft.Register(graft.Node[ports.Archiver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{plaitfs.WalkerNodeID},
		Run: func(ctx context.Context) (ports.Archiver, error) {
			walker, err := graft.Dep[*plaitfs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewZipper(walker), nil
		},
	})
}
