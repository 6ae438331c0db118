package dagtraversalmanager

import (
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// dagTraversalManager exposes methods for traversing blocks
// in the tangle
type dagTraversalManager struct {
	blockStore model.BlockStore
}

// New instantiates a new DAGTraversalManager
func New(blockStore model.BlockStore) model.DAGTraversalManager {
	return &dagTraversalManager{
		blockStore: blockStore,
	}
}

// PastConeWalker returns a walker over the past cone of roots. roots[0] is
// yielded first and parents are descended into in the order they are listed.
func (dtm *dagTraversalManager) PastConeWalker(roots []externalapi.BlockID) model.PastConeWalker {
	stack := make([]externalapi.BlockID, len(roots))
	for i, root := range roots {
		stack[len(roots)-1-i] = root
	}
	return &pastConeWalker{
		blockStore: dtm.blockStore,
		stack:      stack,
		visited:    make(map[externalapi.BlockID]struct{}),
	}
}
