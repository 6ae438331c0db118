package dagtraversalmanager

import (
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

type pastConeWalker struct {
	blockStore model.BlockStore

	stack   []externalapi.BlockID
	visited map[externalapi.BlockID]struct{}

	solidEntryPointsReached []externalapi.BlockID

	current      externalapi.BlockID
	currentBlock *externalapi.Block
	hasCurrent   bool
}

// Next advances the walker to the next block to decide upon. Visited blocks
// are skipped and solid entry points are marked visited without being
// yielded. Next returns false once the stack is empty.
func (w *pastConeWalker) Next() bool {
	if w.hasCurrent {
		panic(errors.Errorf("Next called before resolving block %s", w.current))
	}
	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]
		if w.IsVisited(top) {
			w.pop()
			continue
		}
		if w.blockStore.IsSolidEntryPoint(top) {
			w.pop()
			w.visited[top] = struct{}{}
			w.solidEntryPointsReached = append(w.solidEntryPointsReached, top)
			continue
		}
		block, _ := w.blockStore.Block(top)
		w.current = top
		w.currentBlock = block
		w.hasCurrent = true
		return true
	}
	return false
}

func (w *pastConeWalker) Current() (externalapi.BlockID, *externalapi.Block) {
	return w.current, w.currentBlock
}

func (w *pastConeWalker) Resolve(outcome model.TraversalOutcome) {
	if !w.hasCurrent {
		panic(errors.New("Resolve called without a current block"))
	}

	switch outcome {
	case model.TraversalContinue:
		w.pop()
		w.visited[w.current] = struct{}{}
		if w.currentBlock != nil {
			parents := w.currentBlock.Parents
			for i := len(parents) - 1; i >= 0; i-- {
				if !w.IsVisited(parents[i]) {
					w.stack = append(w.stack, parents[i])
				}
			}
		}
	case model.TraversalStop:
		w.pop()
		w.visited[w.current] = struct{}{}
	case model.TraversalDefer:
		parent, ok := w.FirstUnvisitedParent(w.currentBlock)
		if !ok {
			panic(errors.Errorf("cannot defer block %s: all of its parents were visited", w.current))
		}
		w.stack = append(w.stack, parent)
	default:
		panic(errors.Errorf("unknown traversal outcome %d", outcome))
	}
	w.hasCurrent = false
	w.currentBlock = nil
}

func (w *pastConeWalker) IsVisited(blockID externalapi.BlockID) bool {
	_, ok := w.visited[blockID]
	return ok
}

func (w *pastConeWalker) FirstUnvisitedParent(block *externalapi.Block) (externalapi.BlockID, bool) {
	if block == nil {
		return externalapi.BlockID{}, false
	}
	for _, parent := range block.Parents {
		if !w.IsVisited(parent) {
			return parent, true
		}
	}
	return externalapi.BlockID{}, false
}

// SolidEntryPointsReached returns the solid entry points the walk
// terminated at, in the order they were reached.
func (w *pastConeWalker) SolidEntryPointsReached() []externalapi.BlockID {
	return externalapi.CloneBlockIDs(w.solidEntryPointsReached)
}

func (w *pastConeWalker) pop() {
	w.stack = w.stack[:len(w.stack)-1]
}
