package propagator

import (
	"github.com/ef-ds/deque"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// propagator maintains the solidity frontier of the tangle
type propagator struct {
	blockStore model.BlockStore
	eventSink  model.EventSink
}

// New instantiates a new Propagator
func New(blockStore model.BlockStore, eventSink model.EventSink) model.Propagator {
	return &propagator{
		blockStore: blockStore,
		eventSink:  eventSink,
	}
}

// Propagate marks blockID solid once all of its parents are, and continues
// into its future cone as long as blocks become solid. Blocks with a
// non-solid parent are left alone: they are revisited when that parent
// solidifies.
func (p *propagator) Propagate(blockID externalapi.BlockID) []*model.SolidifiedBlock {
	var solidified []*model.SolidifiedBlock

	var stack deque.Deque
	stack.PushBack(blockID)
	for stack.Len() > 0 {
		value, _ := stack.PopBack()
		current := value.(externalapi.BlockID)

		block, ok := p.blockStore.Block(current)
		if !ok {
			continue
		}
		metadata, ok := p.blockStore.Metadata(current)
		if !ok || metadata.IsSolid() {
			continue
		}

		omrsi, ymrsi, allParentsSolid := p.inheritedBounds(block)
		if !allParentsSolid {
			continue
		}

		solidifiedBlock, wasSolidified := p.markSolid(current, block, omrsi, ymrsi)
		if !wasSolidified {
			continue
		}
		log.Tracef("Block %s is solid with bounds %s/%s", current, omrsi, ymrsi)
		p.eventSink.Emit(&externalapi.BlockSolidified{BlockID: current})
		solidified = append(solidified, solidifiedBlock)

		children := p.blockStore.Children(current)
		for i := len(children) - 1; i >= 0; i-- {
			stack.PushBack(children[i])
		}
	}
	return solidified
}

// markSolid sets the solid flag inside the block's critical section. Two
// propagations racing on the same block solidify it only once.
func (p *propagator) markSolid(blockID externalapi.BlockID, block *externalapi.Block,
	omrsi, ymrsi model.IndexBound) (*model.SolidifiedBlock, bool) {

	var solidifiedBlock *model.SolidifiedBlock
	p.blockStore.UpdateMetadata(blockID, func(metadata *model.BlockMetadata) {
		if metadata.IsSolid() {
			return
		}
		solidifiedBlock = &model.SolidifiedBlock{
			BlockID: blockID,
			Parents: externalapi.CloneBlockIDs(block.Parents),
		}
		if metadata.IsMilestone() {
			ownBound := model.IndexBound{Index: metadata.MilestoneIndex, BlockID: blockID}
			metadata.SetSolid(ownBound, ownBound)
			solidifiedBlock.MilestoneIndex = metadata.MilestoneIndex
			return
		}
		metadata.SetSolid(omrsi, ymrsi)
	})
	return solidifiedBlock, solidifiedBlock != nil
}

// inheritedBounds returns the minimal OMRSI and the maximal YMRSI over the
// parents of block. A solid entry point parent contributes its index as
// both bounds.
func (p *propagator) inheritedBounds(block *externalapi.Block) (omrsi, ymrsi model.IndexBound, allParentsSolid bool) {
	for i, parent := range block.Parents {
		parentOMRSI, parentYMRSI, ok := p.parentBounds(parent)
		if !ok {
			return model.IndexBound{}, model.IndexBound{}, false
		}
		if i == 0 || parentOMRSI.Index < omrsi.Index {
			omrsi = parentOMRSI
		}
		if i == 0 || parentYMRSI.Index > ymrsi.Index {
			ymrsi = parentYMRSI
		}
	}
	return omrsi, ymrsi, true
}

func (p *propagator) parentBounds(parent externalapi.BlockID) (omrsi, ymrsi model.IndexBound, isSolid bool) {
	if index, isSolidEntryPoint := p.blockStore.SolidEntryPointIndex(parent); isSolidEntryPoint {
		bound := model.IndexBound{Index: index, BlockID: parent}
		return bound, bound, true
	}
	metadata, ok := p.blockStore.Metadata(parent)
	if !ok || !metadata.IsSolid() || metadata.OMRSI == nil || metadata.YMRSI == nil {
		return model.IndexBound{}, model.IndexBound{}, false
	}
	return *metadata.OMRSI, *metadata.YMRSI, true
}
