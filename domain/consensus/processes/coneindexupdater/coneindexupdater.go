package coneindexupdater

import (
	"github.com/ef-ds/deque"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

type coneIndexUpdater struct {
	blockStore          model.BlockStore
	dagTraversalManager model.DAGTraversalManager
}

// New instantiates a new ConeIndexUpdater
func New(blockStore model.BlockStore, dagTraversalManager model.DAGTraversalManager) model.ConeIndexUpdater {
	return &coneIndexUpdater{
		blockStore:          blockStore,
		dagTraversalManager: dagTraversalManager,
	}
}

// UpdateConeIndexes sets the bounds of every block referenced by milestone
// to the milestone index, then recomputes the bounds of the solid,
// unreferenced future cone of those blocks. It returns the blocks whose
// bounds were set to the milestone index.
func (ciu *coneIndexUpdater) UpdateConeIndexes(milestone *externalapi.Milestone) ([]externalapi.BlockID, error) {
	indexed := ciu.updatePastCone(milestone)
	updated := ciu.updateFutureCone(indexed)
	log.Debugf("Milestone %d indexed %d blocks and updated the bounds of %d blocks in their future cone",
		milestone.Index, len(indexed), updated)
	return indexed, nil
}

func (ciu *coneIndexUpdater) updatePastCone(milestone *externalapi.Milestone) []externalapi.BlockID {
	var indexed []externalapi.BlockID
	walker := ciu.dagTraversalManager.PastConeWalker([]externalapi.BlockID{milestone.BlockID})
	for walker.Next() {
		blockID, block := walker.Current()
		if block == nil {
			walker.Resolve(model.TraversalStop)
			continue
		}

		inCone := false
		ciu.blockStore.UpdateMetadata(blockID, func(metadata *model.BlockMetadata) {
			if !metadata.IsReferenced() || metadata.MilestoneIndex != milestone.Index {
				return
			}
			inCone = true
			ownBound := model.IndexBound{Index: milestone.Index, BlockID: blockID}
			metadata.SetBounds(ownBound, ownBound)
		})
		if !inCone {
			walker.Resolve(model.TraversalStop)
			continue
		}
		indexed = append(indexed, blockID)
		walker.Resolve(model.TraversalContinue)
	}
	return indexed
}

// updateFutureCone recomputes the bounds of the children of roots from their
// parents, and continues into the future cone wherever the bounds changed.
func (ciu *coneIndexUpdater) updateFutureCone(roots []externalapi.BlockID) int {
	updated := 0

	var queue deque.Deque
	for _, root := range roots {
		for _, child := range ciu.blockStore.Children(root) {
			queue.PushBack(child)
		}
	}
	for queue.Len() > 0 {
		value, _ := queue.PopFront()
		current := value.(externalapi.BlockID)

		block, ok := ciu.blockStore.Block(current)
		if !ok {
			continue
		}
		metadata, ok := ciu.blockStore.Metadata(current)
		if !ok || !metadata.IsSolid() || metadata.IsReferenced() {
			continue
		}
		omrsi, ymrsi, ok := ciu.inheritedBounds(block)
		if !ok {
			continue
		}

		changed := false
		ciu.blockStore.UpdateMetadata(current, func(metadata *model.BlockMetadata) {
			if metadata.IsReferenced() || metadata.IsMilestone() {
				return
			}
			if metadata.OMRSI != nil && *metadata.OMRSI == omrsi && *metadata.YMRSI == ymrsi {
				return
			}
			metadata.SetBounds(omrsi, ymrsi)
			changed = true
		})
		if !changed {
			continue
		}
		updated++
		for _, child := range ciu.blockStore.Children(current) {
			queue.PushBack(child)
		}
	}
	return updated
}

func (ciu *coneIndexUpdater) inheritedBounds(block *externalapi.Block) (omrsi, ymrsi model.IndexBound, ok bool) {
	for i, parent := range block.Parents {
		var parentOMRSI, parentYMRSI model.IndexBound
		if index, isSolidEntryPoint := ciu.blockStore.SolidEntryPointIndex(parent); isSolidEntryPoint {
			parentOMRSI = model.IndexBound{Index: index, BlockID: parent}
			parentYMRSI = parentOMRSI
		} else {
			metadata, found := ciu.blockStore.Metadata(parent)
			if !found || metadata.OMRSI == nil || metadata.YMRSI == nil {
				return model.IndexBound{}, model.IndexBound{}, false
			}
			parentOMRSI, parentYMRSI = *metadata.OMRSI, *metadata.YMRSI
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
