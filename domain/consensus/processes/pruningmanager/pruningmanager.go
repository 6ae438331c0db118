package pruningmanager

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/infrastructure/logger"
)

// ErrInvalidPruningTarget is returned when asked to prune to an index that
// isn't strictly between the pruning index and the confirmed milestone index.
var ErrInvalidPruningTarget = errors.New("invalid pruning target")

// pruningManager deletes confirmed history and keeps solid entry points in
// its place
type pruningManager struct {
	blockStore          model.BlockStore
	storage             model.StorageBackend
	dagTraversalManager model.DAGTraversalManager
	eventSink           model.EventSink

	belowMaxDepth   externalapi.MilestoneIndex
	pruningDelay    externalapi.MilestoneIndex
	pruningInterval externalapi.MilestoneIndex

	tangleLock *sync.RWMutex
}

// New instantiates a new PruningManager. Prune holds tangleLock for
// writing, so it never runs during a confirmation.
func New(blockStore model.BlockStore, storage model.StorageBackend, dagTraversalManager model.DAGTraversalManager,
	eventSink model.EventSink, belowMaxDepth, pruningDelay, pruningInterval externalapi.MilestoneIndex,
	tangleLock *sync.RWMutex) model.PruningManager {

	return &pruningManager{
		blockStore:          blockStore,
		storage:             storage,
		dagTraversalManager: dagTraversalManager,
		eventSink:           eventSink,
		belowMaxDepth:       belowMaxDepth,
		pruningDelay:        pruningDelay,
		pruningInterval:     pruningInterval,
		tangleLock:          tangleLock,
	}
}

// PruneIfNeeded prunes to the confirmed milestone index minus the pruning
// delay once that is at least the pruning interval above the pruning index.
func (pm *pruningManager) PruneIfNeeded() (bool, error) {
	confirmedIndex := pm.blockStore.ConfirmedMilestoneIndex()
	if pm.pruningDelay == 0 || confirmedIndex <= pm.pruningDelay {
		return false, nil
	}
	targetIndex := confirmedIndex - pm.pruningDelay
	if targetIndex < pm.blockStore.PruningIndex()+pm.pruningInterval {
		return false, nil
	}
	err := pm.Prune(targetIndex)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Prune deletes every block referenced by a milestone up to targetIndex,
// along with the unreferenced blocks fallen below max depth, and the
// ledger history of those milestones. The blocks referenced up to
// targetIndex that are approved by later blocks become the new solid entry
// points.
func (pm *pruningManager) Prune(targetIndex externalapi.MilestoneIndex) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "pruningManager.Prune")
	defer onEnd()

	pm.tangleLock.Lock()
	defer pm.tangleLock.Unlock()

	pruningIndex := pm.blockStore.PruningIndex()
	confirmedIndex := pm.blockStore.ConfirmedMilestoneIndex()
	if targetIndex <= pruningIndex || targetIndex >= confirmedIndex {
		return errors.Wrapf(ErrInvalidPruningTarget, "target %d must be above the pruning index %d "+
			"and below the confirmed milestone index %d", targetIndex, pruningIndex, confirmedIndex)
	}

	solidEntryPoints, referencedBlocks := pm.solidEntryPoints(pruningIndex, targetIndex, confirmedIndex)
	prunedBlocks := append(referencedBlocks, pm.blocksBelowMaxDepth(targetIndex)...)

	err := pm.storage.StoreSolidEntryPoints(solidEntryPoints)
	if err != nil {
		return err
	}
	for index := pruningIndex + 1; index <= targetIndex; index++ {
		err = pm.storage.PruneMilestone(index)
		if err != nil {
			return err
		}
	}

	pm.blockStore.ReplaceSolidEntryPoints(solidEntryPoints)
	for _, blockID := range prunedBlocks {
		pm.blockStore.Delete(blockID)
	}
	for index := pruningIndex + 1; index <= targetIndex; index++ {
		pm.blockStore.RemoveMilestone(index)
	}
	pm.blockStore.UpdateEntryPointIndex(targetIndex)
	pm.blockStore.SetPruningIndex(targetIndex)

	log.Infof("Pruned the tangle up to milestone %d: deleted %d blocks, %d solid entry points remain",
		targetIndex, len(prunedBlocks), len(solidEntryPoints))
	pm.eventSink.Emit(&externalapi.PrunedIndex{Index: targetIndex})
	return nil
}

// solidEntryPoints walks the cones of the milestones above pruningIndex up
// to targetIndex. It returns the solid entry points after pruning and the
// blocks those milestones referenced.
func (pm *pruningManager) solidEntryPoints(pruningIndex, targetIndex,
	confirmedIndex externalapi.MilestoneIndex) ([]*model.SolidEntryPoint, []externalapi.BlockID) {

	retainedUntil := make(map[externalapi.BlockID]externalapi.MilestoneIndex)
	for _, solidEntryPoint := range pm.blockStore.SolidEntryPoints() {
		if solidEntryPoint.Index > targetIndex {
			retainedUntil[solidEntryPoint.BlockID] = solidEntryPoint.Index
		}
	}

	var referencedBlocks []externalapi.BlockID
	for index := pruningIndex + 1; index <= targetIndex; index++ {
		milestone, ok := pm.blockStore.Milestone(index)
		if !ok {
			continue
		}
		walker := pm.dagTraversalManager.PastConeWalker([]externalapi.BlockID{milestone.BlockID})
		for walker.Next() {
			blockID, block := walker.Current()
			metadata, ok := pm.blockStore.Metadata(blockID)
			if block == nil || !ok || !metadata.IsReferenced() || metadata.MilestoneIndex != index {
				walker.Resolve(model.TraversalStop)
				continue
			}
			referencedBlocks = append(referencedBlocks, blockID)
			if childIndex, ok := pm.maxChildIndex(blockID, targetIndex, confirmedIndex); ok {
				retainedUntil[blockID] = childIndex
			}
			walker.Resolve(model.TraversalContinue)
		}
	}

	solidEntryPoints := make([]*model.SolidEntryPoint, 0, len(retainedUntil))
	for blockID, index := range retainedUntil {
		solidEntryPoints = append(solidEntryPoints, &model.SolidEntryPoint{BlockID: blockID, Index: index})
	}
	sort.Slice(solidEntryPoints, func(i, j int) bool {
		return solidEntryPoints[i].BlockID.Less(solidEntryPoints[j].BlockID)
	})
	return solidEntryPoints, referencedBlocks
}

// maxChildIndex returns the highest milestone index referencing a child of
// blockID above targetIndex. A child no milestone referenced yet counts as
// referenced at confirmedIndex.
func (pm *pruningManager) maxChildIndex(blockID externalapi.BlockID,
	targetIndex, confirmedIndex externalapi.MilestoneIndex) (externalapi.MilestoneIndex, bool) {

	var maxIndex externalapi.MilestoneIndex
	found := false
	for _, child := range pm.blockStore.Children(blockID) {
		metadata, ok := pm.blockStore.Metadata(child)
		if !ok {
			continue
		}
		childIndex := confirmedIndex
		if metadata.IsReferenced() {
			childIndex = metadata.MilestoneIndex
		}
		if childIndex <= targetIndex {
			continue
		}
		if !found || childIndex > maxIndex {
			maxIndex = childIndex
			found = true
		}
	}
	return maxIndex, found
}

// blocksBelowMaxDepth returns the solid unreferenced blocks no milestone
// above targetIndex may approve anymore.
func (pm *pruningManager) blocksBelowMaxDepth(targetIndex externalapi.MilestoneIndex) []externalapi.BlockID {
	var blockIDs []externalapi.BlockID
	for _, blockID := range pm.blockStore.BlockIDs() {
		metadata, ok := pm.blockStore.Metadata(blockID)
		if !ok || metadata.IsReferenced() || metadata.YMRSI == nil {
			continue
		}
		if metadata.YMRSI.Index+pm.belowMaxDepth <= targetIndex {
			blockIDs = append(blockIDs, blockID)
		}
	}
	return blockIDs
}
