package milestonesolidifier

import (
	"sync"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// milestoneSolidifier requests the milestones following the solid one and
// hands them to the confirmer once their past cone is solid
type milestoneSolidifier struct {
	blockStore          model.BlockStore
	blockRequester      model.BlockRequester
	confirmer           model.LedgerConfirmer
	dagTraversalManager model.DAGTraversalManager
	eventSink           model.EventSink
	syncWindow          externalapi.MilestoneIndex

	mtx                sync.Mutex
	lastRequestedIndex externalapi.MilestoneIndex
}

// New instantiates a new MilestoneSolidifier
func New(blockStore model.BlockStore, blockRequester model.BlockRequester, confirmer model.LedgerConfirmer,
	dagTraversalManager model.DAGTraversalManager, eventSink model.EventSink,
	syncWindow externalapi.MilestoneIndex) model.MilestoneSolidifier {

	return &milestoneSolidifier{
		blockStore:          blockStore,
		blockRequester:      blockRequester,
		confirmer:           confirmer,
		dagTraversalManager: dagTraversalManager,
		eventSink:           eventSink,
		syncWindow:          syncWindow,
	}
}

// Solidify reacts to a milestone candidate: a freshly validated milestone or
// a solidified milestone block. It confirms as many consecutive milestones
// above the solid milestone index as are solid, and requests what's missing
// for the first one that isn't.
func (ms *milestoneSolidifier) Solidify(candidateIndex externalapi.MilestoneIndex) error {
	ms.mtx.Lock()
	defer ms.mtx.Unlock()

	ms.requestMilestoneRange()
	ms.requestMissingParents(candidateIndex)

	latestIndex := ms.blockStore.LatestMilestoneIndex()
	for index := ms.blockStore.SolidMilestoneIndex() + 1; index <= latestIndex; index++ {
		milestone, ok := ms.blockStore.Milestone(index)
		if !ok {
			ms.blockRequester.RequestMilestone(index)
			return nil
		}
		metadata, ok := ms.blockStore.Metadata(milestone.BlockID)
		if !ok || !metadata.IsSolid() {
			requested := ms.solidifyHeavy(milestone)
			log.Debugf("Milestone %d isn't solid yet, requested %d blocks of its past cone",
				index, requested)
			return nil
		}

		_, err := ms.confirmer.ConfirmMilestone(index)
		if err != nil {
			return err
		}
		ms.blockStore.SetSolidMilestoneIndex(index)
		ms.eventSink.Emit(&externalapi.SolidMilestoneChanged{Index: index, Milestone: milestone})
	}
	return nil
}

// requestMilestoneRange requests the milestones of the sync window above the
// solid milestone that haven't been requested yet.
func (ms *milestoneSolidifier) requestMilestoneRange() {
	solidIndex := ms.blockStore.SolidMilestoneIndex()
	upperIndex := solidIndex + ms.syncWindow
	if latestIndex := ms.blockStore.LatestMilestoneIndex(); latestIndex < upperIndex {
		upperIndex = latestIndex
	}

	fromIndex := solidIndex + 1
	if ms.lastRequestedIndex >= fromIndex {
		fromIndex = ms.lastRequestedIndex + 1
	}
	for index := fromIndex; index <= upperIndex; index++ {
		if _, ok := ms.blockStore.Milestone(index); ok {
			continue
		}
		ms.blockRequester.RequestMilestone(index)
	}
	if upperIndex > ms.lastRequestedIndex {
		ms.lastRequestedIndex = upperIndex
	}
}

// requestMissingParents requests the parents of the candidate milestone
// that haven't arrived yet.
func (ms *milestoneSolidifier) requestMissingParents(candidateIndex externalapi.MilestoneIndex) {
	milestone, ok := ms.blockStore.Milestone(candidateIndex)
	if !ok {
		return
	}
	for _, parent := range milestone.Payload.Parents {
		if ms.blockStore.Contains(parent) || ms.blockStore.IsSolidEntryPoint(parent) {
			continue
		}
		ms.blockRequester.RequestBlock(parent, candidateIndex)
	}
}

// solidifyHeavy walks the whole non-solid past cone of milestone and
// requests every block that is missing. It returns the number of new
// requests.
func (ms *milestoneSolidifier) solidifyHeavy(milestone *externalapi.Milestone) int {
	requested := 0
	walker := ms.dagTraversalManager.PastConeWalker([]externalapi.BlockID{milestone.BlockID})
	for walker.Next() {
		blockID, block := walker.Current()
		if block == nil {
			if ms.blockRequester.RequestBlock(blockID, milestone.Index) {
				requested++
			}
			walker.Resolve(model.TraversalStop)
			continue
		}
		metadata, ok := ms.blockStore.Metadata(blockID)
		if ok && metadata.IsSolid() {
			walker.Resolve(model.TraversalStop)
			continue
		}
		walker.Resolve(model.TraversalContinue)
	}
	return requested
}
