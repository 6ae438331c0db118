package blockstore

import (
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

func (bs *blockStore) AddMilestone(milestone *externalapi.Milestone) bool {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	if _, ok := bs.milestones[milestone.Index]; ok {
		return false
	}
	bs.milestones[milestone.Index] = milestone
	if milestone.Index > bs.latestMilestoneIndex {
		bs.latestMilestoneIndex = milestone.Index
	}
	return true
}

func (bs *blockStore) Milestone(index externalapi.MilestoneIndex) (*externalapi.Milestone, bool) {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	milestone, ok := bs.milestones[index]
	return milestone, ok
}

func (bs *blockStore) RemoveMilestone(index externalapi.MilestoneIndex) {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	delete(bs.milestones, index)
}

func (bs *blockStore) LatestMilestoneIndex() externalapi.MilestoneIndex {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return bs.latestMilestoneIndex
}

func (bs *blockStore) SolidMilestoneIndex() externalapi.MilestoneIndex {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return bs.solidMilestoneIndex
}

func (bs *blockStore) SetSolidMilestoneIndex(index externalapi.MilestoneIndex) {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	bs.solidMilestoneIndex = index
	if index > bs.latestMilestoneIndex {
		bs.latestMilestoneIndex = index
	}
}

func (bs *blockStore) ConfirmedMilestoneIndex() externalapi.MilestoneIndex {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return bs.confirmedMilestoneIndex
}

func (bs *blockStore) SetConfirmedMilestoneIndex(index externalapi.MilestoneIndex) {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	bs.confirmedMilestoneIndex = index
}

func (bs *blockStore) PruningIndex() externalapi.MilestoneIndex {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return bs.pruningIndex
}

func (bs *blockStore) SetPruningIndex(index externalapi.MilestoneIndex) {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	bs.pruningIndex = index
}
