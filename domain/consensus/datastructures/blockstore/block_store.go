package blockstore

import (
	"sort"
	"sync"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

type blockEntry struct {
	block    *externalapi.Block
	metadata *model.BlockMetadata
}

// blockStore is the in-memory tangle
type blockStore struct {
	lock sync.RWMutex

	blocks           map[externalapi.BlockID]*blockEntry
	children         map[externalapi.BlockID][]externalapi.BlockID
	solidEntryPoints map[externalapi.BlockID]externalapi.MilestoneIndex
	entryPointIndex  externalapi.MilestoneIndex

	milestones              map[externalapi.MilestoneIndex]*externalapi.Milestone
	latestMilestoneIndex    externalapi.MilestoneIndex
	solidMilestoneIndex     externalapi.MilestoneIndex
	confirmedMilestoneIndex externalapi.MilestoneIndex
	pruningIndex            externalapi.MilestoneIndex
}

// New instantiates a new BlockStore
func New() model.BlockStore {
	return &blockStore{
		blocks:           make(map[externalapi.BlockID]*blockEntry),
		children:         make(map[externalapi.BlockID][]externalapi.BlockID),
		solidEntryPoints: make(map[externalapi.BlockID]externalapi.MilestoneIndex),
		milestones:       make(map[externalapi.MilestoneIndex]*externalapi.Milestone),
	}
}

func (bs *blockStore) Insert(blockID externalapi.BlockID, block *externalapi.Block,
	metadata *model.BlockMetadata) bool {

	bs.lock.Lock()
	defer bs.lock.Unlock()

	if _, ok := bs.blocks[blockID]; ok {
		return false
	}
	bs.blocks[blockID] = &blockEntry{block: block, metadata: metadata.Clone()}
	for _, parent := range block.Parents {
		bs.children[parent] = append(bs.children[parent], blockID)
	}
	log.Tracef("Inserted block %s", blockID)
	return true
}

func (bs *blockStore) Block(blockID externalapi.BlockID) (*externalapi.Block, bool) {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	entry, ok := bs.blocks[blockID]
	if !ok {
		return nil, false
	}
	return entry.block, true
}

func (bs *blockStore) Metadata(blockID externalapi.BlockID) (*model.BlockMetadata, bool) {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	entry, ok := bs.blocks[blockID]
	if !ok {
		return nil, false
	}
	return entry.metadata.Clone(), true
}

func (bs *blockStore) Contains(blockID externalapi.BlockID) bool {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	_, ok := bs.blocks[blockID]
	return ok
}

func (bs *blockStore) UpdateMetadata(blockID externalapi.BlockID, update func(metadata *model.BlockMetadata)) bool {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	entry, ok := bs.blocks[blockID]
	if !ok {
		return false
	}
	update(entry.metadata)
	return true
}

func (bs *blockStore) Children(blockID externalapi.BlockID) []externalapi.BlockID {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return externalapi.CloneBlockIDs(bs.children[blockID])
}

func (bs *blockStore) Delete(blockID externalapi.BlockID) {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	entry, ok := bs.blocks[blockID]
	if !ok {
		return
	}
	delete(bs.blocks, blockID)
	for _, parent := range entry.block.Parents {
		bs.removeChild(parent, blockID)
	}

	// Children that are still around keep referencing blockID as a
	// parent, so the adjacency list is only dropped once none remain.
	remaining := bs.children[blockID][:0]
	for _, child := range bs.children[blockID] {
		if _, ok := bs.blocks[child]; ok {
			remaining = append(remaining, child)
		}
	}
	if len(remaining) == 0 {
		delete(bs.children, blockID)
	} else {
		bs.children[blockID] = remaining
	}
}

func (bs *blockStore) removeChild(parent externalapi.BlockID, child externalapi.BlockID) {
	children := bs.children[parent]
	for i, candidate := range children {
		if candidate == child {
			children = append(children[:i], children[i+1:]...)
			break
		}
	}
	if len(children) == 0 {
		delete(bs.children, parent)
		return
	}
	bs.children[parent] = children
}

func (bs *blockStore) Count() int {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return len(bs.blocks)
}

func (bs *blockStore) BlockIDs() []externalapi.BlockID {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	blockIDs := make([]externalapi.BlockID, 0, len(bs.blocks))
	for blockID := range bs.blocks {
		blockIDs = append(blockIDs, blockID)
	}
	externalapi.SortBlockIDs(blockIDs)
	return blockIDs
}

func (bs *blockStore) IsSolidEntryPoint(blockID externalapi.BlockID) bool {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	_, ok := bs.solidEntryPoints[blockID]
	return ok
}

func (bs *blockStore) SolidEntryPointIndex(blockID externalapi.BlockID) (externalapi.MilestoneIndex, bool) {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	index, ok := bs.solidEntryPoints[blockID]
	return index, ok
}

func (bs *blockStore) AddSolidEntryPoint(blockID externalapi.BlockID, index externalapi.MilestoneIndex) {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	bs.solidEntryPoints[blockID] = index
}

func (bs *blockStore) ReplaceSolidEntryPoints(solidEntryPoints []*model.SolidEntryPoint) {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	bs.solidEntryPoints = make(map[externalapi.BlockID]externalapi.MilestoneIndex, len(solidEntryPoints))
	for _, solidEntryPoint := range solidEntryPoints {
		bs.solidEntryPoints[solidEntryPoint.BlockID] = solidEntryPoint.Index
	}
}

func (bs *blockStore) SolidEntryPoints() []*model.SolidEntryPoint {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	solidEntryPoints := make([]*model.SolidEntryPoint, 0, len(bs.solidEntryPoints))
	for blockID, index := range bs.solidEntryPoints {
		solidEntryPoints = append(solidEntryPoints, &model.SolidEntryPoint{BlockID: blockID, Index: index})
	}
	sort.Slice(solidEntryPoints, func(i, j int) bool {
		return solidEntryPoints[i].BlockID.Less(solidEntryPoints[j].BlockID)
	})
	return solidEntryPoints
}

func (bs *blockStore) UpdateEntryPointIndex(index externalapi.MilestoneIndex) {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	bs.entryPointIndex = index
}

func (bs *blockStore) EntryPointIndex() externalapi.MilestoneIndex {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return bs.entryPointIndex
}
