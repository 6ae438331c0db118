package consensus

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// ErrConsensusStopped is returned when submitting a block after Stop.
var ErrConsensusStopped = errors.New("consensus is stopped")

// Consensus maintains the tangle of one node and applies its milestones to
// the ledger
type Consensus interface {
	// SubmitBlock validates block in isolation and stores it. Solidification
	// and confirmation follow asynchronously.
	SubmitBlock(block *externalapi.Block) (externalapi.BlockID, error)

	GetBlock(blockID externalapi.BlockID) (*externalapi.Block, bool)
	GetBlockMetadata(blockID externalapi.BlockID) (*model.BlockMetadata, bool)
	IsSolid(blockID externalapi.BlockID) bool

	// Confirm computes the white-flag confirmation of milestone without
	// applying it.
	Confirm(milestone *externalapi.Milestone) (*model.WhiteFlagMetadata, error)
	Prune(targetIndex externalapi.MilestoneIndex) error
	SelectTips() ([]externalapi.BlockID, error)

	Milestone(index externalapi.MilestoneIndex) (*externalapi.Milestone, bool)
	LatestMilestoneIndex() externalapi.MilestoneIndex
	SolidMilestoneIndex() externalapi.MilestoneIndex
	ConfirmedMilestoneIndex() externalapi.MilestoneIndex
	PruningIndex() externalapi.MilestoneIndex
	SolidEntryPoints() []*model.SolidEntryPoint
	LedgerStateCommitment() ([]byte, error)
	TipCount() int

	// Stop stops accepting blocks and returns once every queued block was
	// processed.
	Stop()
}

type consensus struct {
	lock      sync.RWMutex
	isStopped bool

	config     *Config
	blockStore model.BlockStore
	storage    model.StorageBackend

	blockProcessor      model.BlockProcessor
	milestoneValidator  model.MilestoneValidator
	blockRequester      model.BlockRequester
	propagator          model.Propagator
	milestoneSolidifier model.MilestoneSolidifier
	whiteFlag           model.WhiteFlagOrderer
	tipPool             model.TipPool
	pruningManager      model.PruningManager
	eventSink           model.EventSink

	// tangleLock serializes pruning with confirmations
	tangleLock *sync.RWMutex

	milestoneChan chan externalapi.BlockID
	propagateChan chan externalapi.BlockID
	tipChan       chan *model.SolidifiedBlock
	solidifyChan  chan externalapi.MilestoneIndex
	pruneChan     chan struct{}

	workersWaitGroup sync.WaitGroup
	pendingTasks     int64
}

func (s *consensus) SubmitBlock(block *externalapi.Block) (externalapi.BlockID, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.isStopped {
		return externalapi.BlockID{}, errors.WithStack(ErrConsensusStopped)
	}

	blockID, isNew, err := s.blockProcessor.ProcessBlock(block)
	if err != nil {
		return externalapi.BlockID{}, err
	}
	if !isNew {
		return blockID, nil
	}

	if _, isMilestone := block.Milestone(); isMilestone {
		s.addTask()
		s.milestoneChan <- blockID
		return blockID, nil
	}
	s.addTask()
	s.propagateChan <- blockID
	return blockID, nil
}

func (s *consensus) GetBlock(blockID externalapi.BlockID) (*externalapi.Block, bool) {
	return s.blockStore.Block(blockID)
}

func (s *consensus) GetBlockMetadata(blockID externalapi.BlockID) (*model.BlockMetadata, bool) {
	return s.blockStore.Metadata(blockID)
}

// IsSolid returns whether the past cone of blockID is complete. Solid entry
// points are solid by definition.
func (s *consensus) IsSolid(blockID externalapi.BlockID) bool {
	if s.blockStore.IsSolidEntryPoint(blockID) {
		return true
	}
	metadata, ok := s.blockStore.Metadata(blockID)
	return ok && metadata.IsSolid()
}

func (s *consensus) Confirm(milestone *externalapi.Milestone) (*model.WhiteFlagMetadata, error) {
	s.tangleLock.RLock()
	defer s.tangleLock.RUnlock()

	return s.whiteFlag.Confirm(milestone)
}

func (s *consensus) Prune(targetIndex externalapi.MilestoneIndex) error {
	return s.pruningManager.Prune(targetIndex)
}

func (s *consensus) SelectTips() ([]externalapi.BlockID, error) {
	return s.tipPool.SelectTips(s.config.TipSelectionCount)
}

func (s *consensus) Milestone(index externalapi.MilestoneIndex) (*externalapi.Milestone, bool) {
	return s.blockStore.Milestone(index)
}

func (s *consensus) LatestMilestoneIndex() externalapi.MilestoneIndex {
	return s.blockStore.LatestMilestoneIndex()
}

func (s *consensus) SolidMilestoneIndex() externalapi.MilestoneIndex {
	return s.blockStore.SolidMilestoneIndex()
}

func (s *consensus) ConfirmedMilestoneIndex() externalapi.MilestoneIndex {
	return s.blockStore.ConfirmedMilestoneIndex()
}

func (s *consensus) PruningIndex() externalapi.MilestoneIndex {
	return s.blockStore.PruningIndex()
}

func (s *consensus) SolidEntryPoints() []*model.SolidEntryPoint {
	return s.blockStore.SolidEntryPoints()
}

func (s *consensus) LedgerStateCommitment() ([]byte, error) {
	return s.storage.LedgerStateCommitment()
}

func (s *consensus) TipCount() int {
	return s.tipPool.Count()
}

func (s *consensus) Stop() {
	s.lock.Lock()
	if s.isStopped {
		s.lock.Unlock()
		return
	}
	s.isStopped = true
	close(s.milestoneChan)
	s.lock.Unlock()

	s.workersWaitGroup.Wait()
	log.Infof("Consensus stopped at confirmed milestone %d", s.blockStore.ConfirmedMilestoneIndex())
}

// addTask must be called before every send to a worker channel, and
// taskDone after the receiving worker is done with the item.
func (s *consensus) addTask() {
	atomic.AddInt64(&s.pendingTasks, 1)
}

func (s *consensus) taskDone() {
	atomic.AddInt64(&s.pendingTasks, -1)
}

func (s *consensus) isIdle() bool {
	return atomic.LoadInt64(&s.pendingTasks) == 0
}
