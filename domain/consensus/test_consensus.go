package consensus

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// TestConsensus is a Consensus with access to its internals, for tests
type TestConsensus interface {
	Consensus

	BlockStore() model.BlockStore
	StorageBackend() model.StorageBackend
	TipPool() model.TipPool

	// WaitUntilIdle blocks until every worker is done with its queued items.
	WaitUntilIdle(timeout time.Duration) error

	RequestedBlocks() []externalapi.BlockID
	RequestedMilestones() []externalapi.MilestoneIndex
	Events() []externalapi.ConsensusEvent
}

type testConsensus struct {
	*consensus
	requests *requestLog
	events   *eventLog
}

func (tc *testConsensus) BlockStore() model.BlockStore {
	return tc.blockStore
}

func (tc *testConsensus) StorageBackend() model.StorageBackend {
	return tc.storage
}

func (tc *testConsensus) TipPool() model.TipPool {
	return tc.tipPool
}

func (tc *testConsensus) WaitUntilIdle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !tc.isIdle() {
		if time.Now().After(deadline) {
			return errors.Errorf("the consensus workers are still busy after %s", timeout)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (tc *testConsensus) RequestedBlocks() []externalapi.BlockID {
	tc.requests.Lock()
	defer tc.requests.Unlock()
	return externalapi.CloneBlockIDs(tc.requests.blocks)
}

func (tc *testConsensus) RequestedMilestones() []externalapi.MilestoneIndex {
	tc.requests.Lock()
	defer tc.requests.Unlock()
	return append([]externalapi.MilestoneIndex(nil), tc.requests.milestones...)
}

func (tc *testConsensus) Events() []externalapi.ConsensusEvent {
	tc.events.Lock()
	defer tc.events.Unlock()
	return append([]externalapi.ConsensusEvent(nil), tc.events.events...)
}

type requestLog struct {
	sync.Mutex
	blocks     []externalapi.BlockID
	milestones []externalapi.MilestoneIndex
}

func (rl *requestLog) RequestBlock(blockID externalapi.BlockID, _ externalapi.MilestoneIndex) {
	rl.Lock()
	defer rl.Unlock()
	rl.blocks = append(rl.blocks, blockID)
}

func (rl *requestLog) RequestMilestone(index externalapi.MilestoneIndex) {
	rl.Lock()
	defer rl.Unlock()
	rl.milestones = append(rl.milestones, index)
}

type eventLog struct {
	sync.Mutex
	events []externalapi.ConsensusEvent
}

func (el *eventLog) Emit(event externalapi.ConsensusEvent) {
	el.Lock()
	defer el.Unlock()
	el.events = append(el.events, event)
}
