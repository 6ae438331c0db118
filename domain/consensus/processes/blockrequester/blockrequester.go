package blockrequester

import (
	"sync"
	"time"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// blockRequester holds the ids of all the requested blocks and milestones
// to prevent redundant requests. A request that stays unanswered for longer
// than requestTimeout may be issued again.
type blockRequester struct {
	sync.Mutex
	requestSink    model.BlockRequestSink
	requestTimeout time.Duration

	blocks     map[externalapi.BlockID]time.Time
	milestones map[externalapi.MilestoneIndex]time.Time

	now func() time.Time
}

// New instantiates a new BlockRequester
func New(requestSink model.BlockRequestSink, requestTimeout time.Duration) model.BlockRequester {
	return &blockRequester{
		requestSink:    requestSink,
		requestTimeout: requestTimeout,
		blocks:         make(map[externalapi.BlockID]time.Time),
		milestones:     make(map[externalapi.MilestoneIndex]time.Time),
		now:            time.Now,
	}
}

func (br *blockRequester) RequestBlock(blockID externalapi.BlockID, index externalapi.MilestoneIndex) bool {
	if !br.addIfNotInFlight(br.blocks, blockID) {
		return false
	}
	log.Tracef("Requesting block %s for milestone %d", blockID, index)
	br.requestSink.RequestBlock(blockID, index)
	return true
}

func (br *blockRequester) RequestMilestone(index externalapi.MilestoneIndex) bool {
	br.Lock()
	requestedAt, exists := br.milestones[index]
	if exists && br.now().Sub(requestedAt) < br.requestTimeout {
		br.Unlock()
		return false
	}
	br.milestones[index] = br.now()
	br.Unlock()

	log.Tracef("Requesting milestone %d", index)
	br.requestSink.RequestMilestone(index)
	return true
}

func (br *blockRequester) addIfNotInFlight(inFlight map[externalapi.BlockID]time.Time, blockID externalapi.BlockID) bool {
	br.Lock()
	defer br.Unlock()
	requestedAt, exists := inFlight[blockID]
	if exists && br.now().Sub(requestedAt) < br.requestTimeout {
		return false
	}
	inFlight[blockID] = br.now()
	return true
}

func (br *blockRequester) OnBlockArrived(blockID externalapi.BlockID) bool {
	br.Lock()
	defer br.Unlock()
	_, wasRequested := br.blocks[blockID]
	delete(br.blocks, blockID)
	return wasRequested
}

func (br *blockRequester) OnMilestoneArrived(index externalapi.MilestoneIndex) {
	br.Lock()
	defer br.Unlock()
	delete(br.milestones, index)
}

func (br *blockRequester) PendingCount() int {
	br.Lock()
	defer br.Unlock()
	return len(br.blocks) + len(br.milestones)
}
