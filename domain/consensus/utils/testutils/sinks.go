package testutils

import (
	"sync"

	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// EventRecorder is an EventSink that keeps every event it receives.
type EventRecorder struct {
	mtx    sync.Mutex
	events []externalapi.ConsensusEvent
}

// Emit implements model.EventSink
func (er *EventRecorder) Emit(event externalapi.ConsensusEvent) {
	er.mtx.Lock()
	defer er.mtx.Unlock()
	er.events = append(er.events, event)
}

// Events returns the recorded events in emission order.
func (er *EventRecorder) Events() []externalapi.ConsensusEvent {
	er.mtx.Lock()
	defer er.mtx.Unlock()
	return append([]externalapi.ConsensusEvent(nil), er.events...)
}

// MilestonesConfirmed returns the recorded MilestoneConfirmed events.
func (er *EventRecorder) MilestonesConfirmed() []*externalapi.MilestoneConfirmed {
	var confirmed []*externalapi.MilestoneConfirmed
	for _, event := range er.Events() {
		if event, ok := event.(*externalapi.MilestoneConfirmed); ok {
			confirmed = append(confirmed, event)
		}
	}
	return confirmed
}

// RequestRecorder is a BlockRequestSink that keeps every request it receives.
type RequestRecorder struct {
	mtx                 sync.Mutex
	requestedBlocks     []externalapi.BlockID
	requestedMilestones []externalapi.MilestoneIndex
}

// RequestBlock implements model.BlockRequestSink
func (rr *RequestRecorder) RequestBlock(blockID externalapi.BlockID, _ externalapi.MilestoneIndex) {
	rr.mtx.Lock()
	defer rr.mtx.Unlock()
	rr.requestedBlocks = append(rr.requestedBlocks, blockID)
}

// RequestMilestone implements model.BlockRequestSink
func (rr *RequestRecorder) RequestMilestone(index externalapi.MilestoneIndex) {
	rr.mtx.Lock()
	defer rr.mtx.Unlock()
	rr.requestedMilestones = append(rr.requestedMilestones, index)
}

// RequestedBlocks returns the requested block ids in request order.
func (rr *RequestRecorder) RequestedBlocks() []externalapi.BlockID {
	rr.mtx.Lock()
	defer rr.mtx.Unlock()
	return externalapi.CloneBlockIDs(rr.requestedBlocks)
}

// RequestedMilestones returns the requested milestone indexes in request order.
func (rr *RequestRecorder) RequestedMilestones() []externalapi.MilestoneIndex {
	rr.mtx.Lock()
	defer rr.mtx.Unlock()
	return append([]externalapi.MilestoneIndex(nil), rr.requestedMilestones...)
}
