package consensus

import (
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// channelEventSink forwards events to a channel without ever blocking. An
// event is dropped when the channel is full or nil.
type channelEventSink struct {
	consensusEventsChan chan<- externalapi.ConsensusEvent
}

func newChannelEventSink(consensusEventsChan chan<- externalapi.ConsensusEvent) model.EventSink {
	return &channelEventSink{consensusEventsChan: consensusEventsChan}
}

func (sink *channelEventSink) Emit(event externalapi.ConsensusEvent) {
	if sink.consensusEventsChan == nil {
		return
	}
	select {
	case sink.consensusEventsChan <- event:
	default:
		log.Tracef("Dropped a %T event: the consensus events channel is full", event)
	}
}
