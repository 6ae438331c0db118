package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// EventSink receives consensus events. Emit must never block.
type EventSink interface {
	Emit(event externalapi.ConsensusEvent)
}

// BlockRequestSink is the network side of block requests. Requests are fire
// and forget: a requested block later arrives through block intake.
type BlockRequestSink interface {
	RequestBlock(blockID externalapi.BlockID, index externalapi.MilestoneIndex)
	RequestMilestone(index externalapi.MilestoneIndex)
}
