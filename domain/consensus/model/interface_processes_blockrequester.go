package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// BlockRequester issues deduplicated requests for missing blocks and milestones.
type BlockRequester interface {
	// RequestBlock returns false if the block is already in flight.
	RequestBlock(blockID externalapi.BlockID, index externalapi.MilestoneIndex) bool
	// RequestMilestone returns false if the milestone is already in flight.
	RequestMilestone(index externalapi.MilestoneIndex) bool
	// OnBlockArrived resolves the request for blockID and returns whether
	// the block had been requested.
	OnBlockArrived(blockID externalapi.BlockID) bool
	OnMilestoneArrived(index externalapi.MilestoneIndex)
	PendingCount() int
}
