package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// SolidifiedBlock is the tip-pool candidacy signal produced by the
// Propagator for every block it marks solid. MilestoneIndex is zero unless
// the block carries a validated milestone.
type SolidifiedBlock struct {
	BlockID        externalapi.BlockID
	Parents        []externalapi.BlockID
	MilestoneIndex externalapi.MilestoneIndex
}
