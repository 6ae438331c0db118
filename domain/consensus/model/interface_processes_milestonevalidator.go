package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// MilestoneValidator verifies milestone payloads against the coordinator keys.
type MilestoneValidator interface {
	ValidateMilestone(blockID externalapi.BlockID) (*externalapi.Milestone, error)
}
