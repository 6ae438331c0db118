package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// MilestoneSolidifier requests, solidifies and confirms milestones in strict
// index order.
type MilestoneSolidifier interface {
	Solidify(candidateIndex externalapi.MilestoneIndex) error
}
