package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// WhiteFlagOrderer linearizes the past cone of a milestone and computes the
// ledger mutations it implies. It does not write anything.
type WhiteFlagOrderer interface {
	Confirm(milestone *externalapi.Milestone) (*WhiteFlagMetadata, error)
}

// LedgerConfirmer applies a milestone to the ledger.
type LedgerConfirmer interface {
	ConfirmMilestone(index externalapi.MilestoneIndex) (*WhiteFlagMetadata, error)
}

// ConeIndexUpdater propagates the index of a freshly confirmed milestone
// into its past and future cones.
type ConeIndexUpdater interface {
	UpdateConeIndexes(milestone *externalapi.Milestone) (indexed []externalapi.BlockID, err error)
}
