package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// StorageBackend is the persistent ledger the consensus core reads from and
// commits confirmations to.
type StorageBackend interface {
	// FetchOutput returns the output with the given id, spent or not.
	FetchOutput(outputID externalapi.OutputID) (*externalapi.LedgerOutput, bool, error)
	IsOutputUnspent(outputID externalapi.OutputID) (bool, error)
	UnspentTreasuryOutput() (*externalapi.TreasuryOutput, error)
	LedgerIndex() (externalapi.MilestoneIndex, error)
	LedgerStateCommitment() ([]byte, error)

	// CommitConfirmation writes the batch atomically. Either all of it is
	// applied or an error is returned and nothing is.
	CommitConfirmation(batch *ConfirmationBatch) error

	// StoreSolidEntryPoints truncates the solid entry point table and
	// inserts the given entry points in its place.
	StoreSolidEntryPoints(solidEntryPoints []*SolidEntryPoint) error
	SolidEntryPoints() ([]*SolidEntryPoint, error)
	Milestones() ([]*externalapi.Milestone, error)
	// PruneMilestone deletes the milestone record and every output spent
	// by that milestone.
	PruneMilestone(index externalapi.MilestoneIndex) error

	IsInitialized() (bool, error)
	// InitializeLedger seeds an empty storage with the snapshot state.
	InitializeLedger(snapshot *LedgerSnapshot) error
}

// LedgerSnapshot is the state a node starts from.
type LedgerSnapshot struct {
	LedgerIndex      externalapi.MilestoneIndex
	Outputs          []*externalapi.LedgerOutput
	TreasuryOutput   *externalapi.TreasuryOutput
	SolidEntryPoints []*SolidEntryPoint
	Commitment       []byte
}
