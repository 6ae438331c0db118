package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// ConfirmationBatch is everything a confirmation writes to storage. It is
// committed atomically.
type ConfirmationBatch struct {
	Milestone             *externalapi.Milestone
	CreatedOutputs        []*externalapi.LedgerOutput
	ConsumedOutputs       []*externalapi.ConsumedOutput
	Receipt               *externalapi.Receipt
	SpentTreasuryOutput   *externalapi.TreasuryOutput
	CreatedTreasuryOutput *externalapi.TreasuryOutput
	LedgerStateCommitment []byte
}
