package externalapi

// LedgerOutput is an output created by a confirmed transaction.
type LedgerOutput struct {
	OutputID                 OutputID
	BlockID                  BlockID
	MilestoneIndexBooked     MilestoneIndex
	MilestoneTimestampBooked uint32
	Output                   *Output
}

// ConsumedOutput records the spending of a LedgerOutput.
type ConsumedOutput struct {
	Output                  *LedgerOutput
	SpentTransactionID      TransactionID
	MilestoneIndexSpent     MilestoneIndex
	MilestoneTimestampSpent uint32
}

// OutputID returns the id of the consumed output.
func (consumed *ConsumedOutput) OutputID() OutputID {
	return consumed.Output.OutputID
}

// TreasuryOutput holds the funds not yet migrated into the ledger.
type TreasuryOutput struct {
	MilestoneID MilestoneID
	Amount      uint64
	Spent       bool
}
