package externalapi

// ConsensusEvent is an event emitted by the consensus core. Events are
// broadcast best-effort: a slow consumer may miss some of them.
type ConsensusEvent interface {
	isConsensusEvent()
}

// BlockSolidified is emitted once the whole past cone of a block is present.
type BlockSolidified struct {
	BlockID BlockID
}

func (*BlockSolidified) isConsensusEvent() {}

// LatestMilestoneChanged is emitted when a validated milestone with an index
// above the latest known one arrives.
type LatestMilestoneChanged struct {
	Index     MilestoneIndex
	Milestone *Milestone
}

func (*LatestMilestoneChanged) isConsensusEvent() {}

// SolidMilestoneChanged is emitted when the solid milestone index advances.
type SolidMilestoneChanged struct {
	Index     MilestoneIndex
	Milestone *Milestone
}

func (*SolidMilestoneChanged) isConsensusEvent() {}

// MilestoneConfirmed is emitted after a milestone's past cone was applied to
// the ledger.
type MilestoneConfirmed struct {
	Index               MilestoneIndex
	Timestamp           uint32
	Referenced          int
	ExcludedNoTx        int
	ExcludedConflicting int
	Included            int
	CreatedOutputs      int
	ConsumedOutputs     int
}

func (*MilestoneConfirmed) isConsensusEvent() {}

// PrunedIndex is emitted after the tangle was pruned up to Index.
type PrunedIndex struct {
	Index MilestoneIndex
}

func (*PrunedIndex) isConsensusEvent() {}
