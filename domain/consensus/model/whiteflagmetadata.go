package model

import (
	"bytes"
	"sort"

	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// ConflictingBlock is a transaction-bearing block excluded by a milestone.
type ConflictingBlock struct {
	BlockID        externalapi.BlockID
	ConflictReason ConflictReason
}

// WhiteFlagMetadata is the scratch state of a single confirmation. It is
// created and discarded within one call to WhiteFlag.Confirm.
type WhiteFlagMetadata struct {
	MilestoneIndex      externalapi.MilestoneIndex
	MilestoneTimestamp  uint32
	MilestoneBlockID    externalapi.BlockID
	PreviousMilestoneID externalapi.MilestoneID

	ReferencedBlocks            []externalapi.BlockID
	IncludedBlocks              []externalapi.BlockID
	ExcludedConflictingBlocks   []*ConflictingBlock
	ExcludedNoTransactionBlocks []externalapi.BlockID

	CreatedOutputs  map[externalapi.OutputID]*externalapi.LedgerOutput
	ConsumedOutputs map[externalapi.OutputID]*externalapi.ConsumedOutput

	ReceiptMigratedOutputs []*externalapi.LedgerOutput
	SpentTreasuryOutput    *externalapi.TreasuryOutput
	CreatedTreasuryOutput  *externalapi.TreasuryOutput

	InclusionMerkleRoot [externalapi.MerkleRootSize]byte
	AppliedMerkleRoot   [externalapi.MerkleRootSize]byte

	PreviousMilestoneFound bool
}

// NewWhiteFlagMetadata returns empty white-flag metadata for the given milestone.
func NewWhiteFlagMetadata(milestone *externalapi.Milestone) *WhiteFlagMetadata {
	return &WhiteFlagMetadata{
		MilestoneIndex:      milestone.Index,
		MilestoneTimestamp:  milestone.Timestamp,
		MilestoneBlockID:    milestone.BlockID,
		PreviousMilestoneID: milestone.Payload.PreviousMilestoneID,
		CreatedOutputs:      make(map[externalapi.OutputID]*externalapi.LedgerOutput),
		ConsumedOutputs:     make(map[externalapi.OutputID]*externalapi.ConsumedOutput),
	}
}

// ExcludedConflictingBlockIDs returns the ids of the conflicting blocks in
// the order they were applied.
func (wf *WhiteFlagMetadata) ExcludedConflictingBlockIDs() []externalapi.BlockID {
	ids := make([]externalapi.BlockID, len(wf.ExcludedConflictingBlocks))
	for i, conflicting := range wf.ExcludedConflictingBlocks {
		ids[i] = conflicting.BlockID
	}
	return ids
}

// IsPartitioned returns whether every referenced block landed in exactly one
// of the included/conflicting/no-transaction lists.
func (wf *WhiteFlagMetadata) IsPartitioned() bool {
	return len(wf.ReferencedBlocks) ==
		len(wf.IncludedBlocks)+len(wf.ExcludedConflictingBlocks)+len(wf.ExcludedNoTransactionBlocks)
}

// SortedCreatedOutputs returns the created outputs ordered by output id.
func (wf *WhiteFlagMetadata) SortedCreatedOutputs() []*externalapi.LedgerOutput {
	outputs := make([]*externalapi.LedgerOutput, 0, len(wf.CreatedOutputs))
	for _, output := range wf.CreatedOutputs {
		outputs = append(outputs, output)
	}
	sort.Slice(outputs, func(i, j int) bool {
		return bytes.Compare(outputs[i].OutputID.Bytes(), outputs[j].OutputID.Bytes()) < 0
	})
	return outputs
}

// SortedConsumedOutputs returns the consumed outputs ordered by output id.
func (wf *WhiteFlagMetadata) SortedConsumedOutputs() []*externalapi.ConsumedOutput {
	outputs := make([]*externalapi.ConsumedOutput, 0, len(wf.ConsumedOutputs))
	for _, output := range wf.ConsumedOutputs {
		outputs = append(outputs, output)
	}
	sort.Slice(outputs, func(i, j int) bool {
		return bytes.Compare(outputs[i].OutputID().Bytes(), outputs[j].OutputID().Bytes()) < 0
	})
	return outputs
}
