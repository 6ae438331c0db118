package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// BlockStore owns the tangle: blocks, their metadata, the parent/child
// adjacency, the solid entry points and the milestone registry.
//
// Blocks are immutable once inserted. UpdateMetadata is the only way to
// mutate metadata and is atomic per block id.
type BlockStore interface {
	// Insert stores a block unless it is already known. It returns true
	// only on the first insert of blockID.
	Insert(blockID externalapi.BlockID, block *externalapi.Block, metadata *BlockMetadata) bool
	Block(blockID externalapi.BlockID) (*externalapi.Block, bool)
	// Metadata returns a copy of the block's metadata.
	Metadata(blockID externalapi.BlockID) (*BlockMetadata, bool)
	Contains(blockID externalapi.BlockID) bool
	// UpdateMetadata runs update on the block's metadata inside the
	// block's critical section. It returns false if the block is unknown.
	UpdateMetadata(blockID externalapi.BlockID, update func(metadata *BlockMetadata)) bool
	Children(blockID externalapi.BlockID) []externalapi.BlockID
	Delete(blockID externalapi.BlockID)
	Count() int
	BlockIDs() []externalapi.BlockID

	IsSolidEntryPoint(blockID externalapi.BlockID) bool
	SolidEntryPointIndex(blockID externalapi.BlockID) (externalapi.MilestoneIndex, bool)
	AddSolidEntryPoint(blockID externalapi.BlockID, index externalapi.MilestoneIndex)
	ReplaceSolidEntryPoints(solidEntryPoints []*SolidEntryPoint)
	SolidEntryPoints() []*SolidEntryPoint
	UpdateEntryPointIndex(index externalapi.MilestoneIndex)
	EntryPointIndex() externalapi.MilestoneIndex

	// AddMilestone registers a validated milestone. It returns true if the
	// milestone wasn't known before.
	AddMilestone(milestone *externalapi.Milestone) bool
	Milestone(index externalapi.MilestoneIndex) (*externalapi.Milestone, bool)
	RemoveMilestone(index externalapi.MilestoneIndex)
	LatestMilestoneIndex() externalapi.MilestoneIndex
	SolidMilestoneIndex() externalapi.MilestoneIndex
	SetSolidMilestoneIndex(index externalapi.MilestoneIndex)
	ConfirmedMilestoneIndex() externalapi.MilestoneIndex
	SetConfirmedMilestoneIndex(index externalapi.MilestoneIndex)
	PruningIndex() externalapi.MilestoneIndex
	SetPruningIndex(index externalapi.MilestoneIndex)
}
