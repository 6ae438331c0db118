package model

import (
	"fmt"
	"time"

	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// BlockFlags is the set of boolean properties tracked per block.
type BlockFlags uint16

// Block flags
const (
	FlagRequested BlockFlags = 1 << iota
	FlagSolid
	FlagMilestone
	FlagReferenced
	FlagIncluded
	FlagConflictingTransaction
	FlagNoTransaction
)

var flagNames = []struct {
	flag BlockFlags
	name string
}{
	{FlagRequested, "requested"},
	{FlagSolid, "solid"},
	{FlagMilestone, "milestone"},
	{FlagReferenced, "referenced"},
	{FlagIncluded, "included"},
	{FlagConflictingTransaction, "conflicting"},
	{FlagNoTransaction, "no-transaction"},
}

// Has returns whether all the given flags are set.
func (flags BlockFlags) Has(other BlockFlags) bool {
	return flags&other == other
}

func (flags BlockFlags) String() string {
	result := ""
	for _, flagName := range flagNames {
		if !flags.Has(flagName.flag) {
			continue
		}
		if result != "" {
			result += "|"
		}
		result += flagName.name
	}
	if result == "" {
		return "none"
	}
	return result
}

// IndexBound is an inherited milestone index together with the block the
// index originates from.
type IndexBound struct {
	Index   externalapi.MilestoneIndex
	BlockID externalapi.BlockID
}

func (bound IndexBound) String() string {
	return fmt.Sprintf("%d@%s", bound.Index, bound.BlockID)
}

// BlockMetadata is the mutable state the node keeps about a block.
// OMRSI and YMRSI are nil until the block is solid.
type BlockMetadata struct {
	ArrivalTime    time.Time
	Flags          BlockFlags
	MilestoneIndex externalapi.MilestoneIndex
	OMRSI          *IndexBound
	YMRSI          *IndexBound
	ConflictReason ConflictReason
}

// NewBlockMetadata returns the metadata of a block that arrived now.
func NewBlockMetadata(arrivalTime time.Time) *BlockMetadata {
	return &BlockMetadata{ArrivalTime: arrivalTime}
}

// Clone returns a clone of BlockMetadata
func (metadata *BlockMetadata) Clone() *BlockMetadata {
	clone := *metadata
	if metadata.OMRSI != nil {
		omrsi := *metadata.OMRSI
		clone.OMRSI = &omrsi
	}
	if metadata.YMRSI != nil {
		ymrsi := *metadata.YMRSI
		clone.YMRSI = &ymrsi
	}
	return &clone
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Clone accordingly.
var _ = BlockMetadata{time.Time{}, 0, 0, nil, nil, 0}

// SetFlags sets the given flags.
func (metadata *BlockMetadata) SetFlags(flags BlockFlags) {
	metadata.Flags |= flags
}

// IsSolid returns whether the whole past cone of the block is present.
func (metadata *BlockMetadata) IsSolid() bool {
	return metadata.Flags.Has(FlagSolid)
}

// IsMilestone returns whether the block carries a validated milestone.
func (metadata *BlockMetadata) IsMilestone() bool {
	return metadata.Flags.Has(FlagMilestone)
}

// IsReferenced returns whether a milestone confirmed the block.
func (metadata *BlockMetadata) IsReferenced() bool {
	return metadata.Flags.Has(FlagReferenced)
}

// IsRequested returns whether the block was explicitly requested.
func (metadata *BlockMetadata) IsRequested() bool {
	return metadata.Flags.Has(FlagRequested)
}

// SetSolid marks the block solid with the given inherited bounds.
func (metadata *BlockMetadata) SetSolid(omrsi, ymrsi IndexBound) {
	metadata.Flags |= FlagSolid
	metadata.OMRSI = &omrsi
	metadata.YMRSI = &ymrsi
}

// SetBounds replaces the inherited bounds of a solid block.
func (metadata *BlockMetadata) SetBounds(omrsi, ymrsi IndexBound) {
	metadata.OMRSI = &omrsi
	metadata.YMRSI = &ymrsi
}

func (metadata *BlockMetadata) String() string {
	return fmt.Sprintf("flags: %s, milestone index: %d, omrsi: %v, ymrsi: %v, conflict: %s",
		metadata.Flags, metadata.MilestoneIndex, metadata.OMRSI, metadata.YMRSI, metadata.ConflictReason)
}
