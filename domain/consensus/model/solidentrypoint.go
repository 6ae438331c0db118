package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// SolidEntryPoint is a pruned block kept as a traversal terminator. Index is
// the milestone index up to which it must be retained.
type SolidEntryPoint struct {
	BlockID externalapi.BlockID
	Index   externalapi.MilestoneIndex
}
