package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// PastConeWalker walks the past cone of a set of roots with an explicit
// stack. Solid entry points are terminal and never yielded.
//
//	for walker.Next() {
//		blockID, block := walker.Current()
//		...
//		walker.Resolve(TraversalContinue)
//	}
type PastConeWalker interface {
	Next() bool
	// Current returns the yielded block. block is nil if it isn't in the store.
	Current() (blockID externalapi.BlockID, block *externalapi.Block)
	Resolve(outcome TraversalOutcome)
	IsVisited(blockID externalapi.BlockID) bool
	FirstUnvisitedParent(block *externalapi.Block) (externalapi.BlockID, bool)
	SolidEntryPointsReached() []externalapi.BlockID
}

// DAGTraversalManager exposes methods for traversing blocks
// in the tangle
type DAGTraversalManager interface {
	PastConeWalker(roots []externalapi.BlockID) PastConeWalker
}
