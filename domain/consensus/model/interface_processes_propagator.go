package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// Propagator maintains the solidity frontier of the tangle.
type Propagator interface {
	// Propagate solidifies blockID and its future cone as far as possible
	// and returns the blocks it marked solid.
	Propagate(blockID externalapi.BlockID) []*SolidifiedBlock
}
