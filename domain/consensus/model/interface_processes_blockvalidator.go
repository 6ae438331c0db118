package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// BlockValidator exposes a set of validation classes, after which
// it's possible to determine whether a block is valid
type BlockValidator interface {
	ValidateBlockInIsolation(block *externalapi.Block) error
}
