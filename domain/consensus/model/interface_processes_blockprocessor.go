package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// BlockProcessor is responsible for validating and inserting incoming blocks
type BlockProcessor interface {
	ProcessBlock(block *externalapi.Block) (blockID externalapi.BlockID, isNew bool, err error)
}
