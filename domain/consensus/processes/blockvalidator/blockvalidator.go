package blockvalidator

import (
	"github.com/tanglenet/tangled/domain/consensus/model"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether either a block is valid
type blockValidator struct {
	networkID       uint64
	minBlockParents int
	maxBlockParents int
	maxInputs       int
	maxOutputs      int
	tokenSupply     uint64
}

// New instantiates a new BlockValidator
func New(networkID uint64,
	minBlockParents int,
	maxBlockParents int,
	maxInputs int,
	maxOutputs int,
	tokenSupply uint64) model.BlockValidator {

	return &blockValidator{
		networkID:       networkID,
		minBlockParents: minBlockParents,
		maxBlockParents: maxBlockParents,
		maxInputs:       maxInputs,
		maxOutputs:      maxOutputs,
		tokenSupply:     tokenSupply,
	}
}
