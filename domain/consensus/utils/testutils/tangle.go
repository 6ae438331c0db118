package testutils

import (
	"testing"
	"time"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
)

// TangleBuilder creates blocks with unique ids and inserts them into a
// BlockStore.
type TangleBuilder struct {
	t          *testing.T
	blockStore model.BlockStore
	nonce      uint64
}

// NewTangleBuilder returns a TangleBuilder over blockStore.
func NewTangleBuilder(t *testing.T, blockStore model.BlockStore) *TangleBuilder {
	return &TangleBuilder{t: t, blockStore: blockStore}
}

// NewBlock builds a block over the given parents without inserting it.
// Parents are sorted and every call uses a new nonce, so two blocks are
// never equal.
func (tb *TangleBuilder) NewBlock(parents []externalapi.BlockID,
	payload externalapi.Payload) (externalapi.BlockID, *externalapi.Block) {

	tb.nonce++
	block := &externalapi.Block{
		Parents: externalapi.CloneBlockIDs(parents),
		Payload: payload,
		Nonce:   tb.nonce,
	}
	externalapi.SortBlockIDs(block.Parents)
	blockID, err := consensushashing.BlockID(block)
	if err != nil {
		tb.t.Fatalf("BlockID: %+v", err)
	}
	return blockID, block
}

// AddBlock builds a block and inserts it with fresh metadata.
func (tb *TangleBuilder) AddBlock(parents []externalapi.BlockID, payload externalapi.Payload) externalapi.BlockID {
	blockID, block := tb.NewBlock(parents, payload)
	tb.blockStore.Insert(blockID, block, model.NewBlockMetadata(time.Now()))
	return blockID
}

// AddChain adds length blocks on top of each other, the first one over
// parent, and returns their ids in order.
func (tb *TangleBuilder) AddChain(parent externalapi.BlockID, length int) []externalapi.BlockID {
	chain := make([]externalapi.BlockID, length)
	for i := range chain {
		parent = tb.AddBlock([]externalapi.BlockID{parent}, nil)
		chain[i] = parent
	}
	return chain
}
