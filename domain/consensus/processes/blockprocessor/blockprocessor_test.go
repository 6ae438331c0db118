package blockprocessor_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/datastructures/blockstore"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/processes/blockprocessor"
	"github.com/tanglenet/tangled/domain/consensus/processes/blockrequester"
	"github.com/tanglenet/tangled/domain/consensus/processes/blockvalidator"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
	"github.com/tanglenet/tangled/domain/consensus/utils/testutils"
	"github.com/tanglenet/tangled/domain/dagconfig"
)

func TestProcessBlock(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, params *dagconfig.Params) {
		store := blockstore.New()
		store.AddSolidEntryPoint(dagconfig.GenesisSolidEntryPoint, 0)
		requester := blockrequester.New(&testutils.RequestRecorder{}, time.Minute)
		processor := blockprocessor.New(store,
			blockvalidator.New(params.NetworkID, params.MinBlockParents, params.MaxBlockParents,
				params.MaxInputs, params.MaxOutputs, params.TokenSupply),
			requester)

		block := &externalapi.Block{Parents: []externalapi.BlockID{dagconfig.GenesisSolidEntryPoint}, Nonce: 1}
		blockID, isNew, err := processor.ProcessBlock(block)
		if err != nil {
			t.Fatalf("ProcessBlock: %+v", err)
		}
		expectedID, err := consensushashing.BlockID(block)
		if err != nil {
			t.Fatalf("BlockID: %+v", err)
		}
		if !isNew || blockID != expectedID {
			t.Fatalf("expected a new block with id %s, got %s (new: %t)", expectedID, blockID, isNew)
		}
		metadata, ok := store.Metadata(blockID)
		if !ok || metadata.IsRequested() {
			t.Fatalf("unexpected metadata of an unrequested block: %v", metadata)
		}

		_, isNew, err = processor.ProcessBlock(block)
		if err != nil {
			t.Fatalf("ProcessBlock: %+v", err)
		}
		if isNew {
			t.Fatalf("a known block was reported as new")
		}

		requested := &externalapi.Block{Parents: []externalapi.BlockID{blockID}, Nonce: 2}
		requestedID, err := consensushashing.BlockID(requested)
		if err != nil {
			t.Fatalf("BlockID: %+v", err)
		}
		requester.RequestBlock(requestedID, 1)
		_, _, err = processor.ProcessBlock(requested)
		if err != nil {
			t.Fatalf("ProcessBlock: %+v", err)
		}
		metadata, _ = store.Metadata(requestedID)
		if !metadata.IsRequested() {
			t.Fatalf("a requested block wasn't flagged as requested")
		}
		if requester.PendingCount() != 0 {
			t.Fatalf("the request wasn't resolved when the block arrived")
		}

		invalid := &externalapi.Block{Parents: []externalapi.BlockID{{0x02}, {0x01}}}
		invalidID, _, err := processor.ProcessBlock(invalid)
		if !errors.Is(err, ruleerrors.ErrParentsNotSorted) {
			t.Fatalf("expected ErrParentsNotSorted, got %+v", err)
		}
		if store.Contains(invalidID) {
			t.Fatalf("an invalid block was inserted")
		}
	})
}
