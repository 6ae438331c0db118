package serialization

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

func testBlocks() []*externalapi.Block {
	return []*externalapi.Block{
		{
			Parents: []externalapi.BlockID{{1}},
			Nonce:   7,
		},
		{
			Parents: []externalapi.BlockID{{1}, {2}},
			Payload: &externalapi.TaggedDataPayload{Tag: []byte("tag"), Data: []byte("data")},
		},
		{
			Parents: []externalapi.BlockID{{3}},
			Payload: &externalapi.TransactionPayload{
				NetworkID: 42,
				Inputs:    []*externalapi.UTXOInput{{OutputID: externalapi.OutputID{TransactionID: externalapi.TransactionID{9}, Index: 3}}},
				Outputs: []*externalapi.Output{
					{Address: externalapi.Address{5}, Amount: 100, TimelockMilestoneIndex: 12},
				},
				TaggedData: &externalapi.TaggedDataPayload{Tag: []byte{}, Data: []byte{1, 2, 3}},
				Unlocks: []externalapi.Unlock{
					&externalapi.SignatureUnlock{PublicKey: [32]byte{1}, Signature: [64]byte{2}},
					&externalapi.ReferenceUnlock{Reference: 0},
				},
			},
		},
		{
			Parents: []externalapi.BlockID{{4}, {5}},
			Payload: &externalapi.MilestonePayload{
				Index:               3,
				Timestamp:           1000,
				PreviousMilestoneID: externalapi.MilestoneID{6},
				Parents:             []externalapi.BlockID{{4}, {5}},
				InclusionMerkleRoot: [32]byte{7},
				AppliedMerkleRoot:   [32]byte{8},
				Metadata:            []byte("metadata"),
				Receipt: &externalapi.Receipt{
					MigratedAt: 2,
					Final:      true,
					Funds: []*externalapi.MigratedFunds{
						{TailTransactionHash: [32]byte{1}, Address: externalapi.Address{2}, Amount: 10},
					},
					Transaction: &externalapi.TreasuryTransactionPayload{
						InputMilestoneID: externalapi.MilestoneID{1},
						OutputAmount:     90,
					},
				},
				Signatures: []*externalapi.MilestoneSignature{{PublicKey: [32]byte{1}, Signature: [64]byte{1}}},
			},
		},
	}
}

func TestBlockSerialization(t *testing.T) {
	for i, block := range testBlocks() {
		blockBytes, err := BlockToBytes(block)
		if err != nil {
			t.Fatalf("BlockToBytes #%d: %+v", i, err)
		}
		deserialized, err := BytesToBlock(blockBytes)
		if err != nil {
			t.Fatalf("BytesToBlock #%d: %+v", i, err)
		}
		if !reflect.DeepEqual(block, deserialized) {
			t.Fatalf("block #%d changed after a round trip. Want: %s, got: %s",
				i, spew.Sdump(block), spew.Sdump(deserialized))
		}
	}
}

func TestBytesToBlockMalformed(t *testing.T) {
	blockBytes, err := BlockToBytes(testBlocks()[2])
	if err != nil {
		t.Fatalf("BlockToBytes: %+v", err)
	}

	_, err = BytesToBlock(blockBytes[:len(blockBytes)-1])
	if !IsMalformedError(err) {
		t.Fatalf("expected a malformed error for a truncated block, got: %+v", err)
	}

	_, err = BytesToBlock(append(blockBytes, 0))
	if !IsMalformedError(err) {
		t.Fatalf("expected a malformed error for trailing bytes, got: %+v", err)
	}
}

func TestEssenceExcludesSignatures(t *testing.T) {
	milestone := testBlocks()[3].Payload.(*externalapi.MilestonePayload)
	essence, err := MilestoneEssenceToBytes(milestone)
	if err != nil {
		t.Fatalf("MilestoneEssenceToBytes: %+v", err)
	}

	milestone.Signatures = nil
	essenceWithoutSignatures, err := MilestoneEssenceToBytes(milestone)
	if err != nil {
		t.Fatalf("MilestoneEssenceToBytes: %+v", err)
	}
	if !reflect.DeepEqual(essence, essenceWithoutSignatures) {
		t.Fatalf("the milestone essence must not depend on its signatures")
	}

	transaction := testBlocks()[2].Payload.(*externalapi.TransactionPayload)
	transactionEssence, err := TransactionEssenceToBytes(transaction)
	if err != nil {
		t.Fatalf("TransactionEssenceToBytes: %+v", err)
	}
	transaction.Unlocks = nil
	transactionEssenceWithoutUnlocks, err := TransactionEssenceToBytes(transaction)
	if err != nil {
		t.Fatalf("TransactionEssenceToBytes: %+v", err)
	}
	if !reflect.DeepEqual(transactionEssence, transactionEssenceWithoutUnlocks) {
		t.Fatalf("the transaction essence must not depend on its unlocks")
	}
}

func TestMilestoneIndexBytesOrder(t *testing.T) {
	low := MilestoneIndexToBytes(255)
	high := MilestoneIndexToBytes(256)
	if string(low) >= string(high) {
		t.Fatalf("index bytes must sort like the indexes themselves")
	}
	index, err := BytesToMilestoneIndex(high)
	if err != nil {
		t.Fatalf("BytesToMilestoneIndex: %+v", err)
	}
	if index != 256 {
		t.Fatalf("expected 256, got %d", index)
	}
}
