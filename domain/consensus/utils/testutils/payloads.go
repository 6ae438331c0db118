package testutils

import (
	"testing"

	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
	"github.com/tanglenet/tangled/domain/consensus/utils/schnorr"
)

// Spend is an input of a transfer together with the key that unlocks it.
type Spend struct {
	OutputID externalapi.OutputID
	KeyPair  *schnorr.KeyPair
}

// AddressOf returns the address controlled by keyPair.
func AddressOf(keyPair *schnorr.KeyPair) externalapi.Address {
	return consensushashing.AddressFromPublicKey(keyPair.PublicKey())
}

// NewTransfer builds a transaction consuming spends and creating outputs. The
// first input of every key gets a signature unlock and the rest reference it.
func NewTransfer(t *testing.T, networkID uint64, spends []*Spend,
	outputs []*externalapi.Output) *externalapi.TransactionPayload {

	transaction := &externalapi.TransactionPayload{
		NetworkID: networkID,
		Inputs:    make([]*externalapi.UTXOInput, len(spends)),
		Outputs:   outputs,
	}
	for i, spend := range spends {
		transaction.Inputs[i] = &externalapi.UTXOInput{OutputID: spend.OutputID}
	}
	essenceHash, err := consensushashing.TransactionEssenceHash(transaction)
	if err != nil {
		t.Fatalf("TransactionEssenceHash: %+v", err)
	}

	signedAt := make(map[[externalapi.PublicKeySize]byte]uint16)
	transaction.Unlocks = make([]externalapi.Unlock, len(spends))
	for i, spend := range spends {
		publicKey := spend.KeyPair.PublicKey()
		if reference, ok := signedAt[publicKey]; ok {
			transaction.Unlocks[i] = &externalapi.ReferenceUnlock{Reference: reference}
			continue
		}
		signature, err := spend.KeyPair.Sign(essenceHash)
		if err != nil {
			t.Fatalf("Sign: %+v", err)
		}
		transaction.Unlocks[i] = &externalapi.SignatureUnlock{PublicKey: publicKey, Signature: signature}
		signedAt[publicKey] = uint16(i)
	}
	return transaction
}

// OutputIDOf returns the id of the output at index of transaction.
func OutputIDOf(t *testing.T, transaction *externalapi.TransactionPayload, index uint16) externalapi.OutputID {
	transactionID, err := consensushashing.TransactionID(transaction)
	if err != nil {
		t.Fatalf("TransactionID: %+v", err)
	}
	return externalapi.OutputID{TransactionID: transactionID, Index: index}
}

// SignMilestone replaces the signatures of milestone with the signatures of
// keyPairs, ordered by public key.
func SignMilestone(t *testing.T, milestone *externalapi.MilestonePayload, keyPairs []*schnorr.KeyPair) {
	essenceHash, err := consensushashing.MilestoneEssenceHash(milestone)
	if err != nil {
		t.Fatalf("MilestoneEssenceHash: %+v", err)
	}
	milestone.Signatures = make([]*externalapi.MilestoneSignature, 0, len(keyPairs))
	for _, keyPair := range keyPairs {
		signature, err := keyPair.Sign(essenceHash)
		if err != nil {
			t.Fatalf("Sign: %+v", err)
		}
		milestone.Signatures = append(milestone.Signatures, &externalapi.MilestoneSignature{
			PublicKey: keyPair.PublicKey(),
			Signature: signature,
		})
	}
	externalapi.SortMilestoneSignatures(milestone.Signatures)
}
