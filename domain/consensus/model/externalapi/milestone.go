package externalapi

import (
	"bytes"
	"sort"
)

// MerkleRootSize is the size of a milestone's Merkle roots.
const MerkleRootSize = 32

// MilestonePayload is issued by the coordinator to confirm the past cone of
// its parents.
type MilestonePayload struct {
	Index               MilestoneIndex
	Timestamp           uint32
	PreviousMilestoneID MilestoneID
	Parents             []BlockID
	InclusionMerkleRoot [MerkleRootSize]byte
	AppliedMerkleRoot   [MerkleRootSize]byte
	Metadata            []byte
	Receipt             *Receipt
	Signatures          []*MilestoneSignature
}

// PayloadType implements Payload
func (milestone *MilestonePayload) PayloadType() PayloadType {
	return PayloadTypeMilestone
}

// Clone returns a clone of MilestonePayload
func (milestone *MilestonePayload) Clone() *MilestonePayload {
	signatures := make([]*MilestoneSignature, len(milestone.Signatures))
	for i, signature := range milestone.Signatures {
		signatureClone := *signature
		signatures[i] = &signatureClone
	}
	return &MilestonePayload{
		Index:               milestone.Index,
		Timestamp:           milestone.Timestamp,
		PreviousMilestoneID: milestone.PreviousMilestoneID,
		Parents:             CloneBlockIDs(milestone.Parents),
		InclusionMerkleRoot: milestone.InclusionMerkleRoot,
		AppliedMerkleRoot:   milestone.AppliedMerkleRoot,
		Metadata:            append([]byte(nil), milestone.Metadata...),
		Receipt:             milestone.Receipt.Clone(),
		Signatures:          signatures,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Clone accordingly.
var _ = MilestonePayload{0, 0, MilestoneID{}, []BlockID{}, [MerkleRootSize]byte{},
	[MerkleRootSize]byte{}, []byte{}, nil, []*MilestoneSignature{}}

// MilestoneSignature is one coordinator signature over the milestone essence.
type MilestoneSignature struct {
	PublicKey [PublicKeySize]byte
	Signature [SignatureSize]byte
}

// Receipt lists funds migrated into the ledger by a milestone, paid for by
// the treasury transaction it carries.
type Receipt struct {
	MigratedAt  MilestoneIndex
	Final       bool
	Funds       []*MigratedFunds
	Transaction *TreasuryTransactionPayload
}

// Clone returns a clone of Receipt
func (receipt *Receipt) Clone() *Receipt {
	if receipt == nil {
		return nil
	}
	funds := make([]*MigratedFunds, len(receipt.Funds))
	for i, fund := range receipt.Funds {
		fundClone := *fund
		funds[i] = &fundClone
	}
	var transaction *TreasuryTransactionPayload
	if receipt.Transaction != nil {
		transactionClone := *receipt.Transaction
		transaction = &transactionClone
	}
	return &Receipt{
		MigratedAt:  receipt.MigratedAt,
		Final:       receipt.Final,
		Funds:       funds,
		Transaction: transaction,
	}
}

// MigratedFunds is a single migration entry of a Receipt.
type MigratedFunds struct {
	TailTransactionHash [IDSize]byte
	Address             Address
	Amount              uint64
}

// Milestone is a validated milestone. It is immutable once created.
type Milestone struct {
	Index       MilestoneIndex
	MilestoneID MilestoneID
	BlockID     BlockID
	Timestamp   uint32
	Payload     *MilestonePayload
}

// SortMilestoneSignatures sorts signatures by public key in place.
func SortMilestoneSignatures(signatures []*MilestoneSignature) {
	sort.Slice(signatures, func(i, j int) bool {
		return bytes.Compare(signatures[i].PublicKey[:], signatures[j].PublicKey[:]) < 0
	})
}
