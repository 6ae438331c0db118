package consensushashing

import (
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/hashes"
	"github.com/tanglenet/tangled/domain/consensus/utils/serialization"
)

// BlockID returns the id of the given block: the blake2b-256 digest of its
// canonical serialization.
func BlockID(block *externalapi.Block) (externalapi.BlockID, error) {
	writer := hashes.NewHashWriter()
	err := serialization.SerializeBlock(writer, block)
	if err != nil {
		return externalapi.BlockID{}, err
	}
	return writer.Finalize(), nil
}

// TransactionID returns the id of the given transaction. Unlocks are part
// of the digest.
func TransactionID(transaction *externalapi.TransactionPayload) (externalapi.TransactionID, error) {
	writer := hashes.NewHashWriter()
	err := serialization.SerializeTransaction(writer, transaction)
	if err != nil {
		return externalapi.TransactionID{}, err
	}
	return writer.Finalize(), nil
}

// TransactionEssenceHash returns the digest signed by a transaction's
// signature unlocks.
func TransactionEssenceHash(transaction *externalapi.TransactionPayload) ([hashes.HashSize]byte, error) {
	writer := hashes.NewHashWriter()
	err := serialization.SerializeTransactionEssence(writer, transaction)
	if err != nil {
		return [hashes.HashSize]byte{}, err
	}
	return writer.Finalize(), nil
}

// MilestoneEssenceHash returns the digest signed by the coordinator.
func MilestoneEssenceHash(milestone *externalapi.MilestonePayload) ([hashes.HashSize]byte, error) {
	writer := hashes.NewHashWriter()
	err := serialization.SerializeMilestoneEssence(writer, milestone)
	if err != nil {
		return [hashes.HashSize]byte{}, err
	}
	return writer.Finalize(), nil
}

// MilestoneID returns the id of the given milestone, which is its essence
// hash.
func MilestoneID(milestone *externalapi.MilestonePayload) (externalapi.MilestoneID, error) {
	essenceHash, err := MilestoneEssenceHash(milestone)
	if err != nil {
		return externalapi.MilestoneID{}, err
	}
	return essenceHash, nil
}

// AddressFromPublicKey returns the address controlled by publicKey.
func AddressFromPublicKey(publicKey [externalapi.PublicKeySize]byte) externalapi.Address {
	return hashes.Blake2b256(publicKey[:])
}

// ReceiptOutputID returns the id of the i-th output migrated by the receipt
// of the milestone with the given id.
func ReceiptOutputID(milestoneID externalapi.MilestoneID, index uint16) externalapi.OutputID {
	return externalapi.OutputID{TransactionID: externalapi.TransactionID(milestoneID), Index: index}
}
