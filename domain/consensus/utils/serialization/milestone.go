package serialization

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// SerializeMilestoneEssence writes the signed part of milestone to w:
// everything but the signatures.
func SerializeMilestoneEssence(w io.Writer, milestone *externalapi.MilestonePayload) error {
	if len(milestone.Parents) > 0xff {
		return errors.Errorf("a milestone can't have more than 255 parents, got %d", len(milestone.Parents))
	}
	err := WriteElements(w, milestone.Index, milestone.Timestamp, milestone.PreviousMilestoneID,
		uint8(len(milestone.Parents)))
	if err != nil {
		return err
	}
	for _, parent := range milestone.Parents {
		err = WriteElement(w, parent)
		if err != nil {
			return err
		}
	}
	err = WriteElements(w, milestone.InclusionMerkleRoot, milestone.AppliedMerkleRoot)
	if err != nil {
		return err
	}
	err = WriteVarBytes(w, milestone.Metadata)
	if err != nil {
		return err
	}
	hasReceipt := milestone.Receipt != nil
	err = WriteElement(w, hasReceipt)
	if err != nil {
		return err
	}
	if hasReceipt {
		return serializeReceipt(w, milestone.Receipt)
	}
	return nil
}

// MilestoneEssenceToBytes returns the serialized essence of milestone.
func MilestoneEssenceToBytes(milestone *externalapi.MilestonePayload) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := SerializeMilestoneEssence(buf, milestone)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeMilestonePayload writes the essence of milestone followed by its
// signatures.
func SerializeMilestonePayload(w io.Writer, milestone *externalapi.MilestonePayload) error {
	err := SerializeMilestoneEssence(w, milestone)
	if err != nil {
		return err
	}
	if len(milestone.Signatures) > 0xff {
		return errors.Errorf("a milestone can't have more than 255 signatures, got %d", len(milestone.Signatures))
	}
	err = WriteElement(w, uint8(len(milestone.Signatures)))
	if err != nil {
		return err
	}
	for _, signature := range milestone.Signatures {
		err = WriteElements(w, signature.PublicKey, signature.Signature)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeserializeMilestonePayload reads a milestone written by SerializeMilestonePayload.
func DeserializeMilestonePayload(r io.Reader) (*externalapi.MilestonePayload, error) {
	milestone := &externalapi.MilestonePayload{}
	var parentCount uint8
	err := ReadElements(r, &milestone.Index, &milestone.Timestamp, &milestone.PreviousMilestoneID, &parentCount)
	if err != nil {
		return nil, err
	}
	milestone.Parents = make([]externalapi.BlockID, parentCount)
	for i := range milestone.Parents {
		err = ReadElement(r, &milestone.Parents[i])
		if err != nil {
			return nil, err
		}
	}
	err = ReadElements(r, &milestone.InclusionMerkleRoot, &milestone.AppliedMerkleRoot)
	if err != nil {
		return nil, err
	}
	milestone.Metadata, err = ReadVarBytes(r)
	if err != nil {
		return nil, err
	}
	var hasReceipt bool
	err = ReadElement(r, &hasReceipt)
	if err != nil {
		return nil, err
	}
	if hasReceipt {
		milestone.Receipt, err = deserializeReceipt(r)
		if err != nil {
			return nil, err
		}
	}

	var signatureCount uint8
	err = ReadElement(r, &signatureCount)
	if err != nil {
		return nil, err
	}
	milestone.Signatures = make([]*externalapi.MilestoneSignature, signatureCount)
	for i := range milestone.Signatures {
		signature := &externalapi.MilestoneSignature{}
		err = ReadElements(r, &signature.PublicKey, &signature.Signature)
		if err != nil {
			return nil, err
		}
		milestone.Signatures[i] = signature
	}
	return milestone, nil
}

func serializeReceipt(w io.Writer, receipt *externalapi.Receipt) error {
	if len(receipt.Funds) > 0xffff {
		return errors.Errorf("receipt has too many migrated funds")
	}
	if receipt.Transaction == nil {
		return errors.Errorf("receipt is missing its treasury transaction")
	}
	err := WriteElements(w, receipt.MigratedAt, receipt.Final, uint16(len(receipt.Funds)))
	if err != nil {
		return err
	}
	for _, fund := range receipt.Funds {
		err = WriteElements(w, fund.TailTransactionHash, fund.Address, fund.Amount)
		if err != nil {
			return err
		}
	}
	return serializeTreasuryTransaction(w, receipt.Transaction)
}

func deserializeReceipt(r io.Reader) (*externalapi.Receipt, error) {
	receipt := &externalapi.Receipt{}
	var fundCount uint16
	err := ReadElements(r, &receipt.MigratedAt, &receipt.Final, &fundCount)
	if err != nil {
		return nil, err
	}
	receipt.Funds = make([]*externalapi.MigratedFunds, fundCount)
	for i := range receipt.Funds {
		fund := &externalapi.MigratedFunds{}
		err = ReadElements(r, &fund.TailTransactionHash, &fund.Address, &fund.Amount)
		if err != nil {
			return nil, err
		}
		receipt.Funds[i] = fund
	}
	receipt.Transaction, err = deserializeTreasuryTransaction(r)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// ReceiptToBytes serializes a receipt the way it's persisted.
func ReceiptToBytes(receipt *externalapi.Receipt) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := serializeReceipt(buf, receipt)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToReceipt deserializes a receipt serialized by ReceiptToBytes.
func BytesToReceipt(receiptBytes []byte) (*externalapi.Receipt, error) {
	reader := bytes.NewReader(receiptBytes)
	receipt, err := deserializeReceipt(reader)
	if err != nil {
		return nil, err
	}
	return receipt, checkNoTrailingBytes(reader, "receipt")
}
