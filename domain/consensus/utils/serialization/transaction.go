package serialization

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// SerializeTransactionEssence writes the signed part of transaction to w:
// everything but the unlocks.
func SerializeTransactionEssence(w io.Writer, transaction *externalapi.TransactionPayload) error {
	if len(transaction.Inputs) > 0xffff || len(transaction.Outputs) > 0xffff {
		return errors.Errorf("transaction has too many inputs or outputs")
	}
	err := WriteElements(w, transaction.NetworkID, uint16(len(transaction.Inputs)))
	if err != nil {
		return err
	}
	for _, input := range transaction.Inputs {
		err = WriteElement(w, input.OutputID)
		if err != nil {
			return err
		}
	}
	err = WriteElement(w, uint16(len(transaction.Outputs)))
	if err != nil {
		return err
	}
	for _, output := range transaction.Outputs {
		err = WriteElements(w, output.Address, output.Amount, output.TimelockMilestoneIndex)
		if err != nil {
			return err
		}
	}
	hasTaggedData := transaction.TaggedData != nil
	err = WriteElement(w, hasTaggedData)
	if err != nil {
		return err
	}
	if hasTaggedData {
		return serializeTaggedData(w, transaction.TaggedData)
	}
	return nil
}

// TransactionEssenceToBytes returns the serialized essence of transaction.
func TransactionEssenceToBytes(transaction *externalapi.TransactionPayload) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := SerializeTransactionEssence(buf, transaction)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeTransaction writes the essence of transaction followed by its
// unlocks.
func SerializeTransaction(w io.Writer, transaction *externalapi.TransactionPayload) error {
	err := SerializeTransactionEssence(w, transaction)
	if err != nil {
		return err
	}
	if len(transaction.Unlocks) > 0xffff {
		return errors.Errorf("transaction has too many unlocks")
	}
	err = WriteElement(w, uint16(len(transaction.Unlocks)))
	if err != nil {
		return err
	}
	for _, unlock := range transaction.Unlocks {
		err = serializeUnlock(w, unlock)
		if err != nil {
			return err
		}
	}
	return nil
}

func serializeUnlock(w io.Writer, unlock externalapi.Unlock) error {
	switch unlock := unlock.(type) {
	case *externalapi.SignatureUnlock:
		return WriteElements(w, uint8(externalapi.UnlockTypeSignature), unlock.PublicKey, unlock.Signature)
	case *externalapi.ReferenceUnlock:
		return WriteElements(w, uint8(externalapi.UnlockTypeReference), unlock.Reference)
	default:
		return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write unlock %T", unlock)
	}
}

// DeserializeTransaction reads a transaction written by SerializeTransaction.
func DeserializeTransaction(r io.Reader) (*externalapi.TransactionPayload, error) {
	transaction := &externalapi.TransactionPayload{}
	var inputCount uint16
	err := ReadElements(r, &transaction.NetworkID, &inputCount)
	if err != nil {
		return nil, err
	}
	transaction.Inputs = make([]*externalapi.UTXOInput, inputCount)
	for i := range transaction.Inputs {
		input := &externalapi.UTXOInput{}
		err = ReadElement(r, &input.OutputID)
		if err != nil {
			return nil, err
		}
		transaction.Inputs[i] = input
	}

	var outputCount uint16
	err = ReadElement(r, &outputCount)
	if err != nil {
		return nil, err
	}
	transaction.Outputs = make([]*externalapi.Output, outputCount)
	for i := range transaction.Outputs {
		output := &externalapi.Output{}
		err = ReadElements(r, &output.Address, &output.Amount, &output.TimelockMilestoneIndex)
		if err != nil {
			return nil, err
		}
		transaction.Outputs[i] = output
	}

	var hasTaggedData bool
	err = ReadElement(r, &hasTaggedData)
	if err != nil {
		return nil, err
	}
	if hasTaggedData {
		transaction.TaggedData, err = deserializeTaggedData(r)
		if err != nil {
			return nil, err
		}
	}

	var unlockCount uint16
	err = ReadElement(r, &unlockCount)
	if err != nil {
		return nil, err
	}
	transaction.Unlocks = make([]externalapi.Unlock, unlockCount)
	for i := range transaction.Unlocks {
		transaction.Unlocks[i], err = deserializeUnlock(r)
		if err != nil {
			return nil, err
		}
	}
	return transaction, nil
}

func deserializeUnlock(r io.Reader) (externalapi.Unlock, error) {
	var unlockType uint8
	err := ReadElement(r, &unlockType)
	if err != nil {
		return nil, err
	}
	switch externalapi.UnlockType(unlockType) {
	case externalapi.UnlockTypeSignature:
		unlock := &externalapi.SignatureUnlock{}
		err = ReadElements(r, &unlock.PublicKey, &unlock.Signature)
		if err != nil {
			return nil, err
		}
		return unlock, nil
	case externalapi.UnlockTypeReference:
		unlock := &externalapi.ReferenceUnlock{}
		err = ReadElement(r, &unlock.Reference)
		if err != nil {
			return nil, err
		}
		return unlock, nil
	default:
		return nil, errors.Wrapf(errMalformed, "unknown unlock type %d", unlockType)
	}
}
