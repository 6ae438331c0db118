package serialization

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// payloadTypeNone marks a block without a payload.
const payloadTypeNone externalapi.PayloadType = 0

// SerializeBlock writes the canonical serialization of block to w.
func SerializeBlock(w io.Writer, block *externalapi.Block) error {
	if len(block.Parents) > 0xff {
		return errors.Errorf("a block can't have more than 255 parents, got %d", len(block.Parents))
	}
	err := WriteElement(w, uint8(len(block.Parents)))
	if err != nil {
		return err
	}
	for _, parent := range block.Parents {
		err = WriteElement(w, parent)
		if err != nil {
			return err
		}
	}
	err = serializePayload(w, block.Payload)
	if err != nil {
		return err
	}
	return WriteElement(w, block.Nonce)
}

// DeserializeBlock reads a block written by SerializeBlock.
func DeserializeBlock(r io.Reader) (*externalapi.Block, error) {
	var parentCount uint8
	err := ReadElement(r, &parentCount)
	if err != nil {
		return nil, err
	}
	parents := make([]externalapi.BlockID, parentCount)
	for i := range parents {
		err = ReadElement(r, &parents[i])
		if err != nil {
			return nil, err
		}
	}
	payload, err := deserializePayload(r)
	if err != nil {
		return nil, err
	}
	block := &externalapi.Block{Parents: parents, Payload: payload}
	err = ReadElement(r, &block.Nonce)
	if err != nil {
		return nil, err
	}
	return block, nil
}

// BlockToBytes returns the canonical serialization of block.
func BlockToBytes(block *externalapi.Block) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := SerializeBlock(buf, block)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToBlock parses a block serialized by BlockToBytes. Trailing bytes
// are an error.
func BytesToBlock(blockBytes []byte) (*externalapi.Block, error) {
	reader := bytes.NewReader(blockBytes)
	block, err := DeserializeBlock(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, errors.Wrapf(errMalformed, "%d trailing bytes after block", reader.Len())
	}
	return block, nil
}

func serializePayload(w io.Writer, payload externalapi.Payload) error {
	if payload == nil {
		return WriteElement(w, payloadTypeNone)
	}
	err := WriteElement(w, payload.PayloadType())
	if err != nil {
		return err
	}
	switch payload := payload.(type) {
	case *externalapi.TransactionPayload:
		return SerializeTransaction(w, payload)
	case *externalapi.MilestonePayload:
		return SerializeMilestonePayload(w, payload)
	case *externalapi.TaggedDataPayload:
		return serializeTaggedData(w, payload)
	case *externalapi.TreasuryTransactionPayload:
		return serializeTreasuryTransaction(w, payload)
	default:
		return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write payload %T", payload)
	}
}

func deserializePayload(r io.Reader) (externalapi.Payload, error) {
	var payloadType externalapi.PayloadType
	err := ReadElement(r, &payloadType)
	if err != nil {
		return nil, err
	}
	switch payloadType {
	case payloadTypeNone:
		return nil, nil
	case externalapi.PayloadTypeTransaction:
		return DeserializeTransaction(r)
	case externalapi.PayloadTypeMilestone:
		return DeserializeMilestonePayload(r)
	case externalapi.PayloadTypeTaggedData:
		return deserializeTaggedData(r)
	case externalapi.PayloadTypeTreasuryTransaction:
		return deserializeTreasuryTransaction(r)
	default:
		return nil, errors.Wrapf(errMalformed, "unknown payload type %d", payloadType)
	}
}

func serializeTaggedData(w io.Writer, taggedData *externalapi.TaggedDataPayload) error {
	err := WriteVarBytes(w, taggedData.Tag)
	if err != nil {
		return err
	}
	return WriteVarBytes(w, taggedData.Data)
}

func deserializeTaggedData(r io.Reader) (*externalapi.TaggedDataPayload, error) {
	tag, err := ReadVarBytes(r)
	if err != nil {
		return nil, err
	}
	data, err := ReadVarBytes(r)
	if err != nil {
		return nil, err
	}
	return &externalapi.TaggedDataPayload{Tag: tag, Data: data}, nil
}

func serializeTreasuryTransaction(w io.Writer, treasury *externalapi.TreasuryTransactionPayload) error {
	return WriteElements(w, treasury.InputMilestoneID, treasury.OutputAmount)
}

func deserializeTreasuryTransaction(r io.Reader) (*externalapi.TreasuryTransactionPayload, error) {
	treasury := &externalapi.TreasuryTransactionPayload{}
	err := ReadElements(r, &treasury.InputMilestoneID, &treasury.OutputAmount)
	if err != nil {
		return nil, err
	}
	return treasury, nil
}
