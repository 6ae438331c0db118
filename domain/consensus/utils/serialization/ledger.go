package serialization

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// LedgerOutputToBytes serializes output the way it's persisted and the way
// it's fed into the ledger state commitment.
func LedgerOutputToBytes(output *externalapi.LedgerOutput) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := WriteElements(buf, output.OutputID, output.BlockID, output.MilestoneIndexBooked,
		output.MilestoneTimestampBooked, output.Output.Address, output.Output.Amount,
		output.Output.TimelockMilestoneIndex)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToLedgerOutput deserializes a LedgerOutput serialized by
// LedgerOutputToBytes.
func BytesToLedgerOutput(outputBytes []byte) (*externalapi.LedgerOutput, error) {
	reader := bytes.NewReader(outputBytes)
	ledgerOutput := &externalapi.LedgerOutput{Output: &externalapi.Output{}}
	err := ReadElements(reader, &ledgerOutput.OutputID, &ledgerOutput.BlockID, &ledgerOutput.MilestoneIndexBooked,
		&ledgerOutput.MilestoneTimestampBooked, &ledgerOutput.Output.Address, &ledgerOutput.Output.Amount,
		&ledgerOutput.Output.TimelockMilestoneIndex)
	if err != nil {
		return nil, err
	}
	return ledgerOutput, checkNoTrailingBytes(reader, "ledger output")
}

// SpentRecordToBytes serializes the spending half of a ConsumedOutput.
func SpentRecordToBytes(consumed *externalapi.ConsumedOutput) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := WriteElements(buf, consumed.SpentTransactionID, consumed.MilestoneIndexSpent,
		consumed.MilestoneTimestampSpent)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToSpentRecord deserializes a spent record and attaches it to output.
func BytesToSpentRecord(spentBytes []byte, output *externalapi.LedgerOutput) (*externalapi.ConsumedOutput, error) {
	reader := bytes.NewReader(spentBytes)
	consumed := &externalapi.ConsumedOutput{Output: output}
	err := ReadElements(reader, &consumed.SpentTransactionID, &consumed.MilestoneIndexSpent,
		&consumed.MilestoneTimestampSpent)
	if err != nil {
		return nil, err
	}
	return consumed, checkNoTrailingBytes(reader, "spent record")
}

// TreasuryOutputToBytes serializes a TreasuryOutput.
func TreasuryOutputToBytes(treasury *externalapi.TreasuryOutput) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := WriteElements(buf, treasury.MilestoneID, treasury.Amount, treasury.Spent)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToTreasuryOutput deserializes a TreasuryOutput.
func BytesToTreasuryOutput(treasuryBytes []byte) (*externalapi.TreasuryOutput, error) {
	reader := bytes.NewReader(treasuryBytes)
	treasury := &externalapi.TreasuryOutput{}
	err := ReadElements(reader, &treasury.MilestoneID, &treasury.Amount, &treasury.Spent)
	if err != nil {
		return nil, err
	}
	return treasury, checkNoTrailingBytes(reader, "treasury output")
}

// MilestoneToBytes serializes a validated milestone together with its payload.
func MilestoneToBytes(milestone *externalapi.Milestone) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := WriteElements(buf, milestone.Index, milestone.MilestoneID, milestone.BlockID, milestone.Timestamp)
	if err != nil {
		return nil, err
	}
	err = SerializeMilestonePayload(buf, milestone.Payload)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToMilestone deserializes a milestone serialized by MilestoneToBytes.
func BytesToMilestone(milestoneBytes []byte) (*externalapi.Milestone, error) {
	reader := bytes.NewReader(milestoneBytes)
	milestone := &externalapi.Milestone{}
	err := ReadElements(reader, &milestone.Index, &milestone.MilestoneID, &milestone.BlockID, &milestone.Timestamp)
	if err != nil {
		return nil, err
	}
	milestone.Payload, err = DeserializeMilestonePayload(reader)
	if err != nil {
		return nil, err
	}
	return milestone, checkNoTrailingBytes(reader, "milestone")
}

// SolidEntryPointToBytes serializes a SolidEntryPoint.
func SolidEntryPointToBytes(solidEntryPoint *model.SolidEntryPoint) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := WriteElements(buf, solidEntryPoint.BlockID, solidEntryPoint.Index)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToSolidEntryPoint deserializes a SolidEntryPoint.
func BytesToSolidEntryPoint(solidEntryPointBytes []byte) (*model.SolidEntryPoint, error) {
	reader := bytes.NewReader(solidEntryPointBytes)
	solidEntryPoint := &model.SolidEntryPoint{}
	err := ReadElements(reader, &solidEntryPoint.BlockID, &solidEntryPoint.Index)
	if err != nil {
		return nil, err
	}
	return solidEntryPoint, checkNoTrailingBytes(reader, "solid entry point")
}

// MilestoneIndexToBytes serializes a milestone index so that the byte order
// of the result matches the numeric order of the index.
func MilestoneIndexToBytes(index externalapi.MilestoneIndex) []byte {
	return []byte{byte(index >> 24), byte(index >> 16), byte(index >> 8), byte(index)}
}

// BytesToMilestoneIndex deserializes an index serialized by MilestoneIndexToBytes.
func BytesToMilestoneIndex(indexBytes []byte) (externalapi.MilestoneIndex, error) {
	if len(indexBytes) != 4 {
		return 0, errors.Wrapf(errMalformed, "milestone index must be 4 bytes, got %d", len(indexBytes))
	}
	return externalapi.MilestoneIndex(indexBytes[0])<<24 | externalapi.MilestoneIndex(indexBytes[1])<<16 |
		externalapi.MilestoneIndex(indexBytes[2])<<8 | externalapi.MilestoneIndex(indexBytes[3]), nil
}

func checkNoTrailingBytes(reader *bytes.Reader, name string) error {
	if reader.Len() != 0 {
		return errors.Wrapf(errMalformed, "%d trailing bytes after %s", reader.Len(), name)
	}
	return nil
}
