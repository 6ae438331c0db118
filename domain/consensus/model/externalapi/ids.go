package externalapi

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// IDSize is the size of every content-derived identifier in the tangle.
const IDSize = 32

// BlockID is the blake2b-256 digest of a block's canonical serialization.
type BlockID [IDSize]byte

// TransactionID is the blake2b-256 digest of a transaction payload.
type TransactionID [IDSize]byte

// MilestoneID is the blake2b-256 digest of a milestone essence.
type MilestoneID [IDSize]byte

// Address is the blake2b-256 digest of an ed25519-sized schnorr public key.
type Address [IDSize]byte

// MilestoneIndex is the position of a milestone in the coordinator's chain.
type MilestoneIndex uint32

// OutputIDSize is the size of a serialized OutputID.
const OutputIDSize = IDSize + 2

// OutputID identifies a single output: the transaction that created it and
// the output's position within that transaction.
type OutputID struct {
	TransactionID TransactionID
	Index         uint16
}

// String returns the BlockID as the hexadecimal string of the id.
func (id BlockID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero returns whether this is the all-zero id used as the genesis
// solid entry point.
func (id BlockID) IsZero() bool {
	return id == BlockID{}
}

// Less returns true iff id is lexicographically smaller than other.
func (id BlockID) Less(other BlockID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// NewBlockIDFromByteSlice returns a BlockID from the given slice.
func NewBlockIDFromByteSlice(idBytes []byte) (BlockID, error) {
	var id BlockID
	if len(idBytes) != IDSize {
		return id, errors.Errorf("invalid block id size. Want: %d, got: %d",
			IDSize, len(idBytes))
	}
	copy(id[:], idBytes)
	return id, nil
}

// NewBlockIDFromString parses a hex encoded BlockID.
func NewBlockIDFromString(idString string) (BlockID, error) {
	if len(idString) != IDSize*2 {
		return BlockID{}, errors.Errorf("block id string length is %d, while it should be be %d",
			len(idString), IDSize*2)
	}
	idBytes, err := hex.DecodeString(idString)
	if err != nil {
		return BlockID{}, errors.WithStack(err)
	}
	return NewBlockIDFromByteSlice(idBytes)
}

// String returns the TransactionID as the hexadecimal string of the id.
func (id TransactionID) String() string {
	return hex.EncodeToString(id[:])
}

// String returns the MilestoneID as the hexadecimal string of the id.
func (id MilestoneID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero returns whether the id is unset.
func (id MilestoneID) IsZero() bool {
	return id == MilestoneID{}
}

// String returns the Address as a hexadecimal string.
func (address Address) String() string {
	return hex.EncodeToString(address[:])
}

func (id OutputID) String() string {
	return fmt.Sprintf("%s:%d", id.TransactionID, id.Index)
}

// Bytes returns the 34 byte serialization of the OutputID.
func (id OutputID) Bytes() []byte {
	idBytes := make([]byte, OutputIDSize)
	copy(idBytes, id.TransactionID[:])
	binary.LittleEndian.PutUint16(idBytes[IDSize:], id.Index)
	return idBytes
}

// NewOutputIDFromBytes deserializes an OutputID produced by OutputID.Bytes.
func NewOutputIDFromBytes(idBytes []byte) (OutputID, error) {
	if len(idBytes) != OutputIDSize {
		return OutputID{}, errors.Errorf("invalid output id size. Want: %d, got: %d",
			OutputIDSize, len(idBytes))
	}
	var id OutputID
	copy(id.TransactionID[:], idBytes[:IDSize])
	id.Index = binary.LittleEndian.Uint16(idBytes[IDSize:])
	return id, nil
}

// CloneBlockIDs returns a clone of the given ids slice.
func CloneBlockIDs(ids []BlockID) []BlockID {
	if ids == nil {
		return nil
	}
	clone := make([]BlockID, len(ids))
	copy(clone, ids)
	return clone
}

// BlockIDsEqual returns whether the given id slices are equal, element by element.
func BlockIDsEqual(a, b []BlockID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SortBlockIDs sorts the given ids lexicographically in place.
func SortBlockIDs(ids []BlockID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Less(ids[j])
	})
}

// BlockIDsToStrings converts a slice of ids into a slice of the corresponding strings
func BlockIDsToStrings(ids []BlockID) []string {
	strings := make([]string, len(ids))
	for i, id := range ids {
		strings[i] = id.String()
	}
	return strings
}
