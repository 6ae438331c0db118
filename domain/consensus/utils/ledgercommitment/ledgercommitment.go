package ledgercommitment

import (
	"github.com/kaspanet/go-muhash"
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/hashes"
	"github.com/tanglenet/tangled/domain/consensus/utils/serialization"
)

// Commitment is a rolling MuHash over the serialized unspent outputs of the
// ledger. Adding and removing outputs is order independent.
type Commitment struct {
	muHash *muhash.MuHash
}

// New returns the commitment of an empty ledger.
func New() *Commitment {
	return &Commitment{muHash: muhash.NewMuHash()}
}

// FromBytes deserializes a commitment serialized by Serialize. An empty
// slice is the commitment of an empty ledger.
func FromBytes(commitmentBytes []byte) (*Commitment, error) {
	if len(commitmentBytes) == 0 {
		return New(), nil
	}
	serialized := &muhash.SerializedMuHash{}
	if len(serialized) != len(commitmentBytes) {
		return nil, errors.Errorf("ledger commitment bytes expected to be in length of %d but got %d",
			len(serialized), len(commitmentBytes))
	}
	copy(serialized[:], commitmentBytes)
	muHash, err := muhash.DeserializeMuHash(serialized)
	if err != nil {
		return nil, err
	}
	return &Commitment{muHash: muHash}, nil
}

// AddOutput adds output to the committed set.
func (c *Commitment) AddOutput(output *externalapi.LedgerOutput) error {
	outputBytes, err := serialization.LedgerOutputToBytes(output)
	if err != nil {
		return err
	}
	c.muHash.Add(outputBytes)
	return nil
}

// RemoveOutput removes output from the committed set.
func (c *Commitment) RemoveOutput(output *externalapi.LedgerOutput) error {
	outputBytes, err := serialization.LedgerOutputToBytes(output)
	if err != nil {
		return err
	}
	c.muHash.Remove(outputBytes)
	return nil
}

// Apply adds every created output and removes every consumed one.
func (c *Commitment) Apply(created []*externalapi.LedgerOutput, consumed []*externalapi.ConsumedOutput) error {
	for _, output := range created {
		err := c.AddOutput(output)
		if err != nil {
			return err
		}
	}
	for _, consumedOutput := range consumed {
		err := c.RemoveOutput(consumedOutput.Output)
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy of c.
func (c *Commitment) Clone() *Commitment {
	return &Commitment{muHash: c.muHash.Clone()}
}

// Serialize returns the full internal state, which can be resumed with FromBytes.
func (c *Commitment) Serialize() []byte {
	serialized := c.muHash.Serialize()
	return append([]byte(nil), serialized[:]...)
}

// Hash returns the 32 byte digest of the committed set.
func (c *Commitment) Hash() [hashes.HashSize]byte {
	finalized := c.muHash.Finalize()
	var hash [hashes.HashSize]byte
	copy(hash[:], finalized[:])
	return hash
}

// HashFromBytes returns the digest of a serialized commitment.
func HashFromBytes(commitmentBytes []byte) ([hashes.HashSize]byte, error) {
	commitment, err := FromBytes(commitmentBytes)
	if err != nil {
		return [hashes.HashSize]byte{}, err
	}
	return commitment.Hash(), nil
}
