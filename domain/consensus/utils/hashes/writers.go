package hashes

import (
	"hash"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// HashSize is the size of a blake2b-256 digest.
const HashSize = blake2b.Size256

// HashWriter is used to incrementally hash data without concatenating all of the data to a single buffer
// it exposes an io.Writer api and a Finalize function to get the resulting hash.
// The used hash function is blake2b-256.
type HashWriter struct {
	hash.Hash
}

// NewHashWriter returns a new blake2b-256 HashWriter.
func NewHashWriter() HashWriter {
	blake, err := blake2b.New256(nil)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. blake2b.New256 fails only for oversized keys"))
	}
	return HashWriter{blake}
}

// InfallibleWrite is just like write but doesn't return anything
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h HashWriter) Finalize() [HashSize]byte {
	var sum [HashSize]byte
	copy(sum[:], h.Sum(sum[:0]))
	return sum
}

// Blake2b256 returns the blake2b-256 digest of the concatenation of data.
func Blake2b256(data ...[]byte) [HashSize]byte {
	writer := NewHashWriter()
	for _, chunk := range data {
		writer.InfallibleWrite(chunk)
	}
	return writer.Finalize()
}
