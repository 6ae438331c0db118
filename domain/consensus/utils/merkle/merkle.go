package merkle

import (
	"math/bits"

	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/hashes"
)

// Domain separation prefixes of the tree hasher.
const (
	leafHashPrefix = 0x00
	nodeHashPrefix = 0x01
)

// CalculateRootHash returns the Merkle root of the given block ids, in the
// order given.
//
// The tree follows RFC 6962: an empty list hashes to blake2b(""), a leaf is
// blake2b(0x00 || id), and an inner node over a list of n > 1 elements is
// blake2b(0x01 || root(first k) || root(rest)) where k is the largest power
// of two smaller than n.
func CalculateRootHash(blockIDs []externalapi.BlockID) [hashes.HashSize]byte {
	if len(blockIDs) == 0 {
		return hashes.Blake2b256()
	}
	return calculateSubtreeHash(blockIDs)
}

func calculateSubtreeHash(blockIDs []externalapi.BlockID) [hashes.HashSize]byte {
	if len(blockIDs) == 1 {
		return hashLeaf(blockIDs[0])
	}
	k := largestPowerOfTwoBelow(len(blockIDs))
	left := calculateSubtreeHash(blockIDs[:k])
	right := calculateSubtreeHash(blockIDs[k:])
	return hashNode(left, right)
}

func hashLeaf(blockID externalapi.BlockID) [hashes.HashSize]byte {
	writer := hashes.NewHashWriter()
	writer.InfallibleWrite([]byte{leafHashPrefix})
	writer.InfallibleWrite(blockID[:])
	return writer.Finalize()
}

func hashNode(left, right [hashes.HashSize]byte) [hashes.HashSize]byte {
	writer := hashes.NewHashWriter()
	writer.InfallibleWrite([]byte{nodeHashPrefix})
	writer.InfallibleWrite(left[:])
	writer.InfallibleWrite(right[:])
	return writer.Finalize()
}

// largestPowerOfTwoBelow returns the largest power of two smaller than n.
// n must be at least 2.
func largestPowerOfTwoBelow(n int) int {
	return 1 << (bits.Len(uint(n-1)) - 1)
}
