package testutils

import (
	"testing"

	"github.com/tanglenet/tangled/domain/consensus/utils/schnorr"
)

// CoordinatorKeyCount is the number of coordinator keys of the simnet.
const CoordinatorKeyCount = 3

// CoordinatorKeyPairs returns the key pairs matching the simnet coordinator
// public keys: the ones of the private keys 1, 2 and 3.
func CoordinatorKeyPairs(t *testing.T) []*schnorr.KeyPair {
	keyPairs := make([]*schnorr.KeyPair, CoordinatorKeyCount)
	for i := range keyPairs {
		keyPairs[i] = KeyPairFromSeed(t, byte(i+1))
	}
	return keyPairs
}

// KeyPairFromSeed returns the key pair whose private key is the 32 byte big
// endian encoding of seed. seed must not be zero.
func KeyPairFromSeed(t *testing.T, seed byte) *schnorr.KeyPair {
	privateKey := make([]byte, schnorr.PrivateKeySize)
	privateKey[schnorr.PrivateKeySize-1] = seed
	keyPair, err := schnorr.KeyPairFromPrivateKey(privateKey)
	if err != nil {
		t.Fatalf("KeyPairFromPrivateKey: %+v", err)
	}
	return keyPair
}
