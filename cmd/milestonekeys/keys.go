package main

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/utils/schnorr"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
)

const keyDerivationDomain = "tangled-milestone-key"

func createMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", errors.WithStack(err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return mnemonic, nil
}

// deriveKeyPairs derives numKeys coordinator key pairs from mnemonic. The
// private key of index i is blake2b-256(seed || domain || i).
func deriveKeyPairs(mnemonic string, numKeys uint32) ([]*schnorr.KeyPair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("the mnemonic is invalid")
	}
	seed := bip39.NewSeed(mnemonic, "")

	keyPairs := make([]*schnorr.KeyPair, numKeys)
	for i := uint32(0); i < numKeys; i++ {
		preimage := make([]byte, 0, len(seed)+len(keyDerivationDomain)+4)
		preimage = append(preimage, seed...)
		preimage = append(preimage, keyDerivationDomain...)
		preimage = binary.LittleEndian.AppendUint32(preimage, i)
		privateKey := blake2b.Sum256(preimage)

		keyPair, err := schnorr.KeyPairFromPrivateKey(privateKey[:])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive key %d", i)
		}
		keyPairs[i] = keyPair
	}
	return keyPairs, nil
}
