package schnorr

import (
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// PrivateKeySize is the size of a serialized schnorr private key.
const PrivateKeySize = 32

// Verify returns whether signature is a valid schnorr signature of hash by
// publicKey. Malformed keys and signatures don't verify.
func Verify(publicKey [externalapi.PublicKeySize]byte, hash [32]byte,
	signature [externalapi.SignatureSize]byte) bool {

	schnorrPublicKey, err := secp256k1.DeserializeSchnorrPubKey(publicKey[:])
	if err != nil {
		return false
	}
	schnorrSignature, err := secp256k1.DeserializeSchnorrSignatureFromSlice(signature[:])
	if err != nil {
		return false
	}
	secpHash := secp256k1.Hash(hash)
	return schnorrPublicKey.SchnorrVerify(&secpHash, schnorrSignature)
}

// KeyPair is a schnorr key pair able to sign essences.
type KeyPair struct {
	keyPair    *secp256k1.SchnorrKeyPair
	privateKey [PrivateKeySize]byte
	publicKey  [externalapi.PublicKeySize]byte
}

// KeyPairFromPrivateKey deserializes a 32 byte private key.
func KeyPairFromPrivateKey(privateKey []byte) (*KeyPair, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, errors.Errorf("private key must be %d bytes, got %d", PrivateKeySize, len(privateKey))
	}
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize private key")
	}
	schnorrPublicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate public key")
	}
	serializedPublicKey, err := schnorrPublicKey.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize public key")
	}
	result := &KeyPair{keyPair: keyPair}
	copy(result.privateKey[:], privateKey)
	copy(result.publicKey[:], serializedPublicKey[:])
	return result, nil
}

// PublicKey returns the serialized x-only public key of the pair.
func (kp *KeyPair) PublicKey() [externalapi.PublicKeySize]byte {
	return kp.publicKey
}

// PrivateKey returns the serialized private key of the pair.
func (kp *KeyPair) PrivateKey() [PrivateKeySize]byte {
	return kp.privateKey
}

// Sign returns a schnorr signature of hash.
func (kp *KeyPair) Sign(hash [32]byte) ([externalapi.SignatureSize]byte, error) {
	var result [externalapi.SignatureSize]byte
	secpHash := secp256k1.Hash(hash)
	signature, err := kp.keyPair.SchnorrSign(&secpHash)
	if err != nil {
		return result, errors.Wrap(err, "cannot sign hash")
	}
	copy(result[:], signature.Serialize()[:])
	return result, nil
}
