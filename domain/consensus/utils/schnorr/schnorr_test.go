package schnorr

import (
	"testing"

	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

func TestSignAndVerify(t *testing.T) {
	privateKey := make([]byte, PrivateKeySize)
	privateKey[PrivateKeySize-1] = 7
	keyPair, err := KeyPairFromPrivateKey(privateKey)
	if err != nil {
		t.Fatalf("KeyPairFromPrivateKey: %+v", err)
	}

	hash := [32]byte{1, 2, 3}
	signature, err := keyPair.Sign(hash)
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}
	if !Verify(keyPair.PublicKey(), hash, signature) {
		t.Fatalf("a valid signature didn't verify")
	}

	otherHash := [32]byte{3, 2, 1}
	if Verify(keyPair.PublicKey(), otherHash, signature) {
		t.Fatalf("a signature verified against the wrong hash")
	}

	var garbageKey [externalapi.PublicKeySize]byte
	if Verify(garbageKey, hash, signature) {
		t.Fatalf("a signature verified against a malformed public key")
	}

	if keyPair.PrivateKey()[PrivateKeySize-1] != 7 {
		t.Fatalf("unexpected private key")
	}
}

func TestKeyPairFromPrivateKeyWrongLength(t *testing.T) {
	_, err := KeyPairFromPrivateKey([]byte{1, 2, 3})
	if err == nil {
		t.Fatalf("expected an error for a short private key")
	}
}
