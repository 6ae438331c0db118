package main

import (
	"strings"
	"testing"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestDeriveKeyPairs(t *testing.T) {
	keyPairs, err := deriveKeyPairs(testMnemonic, 3)
	if err != nil {
		t.Fatalf("deriveKeyPairs: %+v", err)
	}
	if len(keyPairs) != 3 {
		t.Fatalf("expected 3 key pairs, got %d", len(keyPairs))
	}
	seen := make(map[[32]byte]struct{})
	for _, keyPair := range keyPairs {
		seen[keyPair.PublicKey()] = struct{}{}
	}
	if len(seen) != 3 {
		t.Fatalf("the derived public keys aren't distinct")
	}

	again, err := deriveKeyPairs(testMnemonic, 2)
	if err != nil {
		t.Fatalf("deriveKeyPairs: %+v", err)
	}
	for i := range again {
		if again[i].PrivateKey() != keyPairs[i].PrivateKey() {
			t.Fatalf("key %d differs between two derivations of the same mnemonic", i)
		}
	}

	_, err = deriveKeyPairs("abandon abandon abandon", 1)
	if err == nil {
		t.Fatalf("expected an error on an invalid mnemonic")
	}
}

func TestCreateMnemonic(t *testing.T) {
	mnemonic, err := createMnemonic()
	if err != nil {
		t.Fatalf("createMnemonic: %+v", err)
	}
	if len(strings.Fields(mnemonic)) != 24 {
		t.Fatalf("expected a 24 word mnemonic, got %q", mnemonic)
	}
	_, err = deriveKeyPairs(mnemonic, 1)
	if err != nil {
		t.Fatalf("deriveKeyPairs: %+v", err)
	}
}

func TestKeyRangeFlag(t *testing.T) {
	var publicKey [32]byte
	publicKey[0] = 0xab
	openRange := keyRangeFlag(publicKey, 5, 0)
	if !strings.HasPrefix(openRange, "--milestone-key-range=ab00") || !strings.HasSuffix(openRange, ":5") {
		t.Fatalf("unexpected flag %s", openRange)
	}
	closedRange := keyRangeFlag(publicKey, 5, 9)
	if !strings.HasSuffix(closedRange, "00:5:9") {
		t.Fatalf("unexpected flag %s", closedRange)
	}
}
