package keymanager

import (
	"testing"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

func TestPublicKeysForIndex(t *testing.T) {
	keyA := [externalapi.PublicKeySize]byte{1}
	keyB := [externalapi.PublicKeySize]byte{2}
	keyC := [externalapi.PublicKeySize]byte{3}

	keyManager := New([]*model.MilestoneKeyRange{
		{PublicKey: keyC, StartIndex: 10},
		{PublicKey: keyA, StartIndex: 0, EndIndex: 10},
		{PublicKey: keyB, StartIndex: 0},
	})

	tests := []struct {
		index    externalapi.MilestoneIndex
		expected [][externalapi.PublicKeySize]byte
	}{
		{index: 1, expected: [][externalapi.PublicKeySize]byte{keyA, keyB}},
		{index: 10, expected: [][externalapi.PublicKeySize]byte{keyA, keyB, keyC}},
		{index: 11, expected: [][externalapi.PublicKeySize]byte{keyB, keyC}},
	}
	for _, test := range tests {
		result := keyManager.PublicKeysForIndex(test.index)
		if len(result) != len(test.expected) {
			t.Fatalf("index %d: expected %d keys, got %d", test.index, len(test.expected), len(result))
		}
		for i := range result {
			if result[i] != test.expected[i] {
				t.Fatalf("index %d: unexpected key at position %d: %x", test.index, i, result[i])
			}
		}
		if len(keyManager.PublicKeySetForIndex(test.index)) != len(test.expected) {
			t.Fatalf("index %d: the key set and the key list disagree", test.index)
		}
	}
}
