package keymanager

import (
	"bytes"
	"sort"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// keyManager resolves coordinator keys by milestone index. It is immutable
// after construction.
type keyManager struct {
	keyRanges []*model.MilestoneKeyRange
}

// New instantiates a new KeyManager
func New(keyRanges []*model.MilestoneKeyRange) model.KeyManager {
	clone := make([]*model.MilestoneKeyRange, len(keyRanges))
	for i, keyRange := range keyRanges {
		keyRangeClone := *keyRange
		clone[i] = &keyRangeClone
	}
	sort.SliceStable(clone, func(i, j int) bool {
		return clone[i].StartIndex < clone[j].StartIndex
	})
	return &keyManager{keyRanges: clone}
}

// PublicKeysForIndex returns the keys valid at index, sorted and without
// duplicates.
func (km *keyManager) PublicKeysForIndex(index externalapi.MilestoneIndex) [][externalapi.PublicKeySize]byte {
	keySet := km.PublicKeySetForIndex(index)
	publicKeys := make([][externalapi.PublicKeySize]byte, 0, len(keySet))
	for publicKey := range keySet {
		publicKeys = append(publicKeys, publicKey)
	}
	sort.Slice(publicKeys, func(i, j int) bool {
		return bytes.Compare(publicKeys[i][:], publicKeys[j][:]) < 0
	})
	return publicKeys
}

func (km *keyManager) PublicKeySetForIndex(index externalapi.MilestoneIndex) map[[externalapi.PublicKeySize]byte]struct{} {
	keySet := make(map[[externalapi.PublicKeySize]byte]struct{})
	for _, keyRange := range km.keyRanges {
		if keyRange.StartIndex > index {
			break
		}
		if keyRange.EndIndex != 0 && keyRange.EndIndex < index {
			continue
		}
		keySet[keyRange.PublicKey] = struct{}{}
	}
	return keySet
}
