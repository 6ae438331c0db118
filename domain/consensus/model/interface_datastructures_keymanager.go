package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// MilestoneKeyRange makes PublicKey valid for milestones StartIndex..EndIndex.
// An EndIndex of zero leaves the range open.
type MilestoneKeyRange struct {
	PublicKey  [externalapi.PublicKeySize]byte
	StartIndex externalapi.MilestoneIndex
	EndIndex   externalapi.MilestoneIndex
}

// KeyManager resolves the coordinator public keys applicable to a milestone index.
type KeyManager interface {
	PublicKeysForIndex(index externalapi.MilestoneIndex) [][externalapi.PublicKeySize]byte
	PublicKeySetForIndex(index externalapi.MilestoneIndex) map[[externalapi.PublicKeySize]byte]struct{}
}
