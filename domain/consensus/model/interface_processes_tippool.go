package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// TipScore classifies how useful a tip is as a parent of a new block.
type TipScore uint8

// Tip scores
const (
	TipScoreLazy TipScore = iota
	TipScoreSemiLazy
	TipScoreNonLazy
)

func (score TipScore) String() string {
	switch score {
	case TipScoreLazy:
		return "Lazy"
	case TipScoreSemiLazy:
		return "SemiLazy"
	case TipScoreNonLazy:
		return "NonLazy"
	default:
		return "Unknown"
	}
}

// TipPool maintains the set of blocks eligible as parents of new blocks.
type TipPool interface {
	// AddTip admits a freshly solidified block and retires its parents.
	// It returns false if the node is too far out of sync to admit tips.
	AddTip(candidate *SolidifiedBlock) bool
	// Update rescores all tips and evicts the lazy ones.
	Update()
	Tips() []externalapi.BlockID
	SelectTips(count int) ([]externalapi.BlockID, error)
	Count() int
}
