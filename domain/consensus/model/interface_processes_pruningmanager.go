package model

import "github.com/tanglenet/tangled/domain/consensus/model/externalapi"

// PruningManager removes confirmed history below a target milestone index,
// keeping solid entry points in its place.
type PruningManager interface {
	Prune(targetIndex externalapi.MilestoneIndex) error
	// PruneIfNeeded prunes according to the configured delay and interval.
	PruneIfNeeded() (pruned bool, err error)
}
