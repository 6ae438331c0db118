package consensus

import (
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/dagconfig"
)

// initializeLedgerIfNeeded seeds empty storage with the genesis snapshot of
// the network.
func initializeLedgerIfNeeded(storage model.StorageBackend, params *dagconfig.Params) error {
	isInitialized, err := storage.IsInitialized()
	if err != nil {
		return err
	}
	if isInitialized {
		return nil
	}
	log.Infof("Initializing the %s ledger from its genesis snapshot", params.Name)
	return storage.InitializeLedger(params.GenesisSnapshot())
}

// loadTangleState restores the tangle-level state that survives a restart.
// Block bodies live in memory only, so every stored milestone block becomes
// a solid entry point at its own index, on top of the stored solid entry
// points.
func loadTangleState(blockStore model.BlockStore, storage model.StorageBackend) error {
	solidEntryPoints, err := storage.SolidEntryPoints()
	if err != nil {
		return err
	}
	milestones, err := storage.Milestones()
	if err != nil {
		return err
	}
	ledgerIndex, err := storage.LedgerIndex()
	if err != nil {
		return err
	}

	blockStore.ReplaceSolidEntryPoints(solidEntryPoints)
	pruningIndex := ledgerIndex
	for _, milestone := range milestones {
		blockStore.AddMilestone(milestone)
		blockStore.AddSolidEntryPoint(milestone.BlockID, milestone.Index)
		if milestone.Index <= pruningIndex {
			pruningIndex = milestone.Index - 1
		}
	}
	blockStore.SetConfirmedMilestoneIndex(ledgerIndex)
	blockStore.SetSolidMilestoneIndex(ledgerIndex)
	blockStore.SetPruningIndex(pruningIndex)
	blockStore.UpdateEntryPointIndex(pruningIndex)

	log.Infof("Loaded the tangle state: ledger index %d, pruning index %d, %d milestones "+
		"and %d solid entry points", ledgerIndex, pruningIndex, len(milestones), len(solidEntryPoints))
	return nil
}
