package confirmer

import (
	"sync"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
	"github.com/tanglenet/tangled/domain/consensus/utils/ledgercommitment"
	"github.com/tanglenet/tangled/infrastructure/logger"
)

// confirmer applies milestones to the ledger in strict index order
type confirmer struct {
	blockStore       model.BlockStore
	storage          model.StorageBackend
	whiteFlag        model.WhiteFlagOrderer
	coneIndexUpdater model.ConeIndexUpdater
	eventSink        model.EventSink

	mtx        sync.Mutex
	tangleLock *sync.RWMutex
}

// New instantiates a new LedgerConfirmer. tangleLock is held for reading
// during a whole confirmation, pruning holds it for writing.
func New(blockStore model.BlockStore, storage model.StorageBackend, whiteFlag model.WhiteFlagOrderer,
	coneIndexUpdater model.ConeIndexUpdater, eventSink model.EventSink,
	tangleLock *sync.RWMutex) model.LedgerConfirmer {

	return &confirmer{
		blockStore:       blockStore,
		storage:          storage,
		whiteFlag:        whiteFlag,
		coneIndexUpdater: coneIndexUpdater,
		eventSink:        eventSink,
		tangleLock:       tangleLock,
	}
}

// ConfirmMilestone confirms the milestone with the given index. The index
// must directly follow the confirmed milestone index. The ledger is written
// in a single batch; the tangle metadata is updated only after the batch was
// committed.
func (c *confirmer) ConfirmMilestone(index externalapi.MilestoneIndex) (*model.WhiteFlagMetadata, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "confirmer.ConfirmMilestone")
	defer onEnd()

	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.tangleLock.RLock()
	defer c.tangleLock.RUnlock()

	confirmedIndex := c.blockStore.ConfirmedMilestoneIndex()
	if index != confirmedIndex+1 {
		return nil, ruleerrors.Fatalf(ruleerrors.ErrMilestoneIndexOutOfOrder,
			"can't confirm milestone %d while the confirmed milestone index is %d", index, confirmedIndex)
	}
	milestone, ok := c.blockStore.Milestone(index)
	if !ok {
		return nil, ruleerrors.Fatalf(ruleerrors.ErrMilestoneNotFound, "milestone %d is unknown", index)
	}

	metadata, err := c.whiteFlag.Confirm(milestone)
	if err != nil {
		return nil, err
	}
	err = checkMerkleRoots(milestone, metadata)
	if err != nil {
		return nil, err
	}

	batch, err := c.confirmationBatch(milestone, metadata)
	if err != nil {
		return nil, err
	}
	err = c.storage.CommitConfirmation(batch)
	if err != nil {
		return nil, err
	}

	c.updateBlockMetadata(metadata)
	_, err = c.coneIndexUpdater.UpdateConeIndexes(milestone)
	if err != nil {
		return nil, err
	}
	c.blockStore.SetConfirmedMilestoneIndex(index)

	log.Infof("Confirmed milestone %d: %d referenced, %d included, %d conflicting, %d without a transaction",
		index, len(metadata.ReferencedBlocks), len(metadata.IncludedBlocks),
		len(metadata.ExcludedConflictingBlocks), len(metadata.ExcludedNoTransactionBlocks))
	c.eventSink.Emit(&externalapi.MilestoneConfirmed{
		Index:               index,
		Timestamp:           milestone.Timestamp,
		Referenced:          len(metadata.ReferencedBlocks),
		ExcludedNoTx:        len(metadata.ExcludedNoTransactionBlocks),
		ExcludedConflicting: len(metadata.ExcludedConflictingBlocks),
		Included:            len(metadata.IncludedBlocks),
		CreatedOutputs:      len(metadata.CreatedOutputs),
		ConsumedOutputs:     len(metadata.ConsumedOutputs),
	})
	return metadata, nil
}

func checkMerkleRoots(milestone *externalapi.Milestone, metadata *model.WhiteFlagMetadata) error {
	if metadata.InclusionMerkleRoot != milestone.Payload.InclusionMerkleRoot {
		return ruleerrors.Fatalf(ruleerrors.ErrInclusionMerkleRootMismatch,
			"milestone %d declares inclusion Merkle root %x but its cone computes to %x",
			milestone.Index, milestone.Payload.InclusionMerkleRoot, metadata.InclusionMerkleRoot)
	}
	if metadata.AppliedMerkleRoot != milestone.Payload.AppliedMerkleRoot {
		return ruleerrors.Fatalf(ruleerrors.ErrAppliedMerkleRootMismatch,
			"milestone %d declares applied Merkle root %x but its cone computes to %x",
			milestone.Index, milestone.Payload.AppliedMerkleRoot, metadata.AppliedMerkleRoot)
	}
	return nil
}

func (c *confirmer) confirmationBatch(milestone *externalapi.Milestone,
	metadata *model.WhiteFlagMetadata) (*model.ConfirmationBatch, error) {

	createdOutputs := metadata.SortedCreatedOutputs()
	consumedOutputs := metadata.SortedConsumedOutputs()

	commitmentBytes, err := c.storage.LedgerStateCommitment()
	if err != nil {
		return nil, err
	}
	commitment, err := ledgercommitment.FromBytes(commitmentBytes)
	if err != nil {
		return nil, err
	}
	err = commitment.Apply(createdOutputs, consumedOutputs)
	if err != nil {
		return nil, err
	}

	return &model.ConfirmationBatch{
		Milestone:             milestone,
		CreatedOutputs:        createdOutputs,
		ConsumedOutputs:       consumedOutputs,
		Receipt:               milestone.Payload.Receipt,
		SpentTreasuryOutput:   metadata.SpentTreasuryOutput,
		CreatedTreasuryOutput: metadata.CreatedTreasuryOutput,
		LedgerStateCommitment: commitment.Serialize(),
	}, nil
}

func (c *confirmer) updateBlockMetadata(metadata *model.WhiteFlagMetadata) {
	setFlags := func(blockIDs []externalapi.BlockID, flags model.BlockFlags) {
		for _, blockID := range blockIDs {
			c.blockStore.UpdateMetadata(blockID, func(blockMetadata *model.BlockMetadata) {
				blockMetadata.SetFlags(flags)
			})
		}
	}

	for _, blockID := range metadata.ReferencedBlocks {
		c.blockStore.UpdateMetadata(blockID, func(blockMetadata *model.BlockMetadata) {
			blockMetadata.SetFlags(model.FlagReferenced)
			blockMetadata.MilestoneIndex = metadata.MilestoneIndex
		})
	}
	setFlags(metadata.IncludedBlocks, model.FlagIncluded)
	setFlags(metadata.ExcludedNoTransactionBlocks, model.FlagNoTransaction)
	for _, conflicting := range metadata.ExcludedConflictingBlocks {
		conflictReason := conflicting.ConflictReason
		c.blockStore.UpdateMetadata(conflicting.BlockID, func(blockMetadata *model.BlockMetadata) {
			blockMetadata.SetFlags(model.FlagConflictingTransaction)
			blockMetadata.ConflictReason = conflictReason
		})
	}
}
