package whiteflag

import (
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
	"github.com/tanglenet/tangled/domain/consensus/utils/merkle"
	"github.com/tanglenet/tangled/infrastructure/logger"
)

// whiteFlag linearizes the past cone of a milestone and computes the ledger
// mutations it implies
type whiteFlag struct {
	blockStore          model.BlockStore
	storage             model.StorageBackend
	dagTraversalManager model.DAGTraversalManager
}

// New instantiates a new WhiteFlagOrderer
func New(blockStore model.BlockStore, storage model.StorageBackend,
	dagTraversalManager model.DAGTraversalManager) model.WhiteFlagOrderer {

	return &whiteFlag{
		blockStore:          blockStore,
		storage:             storage,
		dagTraversalManager: dagTraversalManager,
	}
}

// Confirm walks the not yet referenced past cone of milestone depth first,
// parents before children, and applies every block it reaches in that
// order. The milestone block itself is applied last. Nothing is written:
// the returned metadata holds every mutation of the confirmation.
func (wf *whiteFlag) Confirm(milestone *externalapi.Milestone) (*model.WhiteFlagMetadata, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "whiteFlag.Confirm")
	defer onEnd()

	metadata := model.NewWhiteFlagMetadata(milestone)
	roots := append(externalapi.CloneBlockIDs(milestone.Payload.Parents), milestone.BlockID)
	walker := wf.dagTraversalManager.PastConeWalker(roots)

	var missingBlockIDs []externalapi.BlockID
	for walker.Next() {
		blockID, block := walker.Current()
		if block == nil {
			missingBlockIDs = append(missingBlockIDs, blockID)
			walker.Resolve(model.TraversalStop)
			continue
		}

		if wf.isPreviousMilestone(metadata, blockID, block) {
			metadata.PreviousMilestoneFound = true
		}

		blockMetadata, ok := wf.blockStore.Metadata(blockID)
		if ok && blockMetadata.IsReferenced() {
			walker.Resolve(model.TraversalStop)
			continue
		}
		if _, hasUnvisitedParent := walker.FirstUnvisitedParent(block); hasUnvisitedParent {
			walker.Resolve(model.TraversalDefer)
			continue
		}

		walker.Resolve(model.TraversalStop)
		if len(missingBlockIDs) > 0 {
			continue
		}
		err := wf.applyBlock(metadata, milestone, blockID, block)
		if err != nil {
			return nil, err
		}
	}
	if len(missingBlockIDs) > 0 {
		return nil, ruleerrors.NewErrMissingBlock(missingBlockIDs...)
	}

	for _, solidEntryPoint := range walker.SolidEntryPointsReached() {
		if wf.isPreviousMilestoneBlockID(metadata, solidEntryPoint) {
			metadata.PreviousMilestoneFound = true
		}
	}

	if !metadata.IsPartitioned() {
		return nil, ruleerrors.Fatalf(ruleerrors.ErrInvalidBlocksCount, "milestone %d referenced %d blocks "+
			"but included %d, excluded %d conflicting and %d without a transaction", milestone.Index,
			len(metadata.ReferencedBlocks), len(metadata.IncludedBlocks),
			len(metadata.ExcludedConflictingBlocks), len(metadata.ExcludedNoTransactionBlocks))
	}

	if milestone.Index > 1 && !metadata.PreviousMilestoneID.IsZero() && !metadata.PreviousMilestoneFound {
		return nil, ruleerrors.Fatalf(ruleerrors.ErrPreviousMilestoneNotFound, "milestone %d doesn't "+
			"reference the previous milestone %s", milestone.Index, metadata.PreviousMilestoneID)
	}

	metadata.InclusionMerkleRoot = merkle.CalculateRootHash(inclusionBlockIDs(metadata))
	metadata.AppliedMerkleRoot = merkle.CalculateRootHash(metadata.IncludedBlocks)

	log.Debugf("White-flag of milestone %d: %d referenced, %d included, %d conflicting, %d without a transaction",
		milestone.Index, len(metadata.ReferencedBlocks), len(metadata.IncludedBlocks),
		len(metadata.ExcludedConflictingBlocks), len(metadata.ExcludedNoTransactionBlocks))
	return metadata, nil
}

// inclusionBlockIDs returns the referenced blocks the inclusion Merkle root
// is computed over: all of them but the milestone block, which the issuer of
// the milestone can't know the id of.
func inclusionBlockIDs(metadata *model.WhiteFlagMetadata) []externalapi.BlockID {
	referenced := metadata.ReferencedBlocks
	if len(referenced) > 0 && referenced[len(referenced)-1] == metadata.MilestoneBlockID {
		return referenced[:len(referenced)-1]
	}
	return referenced
}

func (wf *whiteFlag) applyBlock(metadata *model.WhiteFlagMetadata, milestone *externalapi.Milestone,
	blockID externalapi.BlockID, block *externalapi.Block) error {

	metadata.ReferencedBlocks = append(metadata.ReferencedBlocks, blockID)

	transaction, isTransaction := block.Transaction()
	if !isTransaction {
		metadata.ExcludedNoTransactionBlocks = append(metadata.ExcludedNoTransactionBlocks, blockID)
		if blockID == milestone.BlockID && milestone.Payload.Receipt != nil {
			return wf.applyReceipt(metadata, milestone)
		}
		return nil
	}

	conflictReason, err := wf.applyTransaction(metadata, blockID, transaction)
	if err != nil {
		return err
	}
	if conflictReason != model.ConflictNone {
		log.Debugf("Block %s conflicts with the ledger: %s", blockID, conflictReason)
		metadata.ExcludedConflictingBlocks = append(metadata.ExcludedConflictingBlocks,
			&model.ConflictingBlock{BlockID: blockID, ConflictReason: conflictReason})
		return nil
	}
	metadata.IncludedBlocks = append(metadata.IncludedBlocks, blockID)
	return nil
}
