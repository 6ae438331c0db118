package blockprocessor

import (
	"time"

	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/processes/blockprocessor/blocklogger"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
)

// blockProcessor is responsible for validating incoming blocks and
// inserting them into the tangle
type blockProcessor struct {
	blockStore     model.BlockStore
	blockValidator model.BlockValidator
	blockRequester model.BlockRequester
}

// New instantiates a new BlockProcessor
func New(blockStore model.BlockStore, blockValidator model.BlockValidator,
	blockRequester model.BlockRequester) model.BlockProcessor {

	return &blockProcessor{
		blockStore:     blockStore,
		blockValidator: blockValidator,
		blockRequester: blockRequester,
	}
}

// ProcessBlock validates block in isolation and inserts it. isNew is false
// if the block was already known. A rejected block is returned as a
// RuleError and isn't inserted.
func (bp *blockProcessor) ProcessBlock(block *externalapi.Block) (externalapi.BlockID, bool, error) {
	blockID, err := consensushashing.BlockID(block)
	if err != nil {
		return externalapi.BlockID{}, false, err
	}
	if bp.blockStore.Contains(blockID) || bp.blockStore.IsSolidEntryPoint(blockID) {
		return blockID, false, nil
	}

	err = bp.blockValidator.ValidateBlockInIsolation(block)
	if err != nil {
		if ruleerrors.IsRuleError(err) {
			log.Debugf("Block %s rejected: %s", blockID, err)
		}
		return blockID, false, err
	}

	metadata := model.NewBlockMetadata(time.Now())
	if bp.blockRequester.OnBlockArrived(blockID) {
		metadata.SetFlags(model.FlagRequested)
	}
	if !bp.blockStore.Insert(blockID, block, metadata) {
		return blockID, false, nil
	}

	log.Tracef("Block %s inserted", blockID)
	blocklogger.LogBlock(block)
	return blockID, true, nil
}
