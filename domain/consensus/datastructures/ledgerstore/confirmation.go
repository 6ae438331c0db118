package ledgerstore

import (
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/utils/serialization"
)

// CommitConfirmation writes everything a confirmation produced in a single
// database transaction.
func (ls *ledgerStore) CommitConfirmation(batch *model.ConfirmationBatch) error {
	milestone := batch.Milestone
	dbTx, err := ls.db.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	currentIndex, err := ledgerIndex(dbTx)
	if err != nil {
		return err
	}
	if milestone.Index != currentIndex+1 {
		return errors.Errorf("cannot commit milestone %d on top of ledger index %d",
			milestone.Index, currentIndex)
	}

	for _, output := range batch.CreatedOutputs {
		err = putUnspentOutput(dbTx, output)
		if err != nil {
			return err
		}
	}
	for _, consumed := range batch.ConsumedOutputs {
		outputID := consumed.OutputID()
		// Outputs created and consumed by the same milestone were only
		// just staged above.
		err = dbTx.Delete(outputKey(unspentBucket, outputID))
		if err != nil {
			return err
		}
		spentBytes, err := serialization.SpentRecordToBytes(consumed)
		if err != nil {
			return err
		}
		err = dbTx.Put(outputKey(spentBucket, outputID), spentBytes)
		if err != nil {
			return err
		}
		err = dbTx.Put(spentByMilestoneKey(milestone.Index, outputID), []byte{})
		if err != nil {
			return err
		}
	}

	milestoneBytes, err := serialization.MilestoneToBytes(milestone)
	if err != nil {
		return err
	}
	err = dbTx.Put(milestoneKey(milestone.Index), milestoneBytes)
	if err != nil {
		return err
	}

	if batch.Receipt != nil {
		receiptBytes, err := serialization.ReceiptToBytes(batch.Receipt)
		if err != nil {
			return err
		}
		err = dbTx.Put(receiptKey(milestone.Index), receiptBytes)
		if err != nil {
			return err
		}
	}
	if batch.SpentTreasuryOutput != nil {
		spent := *batch.SpentTreasuryOutput
		spent.Spent = true
		err = putTreasuryOutput(dbTx, &spent)
		if err != nil {
			return err
		}
		err = dbTx.Delete(unspentTreasuryKey)
		if err != nil {
			return err
		}
	}
	if batch.CreatedTreasuryOutput != nil {
		err = putUnspentTreasuryOutput(dbTx, batch.CreatedTreasuryOutput)
		if err != nil {
			return err
		}
	}

	err = dbTx.Put(ledgerIndexKey, serialization.MilestoneIndexToBytes(milestone.Index))
	if err != nil {
		return err
	}
	err = dbTx.Put(ledgerCommitmentKey, batch.LedgerStateCommitment)
	if err != nil {
		return err
	}

	err = dbTx.Commit()
	if err != nil {
		return err
	}

	for _, output := range batch.CreatedOutputs {
		ls.outputCache.Add(output.OutputID, output)
	}
	log.Debugf("Committed milestone %d to the ledger: %d created, %d consumed",
		milestone.Index, len(batch.CreatedOutputs), len(batch.ConsumedOutputs))
	return nil
}
