package ledgerstore

import (
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/serialization"
	"github.com/tanglenet/tangled/infrastructure/db/database"
)

func (ls *ledgerStore) Milestones() ([]*externalapi.Milestone, error) {
	cursor, err := ls.db.Cursor(milestonesBucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var milestones []*externalapi.Milestone
	for ok := cursor.First(); ok; ok = cursor.Next() {
		milestoneBytes, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		milestone, err := serialization.BytesToMilestone(milestoneBytes)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, milestone)
	}
	return milestones, nil
}

// Receipt returns the receipt stored by the milestone with the given index.
func (ls *ledgerStore) Receipt(index externalapi.MilestoneIndex) (*externalapi.Receipt, bool, error) {
	receiptBytes, err := ls.db.Get(receiptKey(index))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	receipt, err := serialization.BytesToReceipt(receiptBytes)
	if err != nil {
		return nil, false, err
	}
	return receipt, true, nil
}

func (ls *ledgerStore) PruneMilestone(index externalapi.MilestoneIndex) error {
	spentBucketOfIndex := spentByMilestoneBucket.Bucket(serialization.MilestoneIndexToBytes(index))
	cursor, err := ls.db.Cursor(spentBucketOfIndex)
	if err != nil {
		return err
	}
	var prunedOutputIDs []externalapi.OutputID
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			cursor.Close()
			return err
		}
		outputID, err := externalapi.NewOutputIDFromBytes(key.Suffix())
		if err != nil {
			cursor.Close()
			return err
		}
		prunedOutputIDs = append(prunedOutputIDs, outputID)
	}
	err = cursor.Close()
	if err != nil {
		return err
	}

	dbTx, err := ls.db.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	for _, outputID := range prunedOutputIDs {
		for _, key := range []*database.Key{
			outputKey(outputsBucket, outputID),
			outputKey(spentBucket, outputID),
			spentByMilestoneKey(index, outputID),
		} {
			err = dbTx.Delete(key)
			if err != nil {
				return err
			}
		}
	}
	err = dbTx.Delete(milestoneKey(index))
	if err != nil {
		return err
	}
	err = dbTx.Delete(receiptKey(index))
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}

	for _, outputID := range prunedOutputIDs {
		ls.outputCache.Remove(outputID)
	}
	log.Debugf("Pruned milestone %d from the ledger along with %d spent outputs",
		index, len(prunedOutputIDs))
	return nil
}

func (ls *ledgerStore) StoreSolidEntryPoints(solidEntryPoints []*model.SolidEntryPoint) error {
	dbTx, err := ls.db.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	cursor, err := dbTx.Cursor(solidEntryPointsBucket)
	if err != nil {
		return err
	}
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			cursor.Close()
			return err
		}
		err = dbTx.Delete(key)
		if err != nil {
			cursor.Close()
			return err
		}
	}
	err = cursor.Close()
	if err != nil {
		return err
	}

	for _, solidEntryPoint := range solidEntryPoints {
		err = putSolidEntryPoint(dbTx, solidEntryPoint)
		if err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

func putSolidEntryPoint(dbTx database.Transaction, solidEntryPoint *model.SolidEntryPoint) error {
	solidEntryPointBytes, err := serialization.SolidEntryPointToBytes(solidEntryPoint)
	if err != nil {
		return err
	}
	return dbTx.Put(solidEntryPointsBucket.Key(solidEntryPoint.BlockID[:]), solidEntryPointBytes)
}

func (ls *ledgerStore) SolidEntryPoints() ([]*model.SolidEntryPoint, error) {
	cursor, err := ls.db.Cursor(solidEntryPointsBucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var solidEntryPoints []*model.SolidEntryPoint
	for ok := cursor.First(); ok; ok = cursor.Next() {
		solidEntryPointBytes, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		solidEntryPoint, err := serialization.BytesToSolidEntryPoint(solidEntryPointBytes)
		if err != nil {
			return nil, err
		}
		solidEntryPoints = append(solidEntryPoints, solidEntryPoint)
	}
	return solidEntryPoints, nil
}
