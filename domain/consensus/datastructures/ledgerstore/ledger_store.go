package ledgerstore

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/ledgercommitment"
	"github.com/tanglenet/tangled/domain/consensus/utils/serialization"
	"github.com/tanglenet/tangled/infrastructure/db/database"
)

var (
	outputsBucket          = database.MakeBucket([]byte("outputs"))
	unspentBucket          = database.MakeBucket([]byte("unspent"))
	spentBucket            = database.MakeBucket([]byte("spent"))
	spentByMilestoneBucket = database.MakeBucket([]byte("spent-by-milestone"))
	milestonesBucket       = database.MakeBucket([]byte("milestones"))
	receiptsBucket         = database.MakeBucket([]byte("receipts"))
	solidEntryPointsBucket = database.MakeBucket([]byte("solid-entry-points"))
	treasuryBucket         = database.MakeBucket([]byte("treasury"))

	ledgerIndexKey      = database.MakeBucket(nil).Key([]byte("ledger-index"))
	unspentTreasuryKey  = database.MakeBucket(nil).Key([]byte("unspent-treasury"))
	ledgerCommitmentKey = database.MakeBucket(nil).Key([]byte("ledger-commitment"))
)

// ledgerStore persists the ledger on top of a key-value database
type ledgerStore struct {
	db          database.Database
	outputCache *lru.Cache
}

// New instantiates a new StorageBackend
func New(db database.Database, outputCacheSize int) (model.StorageBackend, error) {
	outputCache, err := lru.New(outputCacheSize)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't create an output cache of size %d", outputCacheSize)
	}
	return &ledgerStore{
		db:          db,
		outputCache: outputCache,
	}, nil
}

func outputKey(bucket *database.Bucket, outputID externalapi.OutputID) *database.Key {
	return bucket.Key(outputID.Bytes())
}

func spentByMilestoneKey(index externalapi.MilestoneIndex, outputID externalapi.OutputID) *database.Key {
	return spentByMilestoneBucket.Bucket(serialization.MilestoneIndexToBytes(index)).Key(outputID.Bytes())
}

func milestoneKey(index externalapi.MilestoneIndex) *database.Key {
	return milestonesBucket.Key(serialization.MilestoneIndexToBytes(index))
}

func receiptKey(index externalapi.MilestoneIndex) *database.Key {
	return receiptsBucket.Key(serialization.MilestoneIndexToBytes(index))
}

func (ls *ledgerStore) FetchOutput(outputID externalapi.OutputID) (*externalapi.LedgerOutput, bool, error) {
	if output, ok := ls.outputCache.Get(outputID); ok {
		return output.(*externalapi.LedgerOutput), true, nil
	}

	outputBytes, err := ls.db.Get(outputKey(outputsBucket, outputID))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	output, err := serialization.BytesToLedgerOutput(outputBytes)
	if err != nil {
		return nil, false, err
	}
	ls.outputCache.Add(outputID, output)
	return output, true, nil
}

func (ls *ledgerStore) IsOutputUnspent(outputID externalapi.OutputID) (bool, error) {
	return ls.db.Has(outputKey(unspentBucket, outputID))
}

// ConsumedOutput returns the spent record of an output, if it was spent.
func (ls *ledgerStore) ConsumedOutput(outputID externalapi.OutputID) (*externalapi.ConsumedOutput, bool, error) {
	output, found, err := ls.FetchOutput(outputID)
	if err != nil || !found {
		return nil, false, err
	}
	spentBytes, err := ls.db.Get(outputKey(spentBucket, outputID))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	consumed, err := serialization.BytesToSpentRecord(spentBytes, output)
	if err != nil {
		return nil, false, err
	}
	return consumed, true, nil
}

func (ls *ledgerStore) UnspentTreasuryOutput() (*externalapi.TreasuryOutput, error) {
	milestoneIDBytes, err := ls.db.Get(unspentTreasuryKey)
	if database.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	treasuryBytes, err := ls.db.Get(treasuryBucket.Key(milestoneIDBytes))
	if err != nil {
		return nil, err
	}
	return serialization.BytesToTreasuryOutput(treasuryBytes)
}

func (ls *ledgerStore) LedgerIndex() (externalapi.MilestoneIndex, error) {
	return ledgerIndex(ls.db)
}

func ledgerIndex(dataAccessor database.DataAccessor) (externalapi.MilestoneIndex, error) {
	indexBytes, err := dataAccessor.Get(ledgerIndexKey)
	if database.IsNotFoundError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return serialization.BytesToMilestoneIndex(indexBytes)
}

func (ls *ledgerStore) LedgerStateCommitment() ([]byte, error) {
	commitment, err := ls.db.Get(ledgerCommitmentKey)
	if database.IsNotFoundError(err) {
		return nil, nil
	}
	return commitment, err
}

func (ls *ledgerStore) IsInitialized() (bool, error) {
	return ls.db.Has(ledgerIndexKey)
}

func (ls *ledgerStore) InitializeLedger(snapshot *model.LedgerSnapshot) error {
	isInitialized, err := ls.IsInitialized()
	if err != nil {
		return err
	}
	if isInitialized {
		return errors.New("cannot initialize an already initialized ledger")
	}

	commitmentBytes := snapshot.Commitment
	if commitmentBytes == nil {
		commitment := ledgercommitment.New()
		err = commitment.Apply(snapshot.Outputs, nil)
		if err != nil {
			return err
		}
		commitmentBytes = commitment.Serialize()
	}

	dbTx, err := ls.db.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	for _, output := range snapshot.Outputs {
		err = putUnspentOutput(dbTx, output)
		if err != nil {
			return err
		}
	}
	if snapshot.TreasuryOutput != nil {
		err = putUnspentTreasuryOutput(dbTx, snapshot.TreasuryOutput)
		if err != nil {
			return err
		}
	}
	for _, solidEntryPoint := range snapshot.SolidEntryPoints {
		err = putSolidEntryPoint(dbTx, solidEntryPoint)
		if err != nil {
			return err
		}
	}
	err = dbTx.Put(ledgerIndexKey, serialization.MilestoneIndexToBytes(snapshot.LedgerIndex))
	if err != nil {
		return err
	}
	err = dbTx.Put(ledgerCommitmentKey, commitmentBytes)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}
	log.Infof("Initialized the ledger at index %d with %d outputs",
		snapshot.LedgerIndex, len(snapshot.Outputs))
	return nil
}

func putUnspentOutput(dbTx database.Transaction, output *externalapi.LedgerOutput) error {
	outputBytes, err := serialization.LedgerOutputToBytes(output)
	if err != nil {
		return err
	}
	err = dbTx.Put(outputKey(outputsBucket, output.OutputID), outputBytes)
	if err != nil {
		return err
	}
	return dbTx.Put(outputKey(unspentBucket, output.OutputID), []byte{})
}

func putUnspentTreasuryOutput(dbTx database.Transaction, treasury *externalapi.TreasuryOutput) error {
	err := putTreasuryOutput(dbTx, treasury)
	if err != nil {
		return err
	}
	return dbTx.Put(unspentTreasuryKey, treasury.MilestoneID[:])
}

func putTreasuryOutput(dbTx database.Transaction, treasury *externalapi.TreasuryOutput) error {
	treasuryBytes, err := serialization.TreasuryOutputToBytes(treasury)
	if err != nil {
		return err
	}
	return dbTx.Put(treasuryBucket.Key(treasury.MilestoneID[:]), treasuryBytes)
}
