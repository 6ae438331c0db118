package consensus

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/datastructures/blockstore"
	"github.com/tanglenet/tangled/domain/consensus/datastructures/keymanager"
	"github.com/tanglenet/tangled/domain/consensus/datastructures/ledgerstore"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/processes/blockprocessor"
	"github.com/tanglenet/tangled/domain/consensus/processes/blockrequester"
	"github.com/tanglenet/tangled/domain/consensus/processes/blockvalidator"
	"github.com/tanglenet/tangled/domain/consensus/processes/coneindexupdater"
	"github.com/tanglenet/tangled/domain/consensus/processes/confirmer"
	"github.com/tanglenet/tangled/domain/consensus/processes/dagtraversalmanager"
	"github.com/tanglenet/tangled/domain/consensus/processes/milestonesolidifier"
	"github.com/tanglenet/tangled/domain/consensus/processes/milestonevalidator"
	"github.com/tanglenet/tangled/domain/consensus/processes/propagator"
	"github.com/tanglenet/tangled/domain/consensus/processes/pruningmanager"
	"github.com/tanglenet/tangled/domain/consensus/processes/tippool"
	"github.com/tanglenet/tangled/domain/consensus/processes/whiteflag"
	infrastructuredatabase "github.com/tanglenet/tangled/infrastructure/db/database"
	"github.com/tanglenet/tangled/infrastructure/db/database/ldb"
)

const testDatabaseCacheSizeMiB = 8

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(config *Config, db infrastructuredatabase.Database, requestSink model.BlockRequestSink,
		consensusEventsChan chan externalapi.ConsensusEvent) (Consensus, error)
	NewTestConsensus(config *Config, testName string) (tc TestConsensus, teardown func(keepDataDir bool), err error)
}

type factory struct{}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus over db and starts its
// workers. Block and milestone requests go to requestSink, and events to
// consensusEventsChan, which may be nil.
func (f *factory) NewConsensus(config *Config, db infrastructuredatabase.Database, requestSink model.BlockRequestSink,
	consensusEventsChan chan externalapi.ConsensusEvent) (Consensus, error) {

	return f.newConsensus(config, db, requestSink, newChannelEventSink(consensusEventsChan))
}

func (f *factory) newConsensus(config *Config, db infrastructuredatabase.Database, requestSink model.BlockRequestSink,
	eventSink model.EventSink) (*consensus, error) {

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	// Data Structures
	blockStore := blockstore.New()
	keyManager := keymanager.New(config.MilestoneKeyRanges)
	storage, err := ledgerstore.New(db, config.OutputCacheSize)
	if err != nil {
		return nil, err
	}

	err = initializeLedgerIfNeeded(storage, &config.Params)
	if err != nil {
		return nil, err
	}
	err = loadTangleState(blockStore, storage)
	if err != nil {
		return nil, err
	}

	// Processes
	tangleLock := &sync.RWMutex{}
	dagTraversalManager := dagtraversalmanager.New(blockStore)
	blockValidator := blockvalidator.New(
		config.NetworkID,
		config.MinBlockParents,
		config.MaxBlockParents,
		config.MaxInputs,
		config.MaxOutputs,
		config.TokenSupply)
	blockRequester := blockrequester.New(requestSink, config.RequestTimeout)
	blockProcessor := blockprocessor.New(
		blockStore,
		blockValidator,
		blockRequester)
	milestoneValidator := milestonevalidator.New(
		config.MilestonePublicKeyCount,
		blockStore,
		keyManager)
	blockPropagator := propagator.New(blockStore, eventSink)
	whiteFlag := whiteflag.New(
		blockStore,
		storage,
		dagTraversalManager)
	coneIndexUpdater := coneindexupdater.New(blockStore, dagTraversalManager)
	ledgerConfirmer := confirmer.New(
		blockStore,
		storage,
		whiteFlag,
		coneIndexUpdater,
		eventSink,
		tangleLock)
	milestoneSolidifier := milestonesolidifier.New(
		blockStore,
		blockRequester,
		ledgerConfirmer,
		dagTraversalManager,
		eventSink,
		config.SyncWindow)
	tipPool := tippool.New(
		blockStore,
		config.MaxTips,
		config.BelowMaxDepth,
		config.TipSafetyThreshold,
		config.YMRSIDelta,
		config.OMRSIDelta)
	pruningManager := pruningmanager.New(
		blockStore,
		storage,
		dagTraversalManager,
		eventSink,
		config.BelowMaxDepth,
		config.PruningDelay,
		config.PruningInterval,
		tangleLock)

	c := &consensus{
		config:     config,
		blockStore: blockStore,
		storage:    storage,

		blockProcessor:      blockProcessor,
		milestoneValidator:  milestoneValidator,
		blockRequester:      blockRequester,
		propagator:          blockPropagator,
		milestoneSolidifier: milestoneSolidifier,
		whiteFlag:           whiteFlag,
		tipPool:             tipPool,
		pruningManager:      pruningManager,
		eventSink:           eventSink,
		tangleLock:          tangleLock,
	}
	c.startWorkers()
	return c, nil
}

// NewTestConsensus instantiates a Consensus over a fresh database in a
// temporary directory. teardown stops it and removes the directory unless
// keepDataDir is set.
func (f *factory) NewTestConsensus(config *Config, testName string) (
	tc TestConsensus, teardown func(keepDataDir bool), err error) {

	dataDir, err := os.MkdirTemp("", testName)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	db, err := ldb.NewLevelDB(dataDir, testDatabaseCacheSizeMiB)
	if err != nil {
		return nil, nil, err
	}

	requests := &requestLog{}
	events := &eventLog{}
	c, err := f.newConsensus(config, db, requests, events)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	testConsensus := &testConsensus{
		consensus: c,
		requests:  requests,
		events:    events,
	}
	teardown = func(keepDataDir bool) {
		c.Stop()
		err := db.Close()
		if err != nil {
			log.Errorf("Error closing the test database: %+v", err)
		}
		if !keepDataDir {
			err = os.RemoveAll(dataDir)
			if err != nil {
				log.Errorf("Error removing data directory for test consensus: %s", err)
			}
		}
	}
	return testConsensus, teardown, nil
}
