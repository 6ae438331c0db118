package confirmer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/datastructures/blockstore"
	"github.com/tanglenet/tangled/domain/consensus/datastructures/ledgerstore"
	"github.com/tanglenet/tangled/domain/consensus/model"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/processes/coneindexupdater"
	"github.com/tanglenet/tangled/domain/consensus/processes/confirmer"
	"github.com/tanglenet/tangled/domain/consensus/processes/dagtraversalmanager"
	"github.com/tanglenet/tangled/domain/consensus/processes/pruningmanager"
	"github.com/tanglenet/tangled/domain/consensus/processes/whiteflag"
	"github.com/tanglenet/tangled/domain/consensus/ruleerrors"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
	"github.com/tanglenet/tangled/domain/consensus/utils/merkle"
	"github.com/tanglenet/tangled/domain/consensus/utils/testutils"
	"github.com/tanglenet/tangled/domain/dagconfig"
	"github.com/tanglenet/tangled/infrastructure/db/database/ldb"
)

var genesisOutputID = externalapi.OutputID{TransactionID: externalapi.TransactionID{0x01}}

type testContext struct {
	blockStore model.BlockStore
	storage    model.StorageBackend
	builder    *testutils.TangleBuilder
	events     *testutils.EventRecorder
	tangleLock *sync.RWMutex
	confirmer  model.LedgerConfirmer
}

func newTestContext(t *testing.T, owner externalapi.Address) (*testContext, func()) {
	db, err := ldb.NewMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewMemoryLevelDB: %+v", err)
	}
	storage, err := ledgerstore.New(db, 16)
	if err != nil {
		t.Fatalf("ledgerstore.New: %+v", err)
	}
	err = storage.InitializeLedger(&model.LedgerSnapshot{
		Outputs: []*externalapi.LedgerOutput{{
			OutputID: genesisOutputID,
			Output:   &externalapi.Output{Address: owner, Amount: 1000},
		}},
		SolidEntryPoints: []*model.SolidEntryPoint{{BlockID: dagconfig.GenesisSolidEntryPoint}},
	})
	if err != nil {
		t.Fatalf("InitializeLedger: %+v", err)
	}

	blockStore := blockstore.New()
	blockStore.AddSolidEntryPoint(dagconfig.GenesisSolidEntryPoint, 0)
	tc := &testContext{
		blockStore: blockStore,
		storage:    storage,
		builder:    testutils.NewTangleBuilder(t, blockStore),
		events:     &testutils.EventRecorder{},
		tangleLock: &sync.RWMutex{},
	}
	tc.confirmer = tc.newConfirmer(blockStore)
	return tc, func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	}
}

// newConfirmer builds a confirmer whose processes read the tangle through
// blockStore.
func (tc *testContext) newConfirmer(blockStore model.BlockStore) model.LedgerConfirmer {
	dagTraversalManager := dagtraversalmanager.New(blockStore)
	return confirmer.New(blockStore, tc.storage,
		whiteflag.New(blockStore, tc.storage, dagTraversalManager),
		coneindexupdater.New(blockStore, dagTraversalManager), tc.events, tc.tangleLock)
}

// registerMilestone adds a milestone over parents whose Merkle roots are the
// ones white-flag computes when every parent but the conflicting ones is
// included.
func (tc *testContext) registerMilestone(t *testing.T, index externalapi.MilestoneIndex,
	parents []externalapi.BlockID, included []externalapi.BlockID) *externalapi.Milestone {

	payload := &externalapi.MilestonePayload{
		Index:               index,
		Timestamp:           uint32(index),
		Parents:             parents,
		InclusionMerkleRoot: merkle.CalculateRootHash(parents),
		AppliedMerkleRoot:   merkle.CalculateRootHash(included),
	}
	milestoneID, err := consensushashing.MilestoneID(payload)
	if err != nil {
		t.Fatalf("MilestoneID: %+v", err)
	}
	blockID := tc.builder.AddBlock(parents, payload)
	milestone := &externalapi.Milestone{
		Index:       index,
		MilestoneID: milestoneID,
		BlockID:     blockID,
		Timestamp:   payload.Timestamp,
		Payload:     payload,
	}
	tc.blockStore.AddMilestone(milestone)
	return milestone
}

func TestConfirmMilestone(t *testing.T) {
	owner := testutils.KeyPairFromSeed(t, 0x10)
	tc, teardown := newTestContext(t, testutils.AddressOf(owner))
	defer teardown()

	transfer := testutils.NewTransfer(t, 0, []*testutils.Spend{{OutputID: genesisOutputID, KeyPair: owner}},
		[]*externalapi.Output{{Address: externalapi.Address{0x99}, Amount: 1000}})
	transferBlock := tc.builder.AddBlock([]externalapi.BlockID{dagconfig.GenesisSolidEntryPoint}, transfer)
	parents := []externalapi.BlockID{transferBlock}
	milestone := tc.registerMilestone(t, 1, parents, parents)

	commitmentBefore, err := tc.storage.LedgerStateCommitment()
	if err != nil {
		t.Fatalf("LedgerStateCommitment: %+v", err)
	}

	_, err = tc.confirmer.ConfirmMilestone(1)
	if err != nil {
		t.Fatalf("ConfirmMilestone: %+v", err)
	}

	ledgerIndex, err := tc.storage.LedgerIndex()
	if err != nil {
		t.Fatalf("LedgerIndex: %+v", err)
	}
	if ledgerIndex != 1 || tc.blockStore.ConfirmedMilestoneIndex() != 1 {
		t.Fatalf("expected the ledger and confirmed index to be 1, got %d and %d",
			ledgerIndex, tc.blockStore.ConfirmedMilestoneIndex())
	}
	isUnspent, err := tc.storage.IsOutputUnspent(genesisOutputID)
	if err != nil {
		t.Fatalf("IsOutputUnspent: %+v", err)
	}
	if isUnspent {
		t.Fatalf("the spent genesis output is still unspent")
	}
	isUnspent, err = tc.storage.IsOutputUnspent(testutils.OutputIDOf(t, transfer, 0))
	if err != nil {
		t.Fatalf("IsOutputUnspent: %+v", err)
	}
	if !isUnspent {
		t.Fatalf("the created output isn't unspent")
	}
	commitmentAfter, err := tc.storage.LedgerStateCommitment()
	if err != nil {
		t.Fatalf("LedgerStateCommitment: %+v", err)
	}
	if string(commitmentBefore) == string(commitmentAfter) {
		t.Fatalf("the ledger commitment didn't change")
	}

	metadata, _ := tc.blockStore.Metadata(transferBlock)
	if !metadata.Flags.Has(model.FlagReferenced|model.FlagIncluded) || metadata.MilestoneIndex != 1 {
		t.Fatalf("unexpected metadata of the included block: %s", metadata)
	}
	metadata, _ = tc.blockStore.Metadata(milestone.BlockID)
	if !metadata.Flags.Has(model.FlagReferenced | model.FlagNoTransaction) {
		t.Fatalf("unexpected metadata of the milestone block: %s", metadata)
	}

	confirmed := tc.events.MilestonesConfirmed()
	if len(confirmed) != 1 || confirmed[0].Included != 1 || confirmed[0].Referenced != 2 {
		t.Fatalf("unexpected MilestoneConfirmed events: %+v", confirmed)
	}

	_, err = tc.confirmer.ConfirmMilestone(1)
	if !errors.Is(err, ruleerrors.ErrMilestoneIndexOutOfOrder) {
		t.Fatalf("expected ErrMilestoneIndexOutOfOrder when confirming twice, got %+v", err)
	}
}

func TestConfirmMilestoneOutOfOrder(t *testing.T) {
	tc, teardown := newTestContext(t, externalapi.Address{})
	defer teardown()

	_, err := tc.confirmer.ConfirmMilestone(2)
	if !errors.Is(err, ruleerrors.ErrMilestoneIndexOutOfOrder) {
		t.Fatalf("expected ErrMilestoneIndexOutOfOrder, got %+v", err)
	}
	_, err = tc.confirmer.ConfirmMilestone(1)
	if !errors.Is(err, ruleerrors.ErrMilestoneNotFound) {
		t.Fatalf("expected ErrMilestoneNotFound, got %+v", err)
	}
}

func TestConfirmMilestoneMerkleRootMismatch(t *testing.T) {
	tc, teardown := newTestContext(t, externalapi.Address{})
	defer teardown()

	block := tc.builder.AddBlock([]externalapi.BlockID{dagconfig.GenesisSolidEntryPoint}, nil)
	tc.registerMilestone(t, 1, []externalapi.BlockID{block}, []externalapi.BlockID{block})

	_, err := tc.confirmer.ConfirmMilestone(1)
	if !errors.Is(err, ruleerrors.ErrAppliedMerkleRootMismatch) {
		t.Fatalf("expected ErrAppliedMerkleRootMismatch, got %+v", err)
	}
	if tc.blockStore.ConfirmedMilestoneIndex() != 0 {
		t.Fatalf("a failed confirmation advanced the confirmed index")
	}
	ledgerIndex, err := tc.storage.LedgerIndex()
	if err != nil {
		t.Fatalf("LedgerIndex: %+v", err)
	}
	if ledgerIndex != 0 {
		t.Fatalf("a failed confirmation was committed")
	}
}

// lookupHookStore runs onLookup once, the first time the metadata of
// trigger is read while armed.
type lookupHookStore struct {
	model.BlockStore
	trigger  externalapi.BlockID
	armed    bool
	once     sync.Once
	onLookup func()
}

func (s *lookupHookStore) Metadata(blockID externalapi.BlockID) (*model.BlockMetadata, bool) {
	if s.armed && blockID == s.trigger {
		s.once.Do(s.onLookup)
	}
	return s.BlockStore.Metadata(blockID)
}

func TestPruneWaitsForConfirmation(t *testing.T) {
	tc, teardown := newTestContext(t, externalapi.Address{})
	defer teardown()

	hookStore := &lookupHookStore{BlockStore: tc.blockStore}
	ledgerConfirmer := tc.newConfirmer(hookStore)
	pruningManager := pruningmanager.New(tc.blockStore, tc.storage, dagtraversalmanager.New(tc.blockStore),
		tc.events, 2, 0, 0, tc.tangleLock)

	// Every milestone references one plain block over the previous
	// milestone block.
	parent := dagconfig.GenesisSolidEntryPoint
	var referencedBlocks []externalapi.BlockID
	for index := externalapi.MilestoneIndex(1); index <= 5; index++ {
		block := tc.builder.AddBlock([]externalapi.BlockID{parent}, nil)
		milestone := tc.registerMilestone(t, index, []externalapi.BlockID{block}, nil)
		_, err := ledgerConfirmer.ConfirmMilestone(index)
		if err != nil {
			t.Fatalf("ConfirmMilestone(%d): %+v", index, err)
		}
		referencedBlocks = append(referencedBlocks, block)
		parent = milestone.BlockID
	}

	// A late block approving the block referenced by milestone 2, which
	// becomes a solid entry point once milestone 3 is pruned.
	lateParent := referencedBlocks[1]
	late := tc.builder.AddBlock([]externalapi.BlockID{lateParent}, nil)
	tc.registerMilestone(t, 6, []externalapi.BlockID{late}, nil)

	pruneStarted := make(chan struct{})
	pruneDone := make(chan error, 1)
	hookStore.trigger = lateParent
	hookStore.onLookup = func() {
		go func() {
			close(pruneStarted)
			pruneDone <- pruningManager.Prune(3)
		}()
		<-pruneStarted
		time.Sleep(20 * time.Millisecond)
	}
	hookStore.armed = true

	_, err := ledgerConfirmer.ConfirmMilestone(6)
	if err != nil {
		t.Fatalf("a confirmation failed while pruning was requested: %+v", err)
	}
	select {
	case <-pruneStarted:
	default:
		t.Fatalf("the confirmation never read the metadata of %s", lateParent)
	}

	select {
	case err := <-pruneDone:
		if err != nil {
			t.Fatalf("Prune: %+v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("pruning didn't resume after the confirmation")
	}
	if tc.blockStore.PruningIndex() != 3 || tc.blockStore.ConfirmedMilestoneIndex() != 6 {
		t.Fatalf("expected pruning index 3 and confirmed index 6, got %d and %d",
			tc.blockStore.PruningIndex(), tc.blockStore.ConfirmedMilestoneIndex())
	}
	if !tc.blockStore.IsSolidEntryPoint(lateParent) {
		t.Fatalf("the block approved by the late block isn't a solid entry point after pruning")
	}
}
