package consensus_test

import (
	"os"
	"testing"

	"github.com/tanglenet/tangled/domain/consensus"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
	"github.com/tanglenet/tangled/domain/consensus/utils/consensushashing"
	"github.com/tanglenet/tangled/domain/consensus/utils/testutils"
	"github.com/tanglenet/tangled/domain/dagconfig"
	"github.com/tanglenet/tangled/infrastructure/db/database/ldb"
)

func TestRestart(t *testing.T) {
	dataDir, err := os.MkdirTemp("", "TestRestart")
	if err != nil {
		t.Fatalf("MkdirTemp: %+v", err)
	}
	defer os.RemoveAll(dataDir)

	config := consensus.DefaultConfig(&dagconfig.SimnetParams)
	factory := consensus.NewFactory()
	start := func() (tc consensus.Consensus, closeDB func()) {
		db, err := ldb.NewLevelDB(dataDir, 8)
		if err != nil {
			t.Fatalf("NewLevelDB: %+v", err)
		}
		c, err := factory.NewConsensus(config, db, &testutils.RequestRecorder{}, nil)
		if err != nil {
			t.Fatalf("NewConsensus: %+v", err)
		}
		return c, func() {
			err := db.Close()
			if err != nil {
				t.Fatalf("Close: %+v", err)
			}
		}
	}

	owner := testutils.KeyPairFromSeed(t, 0x50)
	tc, closeDB := start()
	c := &coordinator{
		t:        t,
		tc:       tc,
		builder:  testutils.NewTangleBuilder(t, nil),
		keyPairs: testutils.CoordinatorKeyPairs(t)[:config.MilestonePublicKeyCount],
	}
	x := c.submit([]externalapi.BlockID{genesis}, nil)
	firstMilestone, firstMilestoneID := c.issueMilestone(1, []externalapi.BlockID{x},
		[]externalapi.BlockID{x}, nil, migrationReceipt(testutils.AddressOf(owner), 700))
	tc.Stop()
	if tc.ConfirmedMilestoneIndex() != 1 {
		t.Fatalf("expected milestone 1 to be confirmed, the confirmed index is %d", tc.ConfirmedMilestoneIndex())
	}
	commitment, err := tc.LedgerStateCommitment()
	if err != nil {
		t.Fatalf("LedgerStateCommitment: %+v", err)
	}
	closeDB()

	tc, closeDB = start()
	defer closeDB()
	c.tc = tc
	if tc.ConfirmedMilestoneIndex() != 1 || tc.SolidMilestoneIndex() != 1 {
		t.Fatalf("expected the restarted node to be at milestone 1, it's at %d/%d",
			tc.ConfirmedMilestoneIndex(), tc.SolidMilestoneIndex())
	}
	restoredCommitment, err := tc.LedgerStateCommitment()
	if err != nil {
		t.Fatalf("LedgerStateCommitment: %+v", err)
	}
	if string(restoredCommitment) != string(commitment) {
		t.Fatalf("the ledger commitment changed over a restart")
	}
	if !tc.IsSolid(firstMilestone) {
		t.Fatalf("the last milestone block isn't a solid entry point after a restart")
	}
	if _, ok := tc.Milestone(1); !ok {
		t.Fatalf("milestone 1 wasn't restored")
	}

	transfer := testutils.NewTransfer(t, config.NetworkID,
		[]*testutils.Spend{{OutputID: consensushashing.ReceiptOutputID(firstMilestoneID, 0), KeyPair: owner}},
		[]*externalapi.Output{{Address: externalapi.Address{0x05}, Amount: 700}})
	transferBlock := c.submit([]externalapi.BlockID{firstMilestone}, transfer)
	c.issueMilestone(2, []externalapi.BlockID{transferBlock}, []externalapi.BlockID{transferBlock},
		[]externalapi.BlockID{transferBlock}, nil)
	tc.Stop()

	if tc.ConfirmedMilestoneIndex() != 2 {
		t.Fatalf("expected milestone 2 to be confirmed after the restart, the confirmed index is %d",
			tc.ConfirmedMilestoneIndex())
	}
	metadata := mustMetadata(t, tc, transferBlock)
	if metadata.MilestoneIndex != 2 || metadata.ConflictReason != 0 {
		t.Fatalf("unexpected metadata of the transfer: %s", metadata)
	}
}
