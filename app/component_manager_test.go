package app

import (
	"testing"

	"github.com/tanglenet/tangled/domain/consensus"
	"github.com/tanglenet/tangled/domain/dagconfig"
	"github.com/tanglenet/tangled/infrastructure/config"
	"github.com/tanglenet/tangled/infrastructure/db/database/ldb"
)

func TestComponentManagerStartStop(t *testing.T) {
	db, err := ldb.NewMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewMemoryLevelDB: %+v", err)
	}
	defer db.Close()

	cfg := &config.Config{
		Flags:           &config.Flags{MetricsListen: "127.0.0.1:0"},
		ConsensusConfig: consensus.DefaultConfig(&dagconfig.SimnetParams),
	}
	componentManager, err := NewComponentManager(cfg, db)
	if err != nil {
		t.Fatalf("NewComponentManager: %+v", err)
	}
	componentManager.Start()
	componentManager.Start()

	if componentManager.Consensus().SolidMilestoneIndex() != 0 {
		t.Fatalf("a fresh node should start at milestone 0, got %d",
			componentManager.Consensus().SolidMilestoneIndex())
	}

	componentManager.Stop()
	// A second Stop must not close the events channel twice
	componentManager.Stop()
}

func TestDatabaseVersion(t *testing.T) {
	dbPath := t.TempDir()

	doesVersionFileExist, err := checkDatabaseVersion(dbPath)
	if err != nil {
		t.Fatalf("checkDatabaseVersion: %+v", err)
	}
	if doesVersionFileExist {
		t.Fatalf("a new database shouldn't have a version file")
	}

	err = createDatabaseVersionFile(dbPath)
	if err != nil {
		t.Fatalf("createDatabaseVersionFile: %+v", err)
	}
	doesVersionFileExist, err = checkDatabaseVersion(dbPath)
	if err != nil {
		t.Fatalf("checkDatabaseVersion: %+v", err)
	}
	if !doesVersionFileExist {
		t.Fatalf("the version file wasn't found after it was created")
	}
}
