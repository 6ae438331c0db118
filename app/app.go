package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/infrastructure/config"
	infrastructuredatabase "github.com/tanglenet/tangled/infrastructure/db/database"
	"github.com/tanglenet/tangled/infrastructure/db/database/ldb"
	"github.com/tanglenet/tangled/infrastructure/logger"
	"github.com/tanglenet/tangled/infrastructure/os/signal"
	"github.com/tanglenet/tangled/util/panics"
	"github.com/tanglenet/tangled/util/profiling"
	"github.com/tanglenet/tangled/version"
)

const (
	databaseDirname      = "database"
	databaseCacheSizeMiB = 256
)

type tangledApp struct {
	cfg *config.Config
}

// StartApp starts the tangled app, and blocks until it finishes running
func StartApp() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Special show command to list supported subsystems and exit.
	if cfg.LogLevel == "show" {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		os.Exit(0)
	}

	// Initialize log rotation. After log rotation has been initialized, the
	// logger variables may be used.
	logger.InitLog(filepath.Join(cfg.LogDir, config.DefaultLogFilename),
		filepath.Join(cfg.LogDir, config.DefaultErrLogFilename))
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, "MAIN", nil)

	// Parse, validate, and set debug log level(s).
	err = logger.ParseAndSetLogLevels(cfg.LogLevel)
	if err != nil {
		log.Errorf("Error parsing the log level: %s", err)
		return err
	}

	app := &tangledApp{cfg: cfg}
	return app.main()
}

func (app *tangledApp) main() error {
	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as the RPC server.
	interrupt := signal.InterruptListener()
	defer log.Info("Shutdown complete")

	// Show version at startup.
	log.Infof("Version %s", version.Version())

	// Enable http profiling server if requested.
	if app.cfg.Profile != "" {
		profiling.Start(app.cfg.Profile, log)
	}

	// Return now if an interrupt signal was triggered.
	if signal.InterruptRequested(interrupt) {
		return nil
	}

	if app.cfg.ResetDatabase {
		err := removeDatabase(app.cfg)
		if err != nil {
			log.Error(err)
			return err
		}
	}

	// Open the database
	databaseContext, err := openDB(app.cfg)
	if err != nil {
		log.Errorf("Loading database failed: %+v", err)
		return err
	}

	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := databaseContext.Close()
		if err != nil {
			log.Errorf("Failed to close the database: %s", err)
		}
	}()

	// Create componentManager and start it.
	componentManager, err := NewComponentManager(app.cfg, databaseContext)
	if err != nil {
		log.Errorf("Unable to start tangled: %+v", err)
		return err
	}

	defer func() {
		log.Infof("Gracefully shutting down tangled...")
		componentManager.Stop()
		log.Infof("Tangled shutdown complete")
	}()

	componentManager.Start()

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems such as the RPC
	// server.
	<-interrupt
	return nil
}

// databasePath returns the path to the database of the active network
func databasePath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir(), databaseDirname)
}

func removeDatabase(cfg *config.Config) error {
	dbPath := databasePath(cfg)
	log.Infof("Removing the database at %s", dbPath)
	return errors.WithStack(os.RemoveAll(dbPath))
}

func openDB(cfg *config.Config) (infrastructuredatabase.Database, error) {
	dbPath := databasePath(cfg)

	isExistingDatabase, err := checkDatabaseVersion(dbPath)
	if err != nil {
		return nil, err
	}

	log.Infof("Loading database from '%s'", dbPath)
	db, err := ldb.NewLevelDB(dbPath, databaseCacheSizeMiB)
	if err != nil {
		return nil, err
	}

	if !isExistingDatabase {
		err = createDatabaseVersionFile(dbPath)
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
