package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RiseVision/rise-node/infrastructure/config"
	infrastructuredatabase "github.com/RiseVision/rise-node/infrastructure/db/database"
	"github.com/RiseVision/rise-node/infrastructure/db/database/ldb"
	"github.com/RiseVision/rise-node/infrastructure/logger"
	"github.com/RiseVision/rise-node/infrastructure/os/signal"
	"github.com/RiseVision/rise-node/util/panics"
	"github.com/RiseVision/rise-node/util/profiling"
	"github.com/RiseVision/rise-node/version"
)

const (
	leveldbCacheSizeMiB = 256
	defaultDataDirname  = "ledger"
)

type risedApp struct {
	cfg *config.Config
}

// StartApp starts the rised app, and blocks until it finishes running
func StartApp() error {
	// Load configuration and parse command line.
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	logger.InitLog(cfg.LogFile(), cfg.ErrLogFile())
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, "MAIN", nil)

	app := &risedApp{cfg: cfg}
	return app.main(nil)
}

func (app *risedApp) main(startedChan chan<- struct{}) error {
	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as the snapshot verification.
	interrupt := signal.InterruptListener()
	defer log.Info("Shutdown complete")

	// Show version at startup.
	log.Infof("Version %s", version.Version())

	// Enable http profiling server if requested.
	if app.cfg.Profile != "" {
		profiling.Start(app.cfg.Profile, log)
	}

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

	// Return now if an interrupt signal was triggered.
	if signal.InterruptRequested(interrupt) {
		return nil
	}

	// Create componentManager and start it.
	componentManager, err := NewComponentManager(app.cfg, databaseContext, standalonePeers{}, standalonePeers{},
		signal.ShutdownRequestChannel)
	if err != nil {
		log.Errorf("Unable to start rised: %+v", err)
		return err
	}

	defer func() {
		log.Infof("Gracefully shutting down rised...")
		componentManager.Stop()
	}()

	err = componentManager.Start()
	if err != nil {
		log.Errorf("Unable to start rised: %+v", err)
		return err
	}

	if startedChan != nil {
		startedChan <- struct{}{}
	}

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems.
	<-interrupt
	return nil
}

// dbPath returns the path to the ledger database
func dbPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, defaultDataDirname)
}

func openDB(cfg *config.Config) (infrastructuredatabase.Database, error) {
	path := dbPath(cfg)

	isNew, err := ensureDatabaseVersion(path)
	if err != nil {
		return nil, err
	}

	log.Infof("Loading database from '%s'", path)
	db, err := ldb.NewLevelDB(path, leveldbCacheSizeMiB)
	if err != nil {
		return nil, err
	}
	if isNew {
		err = createDatabaseVersionFile(path)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
