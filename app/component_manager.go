package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/RiseVision/rise-node/app/loader"
	"github.com/RiseVision/rise-node/domain/appstate"
	"github.com/RiseVision/rise-node/domain/consensus"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/miningmanager"
	"github.com/RiseVision/rise-node/domain/miningmanager/forger"
	"github.com/RiseVision/rise-node/infrastructure/config"
	infrastructuredatabase "github.com/RiseVision/rise-node/infrastructure/db/database"
	"github.com/RiseVision/rise-node/util/jobs"
)

const (
	snapshotWatchJobName  = "snapshotWatch"
	snapshotWatchInterval = time.Second
)

// ComponentManager is a wrapper for all the rised services
type ComponentManager struct {
	cfg           *config.Config
	appState      *appstate.State
	consensus     consensus.Consensus
	miningManager miningmanager.MiningManager
	forger        *forger.Forger
	loader        *loader.Loader
	scheduler     *jobs.Scheduler

	shutdownRequest   chan<- struct{}
	started, shutdown int32
}

// NewComponentManager returns a new ComponentManager instance.
// Use Start() to begin all services within this ComponentManager
func NewComponentManager(cfg *config.Config, db infrastructuredatabase.Database, peers loader.PeerProvider,
	fetcher loader.BlockFetcher, shutdownRequest chan<- struct{}) (*ComponentManager, error) {

	appState := appstate.New()
	consensusConfig := &consensus.Config{
		Params:        cfg.NetParams(),
		SnapshotRound: cfg.SnapshotRound,
		AppState:      appState,
	}
	consensusInstance, err := consensus.NewFactory().NewConsensus(consensusConfig, db)
	if err != nil {
		return nil, err
	}

	miningManager := miningmanager.NewFactory().NewMiningManager(consensusInstance, cfg.TransactionPoolConfig())
	consensusInstance.OnRoundFinished(func(round uint64, block *externalapi.DomainBlock) {
		log.Infof("Round %d finished at height %d", round, block.Height)
	})

	return &ComponentManager{
		cfg:             cfg,
		appState:        appState,
		consensus:       consensusInstance,
		miningManager:   miningManager,
		forger:          forger.New(consensusInstance, miningManager, cfg.ForgingKeyPairs),
		loader:          loader.New(loader.DefaultConfig(cfg.NetParams()), consensusInstance, peers, fetcher),
		scheduler:       jobs.NewScheduler(),
		shutdownRequest: shutdownRequest,
	}, nil
}

// Start loads the ledger and launches all the rised services.
func (a *ComponentManager) Start() error {
	// Already started?
	if atomic.AddInt32(&a.started, 1) != 1 {
		return nil
	}

	log.Trace("Starting rised")

	err := a.consensus.Init()
	if err != nil {
		return err
	}
	a.appState.SetLoaded(true)

	err = a.miningManager.TransactionPool().RegisterJobs(a.scheduler, a.consensus.ChainSequence())
	if err != nil {
		return err
	}
	err = a.loader.RegisterJob(a.scheduler)
	if err != nil {
		return err
	}
	err = a.forger.RegisterJob(a.scheduler)
	if err != nil {
		return err
	}
	if a.cfg.SnapshotRound > 0 {
		log.Infof("Verifying the ledger up to round %d", a.cfg.SnapshotRound)
		return a.scheduler.Register(snapshotWatchJobName, snapshotWatchInterval, snapshotWatchInterval,
			a.watchSnapshot)
	}
	return nil
}

// watchSnapshot requests a shutdown once the snapshot round closed
func (a *ComponentManager) watchSnapshot(_ context.Context) error {
	if !a.appState.CleanupRequested() {
		return nil
	}
	a.scheduler.Unregister(snapshotWatchJobName)

	commitment, err := a.consensus.AccountsCommitment()
	if err != nil {
		return err
	}
	log.Infof("Snapshot of round %d verified, accounts commitment %s", a.cfg.SnapshotRound, commitment)
	spawn("ComponentManager.watchSnapshot-requestShutdown", func() {
		a.shutdownRequest <- struct{}{}
	})
	return nil
}

// Stop gracefully shuts down all the rised services.
func (a *ComponentManager) Stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&a.shutdown, 1) != 1 {
		log.Infof("Rised is already in the process of shutting down")
		return
	}

	log.Warnf("Rised shutting down")

	a.appState.RequestCleanup()
	a.scheduler.Stop()
	a.miningManager.TransactionPool().Stop()
	a.consensus.ChainSequence().Stop()
}

// Consensus returns the Consensus associated with this ComponentManager
func (a *ComponentManager) Consensus() consensus.Consensus {
	return a.consensus
}

// MiningManager returns the MiningManager associated with this ComponentManager
func (a *ComponentManager) MiningManager() miningmanager.MiningManager {
	return a.miningManager
}
