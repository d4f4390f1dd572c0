package consensus

import (
	"github.com/RiseVision/rise-node/domain/appstate"
	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/accountstore"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/blockstore"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/chainstatestore"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/roundstore"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/transactionstore"
	"github.com/RiseVision/rise-node/domain/consensus/processes/accountmanager"
	"github.com/RiseVision/rise-node/domain/consensus/processes/blockbuilder"
	"github.com/RiseVision/rise-node/domain/consensus/processes/blockvalidator"
	"github.com/RiseVision/rise-node/domain/consensus/processes/chainmanager"
	"github.com/RiseVision/rise-node/domain/consensus/processes/delegateorder"
	"github.com/RiseVision/rise-node/domain/consensus/processes/rewardschedule"
	"github.com/RiseVision/rise-node/domain/consensus/processes/roundmanager"
	"github.com/RiseVision/rise-node/domain/consensus/processes/transactionlogic"
	"github.com/RiseVision/rise-node/domain/consensus/transactiontypes"
	"github.com/RiseVision/rise-node/domain/consensus/utils/slots"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	infrastructuredatabase "github.com/RiseVision/rise-node/infrastructure/db/database"
	"github.com/RiseVision/rise-node/util/sequence"
	"github.com/pkg/errors"
)

// Config is the configuration of a single Consensus instance
type Config struct {
	Params *dposconfig.Params

	// SnapshotRound stops the chain once the given round closes. Zero
	// disables it.
	SnapshotRound uint64

	// AppState is shared with the other components of the node. A nil
	// AppState is replaced by a fresh one.
	AppState *appstate.State

	// FatalHandler is called when the ledger can no longer be proven
	// consistent. A nil FatalHandler exits the process.
	FatalHandler chainmanager.FatalHandler
}

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(config *Config, db infrastructuredatabase.Database) (Consensus, error)
	NewTestConsensus(config *Config, db infrastructuredatabase.Database) (TestConsensus, error)
}

type factory struct{}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus
func (f *factory) NewConsensus(config *Config, db infrastructuredatabase.Database) (Consensus, error) {
	return f.newConsensus(config, db)
}

// NewTestConsensus instantiates a new Consensus that exposes its internal
// processes and stores
func (f *factory) NewTestConsensus(config *Config, db infrastructuredatabase.Database) (TestConsensus, error) {
	c, err := f.newConsensus(config, db)
	if err != nil {
		return nil, err
	}
	return &testConsensus{consensus: c}, nil
}

func (f *factory) newConsensus(config *Config, db infrastructuredatabase.Database) (*consensus, error) {
	params := config.Params
	err := params.Validate()
	if err != nil {
		return nil, err
	}
	appState := config.AppState
	if appState == nil {
		appState = appstate.New()
	}

	dbManager := database.New(db)

	// Data Structures
	accountStore, err := accountstore.New(dbManager)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open the account store")
	}
	blockStore := blockstore.New()
	transactionStore := transactionstore.New()
	roundStore := roundstore.New()
	chainStateStore := chainstatestore.New()

	// Processes
	slotsCalculator := slots.New(params.Epoch, params.BlockTime, params.ActiveDelegates)
	accountManager := accountmanager.New(dbManager, accountStore)
	rewardSchedule := rewardschedule.New(params.TotalAmount, params.RewardMilestones)
	delegateManager := delegateorder.New(
		dbManager,
		params.ActiveDelegates,
		slotsCalculator,
		accountStore)
	registry, err := transactiontypes.New(params, accountManager)
	if err != nil {
		return nil, err
	}
	transactionLogic := transactionlogic.New(
		params,
		dbManager,
		slotsCalculator,
		registry,
		accountManager,
		transactionStore)
	roundManager := roundmanager.New(
		dbManager,
		params.ActiveDelegates,
		config.SnapshotRound,
		appState,
		delegateManager,
		accountManager,
		roundStore,
		chainStateStore,
		blockStore,
		transactionStore)

	pool := &poolProxy{}
	chainManager := chainmanager.New(
		params,
		dbManager,
		config.FatalHandler,
		transactionLogic,
		accountManager,
		roundManager,
		delegateManager,
		pool,
		blockStore,
		transactionStore,
		chainStateStore)
	blockBuilder := blockbuilder.New(
		params,
		transactionLogic,
		rewardSchedule)
	blockValidator := blockvalidator.New(
		params,
		slotsCalculator,
		dbManager,
		transactionLogic,
		accountManager,
		delegateManager,
		rewardSchedule)

	return &consensus{
		params:          params,
		databaseContext: dbManager,
		appState:        appState,
		chainSequence:   sequence.New("chain"),
		slots:           slotsCalculator,
		pool:            pool,

		transactionLogic: transactionLogic,
		accountManager:   accountManager,
		delegateManager:  delegateManager,
		roundManager:     roundManager,
		rewardSchedule:   rewardSchedule,
		chainManager:     chainManager,
		blockBuilder:     blockBuilder,
		blockValidator:   blockValidator,

		blockStore:       blockStore,
		transactionStore: transactionStore,
		chainStateStore:  chainStateStore,
	}, nil
}
