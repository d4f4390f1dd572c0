package chainmanager

import (
	"fmt"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

// chainManager applies blocks to the ledger, persists them and reverts
// them again when the chain switches forks
type chainManager struct {
	params          *dposconfig.Params
	databaseContext model.DBManager
	fatalHandler    FatalHandler

	transactionLogic model.TransactionLogic
	accountManager   model.AccountManager
	roundManager     model.RoundManager
	delegateManager  model.DelegateManager
	pool             model.UnconfirmedPool

	blockStore       model.BlockStore
	transactionStore model.TransactionStore
	chainStateStore  model.ChainStateStore
}

// New instantiates a new ChainManager. A nil fatalHandler exits the
// process.
func New(
	params *dposconfig.Params,
	databaseContext model.DBManager,
	fatalHandler FatalHandler,

	transactionLogic model.TransactionLogic,
	accountManager model.AccountManager,
	roundManager model.RoundManager,
	delegateManager model.DelegateManager,
	pool model.UnconfirmedPool,

	blockStore model.BlockStore,
	transactionStore model.TransactionStore,
	chainStateStore model.ChainStateStore) model.ChainManager {

	if fatalHandler == nil {
		fatalHandler = defaultFatalHandler
	}
	return &chainManager{
		params:           params,
		databaseContext:  databaseContext,
		fatalHandler:     fatalHandler,
		transactionLogic: transactionLogic,
		accountManager:   accountManager,
		roundManager:     roundManager,
		delegateManager:  delegateManager,
		pool:             pool,
		blockStore:       blockStore,
		transactionStore: transactionStore,
		chainStateStore:  chainStateStore,
	}
}

// fatal reports err through the fatal handler and returns it for the case
// the handler returns
func (cm *chainManager) fatal(err error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	reason := fmt.Sprintf("%+v", wrapped)
	log.Criticalf("%s", reason)
	cm.fatalHandler(reason)
	return wrapped
}

// LoadBlock returns the stored block with the given id, its transactions
// included
func (cm *chainManager) LoadBlock(stagingArea *model.StagingArea, blockID string) (*externalapi.DomainBlock, error) {
	block, transactionIDs, err := cm.blockStore.Block(cm.databaseContext, stagingArea, blockID)
	if err != nil {
		return nil, err
	}

	block.Transactions = make([]*externalapi.DomainTransaction, len(transactionIDs))
	for i, transactionID := range transactionIDs {
		transaction, assetBytes, err := cm.transactionStore.Transaction(cm.databaseContext, stagingArea, transactionID)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot load transaction %s of block %s", transactionID, blockID)
		}
		if assetBytes != nil {
			err = cm.transactionLogic.DBRead(assetBytes, transaction)
			if err != nil {
				return nil, err
			}
		}
		block.Transactions[i] = transaction
	}
	return block, nil
}

// LastBlock returns the chain tip
func (cm *chainManager) LastBlock(stagingArea *model.StagingArea) (*externalapi.DomainBlock, error) {
	tip, err := cm.chainStateStore.Tip(cm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	return cm.LoadBlock(stagingArea, tip)
}

// SaveBlock stages block and its transactions. The returned hooks must
// run once the staging area is committed.
func (cm *chainManager) SaveBlock(stagingArea *model.StagingArea, block *externalapi.DomainBlock) (
	[]model.AfterSaveHook, error) {

	hooks := make([]model.AfterSaveHook, 0, len(block.Transactions))
	for _, transaction := range block.Transactions {
		transaction.BlockID = block.ID
		transaction.Height = block.Height

		assetBytes, err := cm.transactionLogic.DBSave(transaction)
		if err != nil {
			return nil, err
		}
		cm.transactionStore.Stage(stagingArea, transaction, assetBytes)

		saved := transaction
		hooks = append(hooks, func() error {
			return cm.transactionLogic.AfterSave(saved)
		})
	}
	cm.blockStore.Stage(stagingArea, block)
	return hooks, nil
}

// DeleteBlock stages the removal of a stored block together with its
// transactions
func (cm *chainManager) DeleteBlock(stagingArea *model.StagingArea, blockID string) error {
	block, transactionIDs, err := cm.blockStore.Block(cm.databaseContext, stagingArea, blockID)
	if err != nil {
		return err
	}
	for _, transactionID := range transactionIDs {
		transaction, _, err := cm.transactionStore.Transaction(cm.databaseContext, stagingArea, transactionID)
		if err != nil {
			return errors.Wrapf(err, "cannot delete transaction %s of block %s", transactionID, blockID)
		}
		cm.transactionStore.Delete(stagingArea, transactionID, transaction.Type)
	}
	cm.blockStore.Delete(stagingArea, blockID, block.Height)
	return nil
}

func runAfterSaveHooks(block *externalapi.DomainBlock, hooks []model.AfterSaveHook) {
	for _, hook := range hooks {
		err := hook()
		if err != nil {
			log.Warnf("After save hook of block %s failed: %s", block.ID, err)
		}
	}
}

func (cm *chainManager) commit(stagingArea *model.StagingArea) error {
	return model.CommitAllChanges(cm.databaseContext, stagingArea)
}
