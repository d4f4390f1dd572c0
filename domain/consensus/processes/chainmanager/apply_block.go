package chainmanager

import (
	"encoding/hex"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/infrastructure/logger"
	"github.com/pkg/errors"
)

// ApplyBlock applies a verified block on top of the chain tip. A
// transaction the ledger cannot take unconfirmed rejects the whole block
// and leaves the ledger untouched. Once they are taken, failing to apply
// them is fatal.
func (cm *chainManager) ApplyBlock(block *externalapi.DomainBlock, saveBlock bool) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ApplyBlock")
	defer onEnd()

	stagingArea := model.NewStagingArea()

	unconfirmedIDs, err := cm.undoUnconfirmedList(stagingArea)
	if err != nil {
		return err
	}

	for _, transaction := range block.Transactions {
		sender, err := cm.accountManager.GetOrCreateByPublicKey(stagingArea, transaction.SenderPublicKey)
		if err != nil {
			return err
		}
		err = cm.transactionLogic.ApplyUnconfirmed(stagingArea, transaction, sender)
		if err != nil {
			return errors.Wrapf(err, "block %s: transaction %s", block.ID, transaction.ID)
		}
	}

	for _, transaction := range block.Transactions {
		sender, err := cm.accountManager.AccountByPublicKey(stagingArea, transaction.SenderPublicKey)
		if err != nil {
			return cm.fatal(err, "cannot load the sender of transaction %s", transaction.ID)
		}
		err = cm.transactionLogic.Apply(stagingArea, transaction, block, sender)
		if err != nil {
			return cm.fatal(err, "failed to apply transaction %s of block %s", transaction.ID, block.ID)
		}
	}

	var hooks []model.AfterSaveHook
	if saveBlock {
		hooks, err = cm.SaveBlock(stagingArea, block)
		if err != nil {
			return cm.fatal(err, "failed to save block %s", block.ID)
		}
	}
	cm.chainStateStore.StageTip(stagingArea, block.ID)

	err = cm.commit(stagingArea)
	if err != nil {
		return cm.fatal(err, "failed to commit block %s", block.ID)
	}
	for _, transaction := range block.Transactions {
		cm.pool.RemoveTransaction(transaction.ID)
	}
	runAfterSaveHooks(block, hooks)

	err = cm.tick(block)
	if err != nil {
		return err
	}

	err = cm.pool.ApplyUnconfirmedList(unconfirmedIDs)
	if err != nil {
		log.Warnf("Failed to reapply the unconfirmed transactions after block %s: %s", block.ID, err)
	}

	log.Debugf("Applied block %s at height %d with %d transactions", block.ID, block.Height,
		len(block.Transactions))
	return nil
}

// tick runs and commits the round processing of block, the chain tip
func (cm *chainManager) tick(block *externalapi.DomainBlock) error {
	stagingArea := model.NewStagingArea()
	err := cm.roundManager.Tick(stagingArea, block)
	if err != nil {
		return cm.fatal(err, "failed to tick block %s", block.ID)
	}
	err = cm.commit(stagingArea)
	if err != nil {
		return cm.fatal(err, "failed to commit the tick of block %s", block.ID)
	}
	if cm.roundManager.IsRoundFinishing(block.Height) {
		cm.delegateManager.ClearCache()
	}
	return nil
}

// ApplyGenesisBlock credits the genesis allocations, registers the
// genesis delegates with the votes of the genesis account and stores
// block as the first block of the chain
func (cm *chainManager) ApplyGenesisBlock(block *externalapi.DomainBlock) error {
	genesis := cm.params.Genesis
	stagingArea := model.NewStagingArea()

	_, err := cm.accountManager.GetOrCreateByPublicKey(stagingArea, genesis.AccountPublicKey)
	if err != nil {
		return err
	}
	for _, allocation := range genesis.Allocations {
		_, err = cm.accountManager.Merge(stagingArea, allocation.Address, &model.AccountDiff{
			Balance:            int64(allocation.Balance),
			UnconfirmedBalance: int64(allocation.Balance),
		})
		if err != nil {
			return errors.Wrapf(err, "cannot credit the genesis allocation of %s", allocation.Address)
		}
	}

	votes := make([]string, 0, len(genesis.Delegates))
	for _, genesisDelegate := range genesis.Delegates {
		delegate, err := cm.accountManager.GetOrCreateByPublicKey(stagingArea, genesisDelegate.PublicKey)
		if err != nil {
			return err
		}
		delegate.IsDelegate = true
		delegate.Username = genesisDelegate.Username
		cm.accountManager.Save(stagingArea, delegate)
		votes = append(votes, hex.EncodeToString(delegate.PublicKey))
	}

	account, err := cm.accountManager.AccountByPublicKey(stagingArea, genesis.AccountPublicKey)
	if err != nil {
		return err
	}
	if uint64(len(votes)) > uint64(cm.params.MaxVotesPerAccount) {
		votes = votes[:cm.params.MaxVotesPerAccount]
	}
	account.Votes = sortedCopy(votes)
	account.UnconfirmedVotes = sortedCopy(votes)
	cm.accountManager.Save(stagingArea, account)

	hooks, err := cm.SaveBlock(stagingArea, block)
	if err != nil {
		return err
	}
	cm.chainStateStore.StageTip(stagingArea, block.ID)
	err = cm.commit(stagingArea)
	if err != nil {
		return err
	}
	runAfterSaveHooks(block, hooks)

	log.Infof("Applied the genesis block %s: %d allocations, %d delegates", block.ID,
		len(genesis.Allocations), len(genesis.Delegates))
	return cm.tick(block)
}

// RecoverTick completes the round processing of the chain tip if the
// node stopped before it was committed
func (cm *chainManager) RecoverTick() error {
	stagingArea := model.NewStagingArea()
	hasTip, err := cm.chainStateStore.HasTip(cm.databaseContext, stagingArea)
	if err != nil || !hasTip {
		return err
	}
	tickHeight, err := cm.chainStateStore.TickHeight(cm.databaseContext, stagingArea)
	if err != nil {
		return err
	}
	lastBlock, err := cm.LastBlock(stagingArea)
	if err != nil {
		return err
	}
	if tickHeight >= lastBlock.Height {
		return nil
	}

	log.Warnf("The round processing of block %s at height %d was interrupted, running it again",
		lastBlock.ID, lastBlock.Height)
	return cm.tick(lastBlock)
}
