package chainmanager

import (
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// PopLastBlock reverts block, the chain tip, and returns its previous
// block as the new tip. Any failure to revert is fatal.
func (cm *chainManager) PopLastBlock(block *externalapi.DomainBlock) (*externalapi.DomainBlock, error) {
	stagingArea := model.NewStagingArea()

	previousBlock, err := cm.LoadBlock(stagingArea, block.PreviousBlock)
	if err != nil {
		return nil, cm.fatal(err, "cannot load the previous block %s of block %s", block.PreviousBlock, block.ID)
	}

	for i := len(block.Transactions) - 1; i >= 0; i-- {
		transaction := block.Transactions[i]
		sender, err := cm.accountManager.AccountByPublicKey(stagingArea, transaction.SenderPublicKey)
		if err != nil {
			return nil, cm.fatal(err, "cannot load the sender of transaction %s", transaction.ID)
		}
		err = cm.transactionLogic.Undo(stagingArea, transaction, block, sender)
		if err != nil {
			return nil, cm.fatal(err, "failed to undo transaction %s of block %s", transaction.ID, block.ID)
		}

		sender, err = cm.accountManager.AccountByPublicKey(stagingArea, transaction.SenderPublicKey)
		if err != nil {
			return nil, cm.fatal(err, "cannot load the sender of transaction %s", transaction.ID)
		}
		err = cm.transactionLogic.UndoUnconfirmed(stagingArea, transaction, sender)
		if err != nil {
			return nil, cm.fatal(err, "failed to undo unconfirmed transaction %s of block %s",
				transaction.ID, block.ID)
		}
	}

	err = cm.roundManager.BackwardTick(stagingArea, block, previousBlock)
	if err != nil {
		return nil, cm.fatal(err, "failed to tick block %s backwards", block.ID)
	}

	err = cm.DeleteBlock(stagingArea, block.ID)
	if err != nil {
		return nil, cm.fatal(err, "failed to delete block %s", block.ID)
	}
	cm.chainStateStore.StageTip(stagingArea, previousBlock.ID)

	err = cm.commit(stagingArea)
	if err != nil {
		return nil, cm.fatal(err, "failed to commit the removal of block %s", block.ID)
	}
	cm.delegateManager.ClearCache()

	log.Infof("Popped block %s at height %d, the tip is now %s", block.ID, block.Height, previousBlock.ID)
	return previousBlock, nil
}

// DeleteLastBlock pops the chain tip and returns its transactions to the
// pool
func (cm *chainManager) DeleteLastBlock() (*externalapi.DomainBlock, error) {
	lastBlock, err := cm.LastBlock(model.NewStagingArea())
	if err != nil {
		return nil, err
	}
	if lastBlock.Height <= 1 {
		return nil, errors.New("cannot delete the genesis block")
	}

	stagingArea := model.NewStagingArea()
	unconfirmedIDs, err := cm.undoUnconfirmedList(stagingArea)
	if err != nil {
		return nil, err
	}
	err = cm.commit(stagingArea)
	if err != nil {
		return nil, cm.fatal(err, "failed to commit the unconfirmed undo before popping %s", lastBlock.ID)
	}

	previousBlock, err := cm.PopLastBlock(lastBlock)
	if err != nil {
		return nil, err
	}

	for _, transaction := range lastBlock.Transactions {
		transaction.BlockID = ""
		transaction.Height = 0
		err = cm.pool.QueueTransaction(transaction, false)
		if err != nil {
			log.Debugf("Dropped transaction %s of popped block %s: %s", transaction.ID, lastBlock.ID, err)
		}
	}
	err = cm.pool.ApplyUnconfirmedList(unconfirmedIDs)
	if err != nil {
		log.Warnf("Failed to reapply the unconfirmed transactions after popping %s: %s", lastBlock.ID, err)
	}
	return previousBlock, nil
}
