package transactionpool

import (
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// ApplyUnconfirmedList verifies each unconfirmed transaction of the given
// ids and applies its unconfirmed effects. A transaction that fails either
// step is evicted, and the rest are still applied. Ids no longer in the
// unconfirmed queue are skipped.
func (tp *TransactionPool) ApplyUnconfirmedList(transactionIDs []string) error {
	for _, transactionID := range transactionIDs {
		transaction, ok := tp.unconfirmedTransaction(transactionID)
		if !ok {
			continue
		}

		err := tp.applyUnconfirmed(transaction)
		if err != nil {
			log.Infof("Evicting unconfirmed transaction %s: %s", transactionID, err)
			tp.RemoveTransaction(transactionID)
		}
	}
	return nil
}

func (tp *TransactionPool) applyUnconfirmed(transaction *externalapi.DomainTransaction) error {
	err := tp.ProcessVerifyTransaction(transaction, false)
	if err != nil {
		return err
	}

	stagingArea := model.NewStagingArea()
	ready, err := tp.ledger.TransactionReady(stagingArea, transaction)
	if err != nil {
		return err
	}
	if !ready {
		return tp.moveBackToMultisignature(transaction)
	}

	err = tp.ledger.ApplyUnconfirmedTransaction(stagingArea, transaction)
	if err != nil {
		return err
	}
	return tp.ledger.CommitStagingArea(stagingArea)
}

// moveBackToMultisignature returns a transaction that still lacks
// co-signatures to the multisignature queue
func (tp *TransactionPool) moveBackToMultisignature(transaction *externalapi.DomainTransaction) error {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	entry, ok := tp.unconfirmed.remove(transaction.ID)
	if !ok {
		return nil
	}
	if tp.multisignature.count() >= tp.config.MaxTxsPerQueue {
		return poolRuleError(ErrPoolFull, "cannot return transaction %s to the multisignature queue",
			transaction.ID)
	}
	tp.multisignature.add(entry)
	log.Debugf("Transaction %s lacks co-signatures, returned to the multisignature queue", transaction.ID)
	return nil
}

func (tp *TransactionPool) unconfirmedTransaction(transactionID string) (*externalapi.DomainTransaction, bool) {
	tp.lock.RLock()
	defer tp.lock.RUnlock()

	entry, ok := tp.unconfirmed.get(transactionID)
	if !ok {
		return nil, false
	}
	return entry.transaction, true
}

// UndoUnconfirmedList stages the reversal of the unconfirmed effects of
// every unconfirmed transaction, in insertion order, and returns the ids
// it undid. The queue itself is left untouched. Transactions whose undo
// fails are evicted, the sweep goes on, and they are reported together
// as a *model.UndoUnconfirmedError next to the undone ids.
func (tp *TransactionPool) UndoUnconfirmedList(stagingArea *model.StagingArea) ([]string, error) {
	tp.lock.RLock()
	entries := append([]*poolTransaction(nil), tp.unconfirmed.entries...)
	tp.lock.RUnlock()

	transactionIDs := make([]string, 0, len(entries))
	undoErr := &model.UndoUnconfirmedError{}
	for _, entry := range entries {
		transaction := entry.transaction
		err := tp.ledger.UndoUnconfirmedTransaction(stagingArea, transaction)
		if err != nil {
			undoErr.TransactionIDs = append(undoErr.TransactionIDs, transaction.ID)
			undoErr.Errors = append(undoErr.Errors, err)
			continue
		}
		transactionIDs = append(transactionIDs, transaction.ID)
	}

	if len(undoErr.TransactionIDs) == 0 {
		return transactionIDs, nil
	}
	for _, transactionID := range undoErr.TransactionIDs {
		tp.RemoveTransaction(transactionID)
	}
	return transactionIDs, errors.WithStack(undoErr)
}

// undoAndRemove reverses the unconfirmed effects of the given unconfirmed
// transactions and evicts them
func (tp *TransactionPool) undoAndRemove(transactions []*externalapi.DomainTransaction) error {
	stagingArea := model.NewStagingArea()
	for _, transaction := range transactions {
		err := tp.ledger.UndoUnconfirmedTransaction(stagingArea, transaction)
		if err != nil {
			return errors.Wrapf(err, "cannot undo unconfirmed transaction %s", transaction.ID)
		}
	}
	err := tp.ledger.CommitStagingArea(stagingArea)
	if err != nil {
		return err
	}

	tp.lock.Lock()
	defer tp.lock.Unlock()
	for _, transaction := range transactions {
		tp.unconfirmed.remove(transaction.ID)
	}
	return nil
}
