package transactionpool

import (
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/infrastructure/logger"
)

// FillPool moves transactions into the unconfirmed queue until it holds a
// block's worth: first up to five multisignature transactions with enough
// co-signatures, then queued transactions, both oldest first. The moved
// transactions get their unconfirmed effects applied. It does nothing
// while the node is syncing.
func (tp *TransactionPool) FillPool() error {
	if tp.appState.IsSyncing() {
		log.Debugf("Not filling the pool while syncing")
		return nil
	}

	onEnd := logger.LogAndMeasureExecutionTime(log, "FillPool")
	defer onEnd()

	transactionIDs := tp.moveToUnconfirmed()
	if len(transactionIDs) == 0 {
		return nil
	}
	log.Debugf("Filling the pool with %d transactions", len(transactionIDs))
	return tp.ApplyUnconfirmedList(transactionIDs)
}

func (tp *TransactionPool) moveToUnconfirmed() []string {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	spare := tp.config.MaxTxsPerBlock - tp.unconfirmed.count()
	if spare <= 0 {
		return nil
	}

	multisignatureLimit := spare
	if multisignatureLimit > maxMultisignatureTransactionsPerFill {
		multisignatureLimit = maxMultisignatureTransactionsPerFill
	}
	selected := tp.multisignature.oldest(multisignatureLimit, func(entry *poolTransaction) bool {
		ready, err := tp.ledger.TransactionReady(model.NewStagingArea(), entry.transaction)
		if err != nil {
			log.Debugf("Cannot check the co-signatures of transaction %s: %s", entry.transaction.ID, err)
			return false
		}
		return ready
	})
	for _, entry := range selected {
		tp.multisignature.remove(entry.transaction.ID)
		tp.unconfirmed.add(entry)
	}

	queued := tp.queued.oldest(spare-len(selected), nil)
	for _, entry := range queued {
		tp.queued.remove(entry.transaction.ID)
		tp.unconfirmed.add(entry)
	}

	transactionIDs := make([]string, 0, len(selected)+len(queued))
	for _, entry := range append(selected, queued...) {
		transactionIDs = append(transactionIDs, entry.transaction.ID)
	}
	return transactionIDs
}
