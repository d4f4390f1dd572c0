package transactionpool

import (
	"context"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
)

// ReceiveTransactions admits transactions submitted through the API or
// relayed by peers. Each one must not be known yet. Bundled transactions
// are queued unverified and verified when released by ProcessBundled, the
// rest are verified first. Admission stops at the first rejected
// transaction.
func (tp *TransactionPool) ReceiveTransactions(ctx context.Context, transactions []*externalapi.DomainTransaction,
	broadcast bool, bundled bool) error {

	return tp.balancesSequence.AddAndWait(ctx, func() error {
		for _, transaction := range transactions {
			err := tp.receiveTransaction(transaction, broadcast, bundled)
			if err != nil {
				log.Debugf("Rejected transaction %s: %s", transaction.ID, err)
				return err
			}
		}
		return nil
	})
}

func (tp *TransactionPool) receiveTransaction(transaction *externalapi.DomainTransaction,
	broadcast bool, bundled bool) error {

	err := tp.checkDuplicate(transaction)
	if err != nil {
		return err
	}
	if bundled {
		return tp.QueueTransaction(transaction, true)
	}

	err = tp.ProcessVerifyTransaction(transaction, broadcast)
	if err != nil {
		return err
	}
	return tp.QueueTransaction(transaction, false)
}

// ProcessBundled releases up to BundleReleaseLimit of the oldest bundled
// transactions: each one is verified and queued, or dropped if invalid
func (tp *TransactionPool) ProcessBundled() error {
	tp.lock.Lock()
	released := tp.bundled.oldest(tp.config.BundleReleaseLimit, nil)
	for _, entry := range released {
		tp.bundled.remove(entry.transaction.ID)
	}
	tp.lock.Unlock()

	for _, entry := range released {
		transaction := entry.transaction
		confirmed, err := tp.ledger.IsTransactionConfirmed(transaction.ID)
		if err != nil {
			return err
		}
		if confirmed {
			log.Debugf("Dropping bundled transaction %s: already confirmed", transaction.ID)
			continue
		}

		err = tp.ProcessVerifyTransaction(transaction, true)
		if err != nil {
			log.Debugf("Dropping bundled transaction %s: %s", transaction.ID, err)
			continue
		}
		err = tp.QueueTransaction(transaction, false)
		if err != nil {
			log.Debugf("Dropping bundled transaction %s: %s", transaction.ID, err)
		}
	}
	return nil
}
