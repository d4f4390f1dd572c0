package transactionpool

import (
	"time"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
)

// expiry returns how long transaction may stay in the pool
func (tp *TransactionPool) expiry(transaction *externalapi.DomainTransaction) time.Duration {
	switch {
	case transaction.Type == externalapi.TransactionTypeMultisignature && transaction.Asset.Multisignature != nil:
		return time.Duration(transaction.Asset.Multisignature.Lifetime) * time.Hour
	case len(transaction.Signatures) > 0:
		return coSignedExpiryFactor * tp.config.DefaultExpiry
	default:
		return tp.config.DefaultExpiry
	}
}

// ExpireTransactions evicts every transaction older than its expiry.
// Expired unconfirmed transactions get their unconfirmed effects undone
// first, so it must run inside the chain sequence.
func (tp *TransactionPool) ExpireTransactions() error {
	now := tp.now()
	isExpired := func(entry *poolTransaction) bool {
		return now.Sub(entry.receivedAt) > tp.expiry(entry.transaction)
	}

	tp.lock.Lock()
	var expiredUnconfirmed []*externalapi.DomainTransaction
	for _, entry := range tp.unconfirmed.entries {
		if isExpired(entry) {
			expiredUnconfirmed = append(expiredUnconfirmed, entry.transaction)
		}
	}
	expired := 0
	for _, queue := range []*transactionQueue{tp.multisignature, tp.queued, tp.bundled} {
		for _, entry := range queue.oldest(queue.count(), isExpired) {
			queue.remove(entry.transaction.ID)
			log.Debugf("Expired transaction %s from the %s queue", entry.transaction.ID, queue.name)
			expired++
		}
	}
	tp.lock.Unlock()

	if len(expiredUnconfirmed) > 0 {
		err := tp.undoAndRemove(expiredUnconfirmed)
		if err != nil {
			return err
		}
		expired += len(expiredUnconfirmed)
	}
	if expired > 0 {
		log.Infof("Expired %d transactions", expired)
	}
	return nil
}
