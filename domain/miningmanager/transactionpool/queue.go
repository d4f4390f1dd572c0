package transactionpool

import (
	"time"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
)

// queueName identifies one of the pool's four queues
type queueName string

const (
	queueBundled        queueName = "bundled"
	queueQueued         queueName = "queued"
	queueMultisignature queueName = "multisignature"
	queueUnconfirmed    queueName = "unconfirmed"
)

type poolTransaction struct {
	transaction *externalapi.DomainTransaction
	receivedAt  time.Time
}

// transactionQueue holds transactions in insertion order
type transactionQueue struct {
	name    queueName
	entries []*poolTransaction
	index   map[string]*poolTransaction
}

func newTransactionQueue(name queueName) *transactionQueue {
	return &transactionQueue{
		name:  name,
		index: make(map[string]*poolTransaction),
	}
}

func (q *transactionQueue) add(entry *poolTransaction) {
	q.entries = append(q.entries, entry)
	q.index[entry.transaction.ID] = entry
}

func (q *transactionQueue) get(transactionID string) (*poolTransaction, bool) {
	entry, ok := q.index[transactionID]
	return entry, ok
}

func (q *transactionQueue) has(transactionID string) bool {
	_, ok := q.index[transactionID]
	return ok
}

func (q *transactionQueue) remove(transactionID string) (*poolTransaction, bool) {
	entry, ok := q.index[transactionID]
	if !ok {
		return nil, false
	}
	delete(q.index, transactionID)
	for i, candidate := range q.entries {
		if candidate == entry {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
	return entry, true
}

func (q *transactionQueue) count() int {
	return len(q.entries)
}

// oldest returns up to limit entries, oldest first, that satisfy filter.
// A nil filter accepts every entry.
func (q *transactionQueue) oldest(limit int, filter func(*poolTransaction) bool) []*poolTransaction {
	result := make([]*poolTransaction, 0, limit)
	for _, entry := range q.entries {
		if len(result) >= limit {
			break
		}
		if filter != nil && !filter(entry) {
			continue
		}
		result = append(result, entry)
	}
	return result
}

// snapshot returns clones of the queued transactions, oldest first
func (q *transactionQueue) snapshot() []*externalapi.DomainTransaction {
	result := make([]*externalapi.DomainTransaction, len(q.entries))
	for i, entry := range q.entries {
		result[i] = entry.transaction.Clone()
	}
	return result
}
