package transactionpool

import (
	"sync"
	"time"

	"github.com/RiseVision/rise-node/domain/appstate"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/util/sequence"
)

// Ledger is the part of the consensus the pool verifies and applies
// transactions against
type Ledger interface {
	VerifyTransaction(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction) error
	TransactionReady(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction) (bool, error)
	IsTransactionConfirmed(transactionID string) (bool, error)
	ApplyUnconfirmedTransaction(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction) error
	UndoUnconfirmedTransaction(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction) error
	CommitStagingArea(stagingArea *model.StagingArea) error
}

// UnconfirmedTransactionHandler is notified of every transaction that
// passed verification
type UnconfirmedTransactionHandler func(transaction *externalapi.DomainTransaction, broadcast bool)

// TransactionPool holds the transactions that are not in a block yet. A
// transaction is held in exactly one of four queues:
//
//	bundled: received in a batch, waiting to be released for verification
//	queued: verified, waiting for a slot in the next block candidate
//	multisignature: waiting for enough co-signatures
//	unconfirmed: selected for the next block, its unconfirmed effects applied
//
// Methods that apply or undo unconfirmed effects must run inside the chain
// sequence.
type TransactionPool struct {
	config   *Config
	ledger   Ledger
	appState *appstate.State
	now      func() time.Time

	balancesSequence *sequence.Sequence

	lock           sync.RWMutex
	bundled        *transactionQueue
	queued         *transactionQueue
	multisignature *transactionQueue
	unconfirmed    *transactionQueue

	handlersLock sync.RWMutex
	handlers     []UnconfirmedTransactionHandler
}

// New returns a new, empty TransactionPool
func New(config *Config, ledger Ledger, appState *appstate.State) *TransactionPool {
	return &TransactionPool{
		config:           config,
		ledger:           ledger,
		appState:         appState,
		now:              time.Now,
		balancesSequence: sequence.New("balances"),
		bundled:          newTransactionQueue(queueBundled),
		queued:           newTransactionQueue(queueQueued),
		multisignature:   newTransactionQueue(queueMultisignature),
		unconfirmed:      newTransactionQueue(queueUnconfirmed),
	}
}

// Stop stops the pool's balances sequence
func (tp *TransactionPool) Stop() {
	tp.balancesSequence.Stop()
}

// OnUnconfirmedTransaction registers a handler for verified transactions
func (tp *TransactionPool) OnUnconfirmedTransaction(handler UnconfirmedTransactionHandler) {
	tp.handlersLock.Lock()
	defer tp.handlersLock.Unlock()
	tp.handlers = append(tp.handlers, handler)
}

func (tp *TransactionPool) notifyUnconfirmedTransaction(transaction *externalapi.DomainTransaction, broadcast bool) {
	tp.handlersLock.RLock()
	handlers := append([]UnconfirmedTransactionHandler(nil), tp.handlers...)
	tp.handlersLock.RUnlock()

	for _, handler := range handlers {
		handler(transaction, broadcast)
	}
}

// QueueTransaction adds transaction to the bundled queue if isBundled is
// set, to the multisignature queue if it registers a keysgroup or carries
// co-signatures, and to the queued queue otherwise
func (tp *TransactionPool) QueueTransaction(transaction *externalapi.DomainTransaction, isBundled bool) error {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	return tp.queueTransaction(transaction, isBundled)
}

// This function MUST be called with the pool lock held for writes
func (tp *TransactionPool) queueTransaction(transaction *externalapi.DomainTransaction, isBundled bool) error {
	if tp.queueOf(transaction.ID) != nil {
		return poolRuleError(ErrAlreadyInPool, "transaction %s", transaction.ID)
	}

	var destination *transactionQueue
	switch {
	case isBundled:
		destination = tp.bundled
	case transaction.Type == externalapi.TransactionTypeMultisignature || len(transaction.Signatures) > 0:
		destination = tp.multisignature
	default:
		destination = tp.queued
	}

	if destination.count() >= tp.config.MaxTxsPerQueue {
		return poolRuleError(ErrPoolFull, "cannot queue transaction %s: the %s queue holds %d transactions",
			transaction.ID, destination.name, destination.count())
	}
	destination.add(&poolTransaction{transaction: transaction, receivedAt: tp.now()})
	log.Debugf("Queued transaction %s in the %s queue", transaction.ID, destination.name)
	return nil
}

// RemoveTransaction removes the transaction with the given id from
// whichever queue holds it
func (tp *TransactionPool) RemoveTransaction(transactionID string) {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	tp.removeTransaction(transactionID)
}

// This function MUST be called with the pool lock held for writes
func (tp *TransactionPool) removeTransaction(transactionID string) bool {
	queue := tp.queueOf(transactionID)
	if queue == nil {
		return false
	}
	queue.remove(transactionID)
	return true
}

// This function MUST be called with the pool lock held
func (tp *TransactionPool) queueOf(transactionID string) *transactionQueue {
	for _, queue := range tp.queues() {
		if queue.has(transactionID) {
			return queue
		}
	}
	return nil
}

func (tp *TransactionPool) queues() []*transactionQueue {
	return []*transactionQueue{tp.unconfirmed, tp.multisignature, tp.queued, tp.bundled}
}

// TransactionInPool returns whether any queue holds the transaction with
// the given id
func (tp *TransactionPool) TransactionInPool(transactionID string) bool {
	tp.lock.RLock()
	defer tp.lock.RUnlock()

	return tp.queueOf(transactionID) != nil
}

// GetTransaction returns a clone of the pooled transaction with the given
// id
func (tp *TransactionPool) GetTransaction(transactionID string) (*externalapi.DomainTransaction, bool) {
	tp.lock.RLock()
	defer tp.lock.RUnlock()

	queue := tp.queueOf(transactionID)
	if queue == nil {
		return nil, false
	}
	entry, _ := queue.get(transactionID)
	return entry.transaction.Clone(), true
}

// GetUnconfirmedList returns a snapshot of the unconfirmed queue
func (tp *TransactionPool) GetUnconfirmedList() []*externalapi.DomainTransaction {
	tp.lock.RLock()
	defer tp.lock.RUnlock()
	return tp.unconfirmed.snapshot()
}

// GetQueuedList returns a snapshot of the queued queue
func (tp *TransactionPool) GetQueuedList() []*externalapi.DomainTransaction {
	tp.lock.RLock()
	defer tp.lock.RUnlock()
	return tp.queued.snapshot()
}

// GetMultisignatureList returns a snapshot of the multisignature queue
func (tp *TransactionPool) GetMultisignatureList() []*externalapi.DomainTransaction {
	tp.lock.RLock()
	defer tp.lock.RUnlock()
	return tp.multisignature.snapshot()
}

// GetBundledList returns a snapshot of the bundled queue
func (tp *TransactionPool) GetBundledList() []*externalapi.DomainTransaction {
	tp.lock.RLock()
	defer tp.lock.RUnlock()
	return tp.bundled.snapshot()
}

// GetMergedList returns up to limit transactions, unconfirmed first, then
// multisignature, then queued. A non-positive limit returns them all.
func (tp *TransactionPool) GetMergedList(limit int) []*externalapi.DomainTransaction {
	tp.lock.RLock()
	defer tp.lock.RUnlock()

	merged := make([]*externalapi.DomainTransaction, 0)
	for _, queue := range []*transactionQueue{tp.unconfirmed, tp.multisignature, tp.queued} {
		merged = append(merged, queue.snapshot()...)
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Count holds the number of transactions per queue
type Count struct {
	Bundled        int
	Queued         int
	Multisignature int
	Unconfirmed    int
}

// Count returns the number of transactions in every queue
func (tp *TransactionPool) Count() Count {
	tp.lock.RLock()
	defer tp.lock.RUnlock()
	return Count{
		Bundled:        tp.bundled.count(),
		Queued:         tp.queued.count(),
		Multisignature: tp.multisignature.count(),
		Unconfirmed:    tp.unconfirmed.count(),
	}
}

// ProcessVerifyTransaction verifies transaction against the ledger and
// notifies the OnUnconfirmedTransaction handlers if it is valid
func (tp *TransactionPool) ProcessVerifyTransaction(transaction *externalapi.DomainTransaction, broadcast bool) error {
	err := tp.ledger.VerifyTransaction(model.NewStagingArea(), transaction)
	if err != nil {
		return err
	}
	tp.notifyUnconfirmedTransaction(transaction, broadcast)
	return nil
}

func (tp *TransactionPool) checkDuplicate(transaction *externalapi.DomainTransaction) error {
	if tp.TransactionInPool(transaction.ID) {
		return poolRuleError(ErrAlreadyInPool, "transaction %s", transaction.ID)
	}
	confirmed, err := tp.ledger.IsTransactionConfirmed(transaction.ID)
	if err != nil {
		return err
	}
	if confirmed {
		return poolRuleError(ruleerrors.ErrDuplicateTransaction, "transaction %s is already confirmed",
			transaction.ID)
	}
	return nil
}
