package consensus

import (
	"sync"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
)

// poolProxy lets the chain manager be constructed before the transaction
// pool, which itself depends on the consensus. Until a pool is attached
// every call is a no-op.
type poolProxy struct {
	lock sync.RWMutex
	pool model.UnconfirmedPool
}

func (p *poolProxy) attach(pool model.UnconfirmedPool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.pool = pool
}

func (p *poolProxy) get() model.UnconfirmedPool {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.pool
}

func (p *poolProxy) UndoUnconfirmedList(stagingArea *model.StagingArea) ([]string, error) {
	pool := p.get()
	if pool == nil {
		return nil, nil
	}
	return pool.UndoUnconfirmedList(stagingArea)
}

func (p *poolProxy) ApplyUnconfirmedList(transactionIDs []string) error {
	pool := p.get()
	if pool == nil {
		return nil
	}
	return pool.ApplyUnconfirmedList(transactionIDs)
}

func (p *poolProxy) RemoveTransaction(transactionID string) {
	pool := p.get()
	if pool == nil {
		return
	}
	pool.RemoveTransaction(transactionID)
}

func (p *poolProxy) QueueTransaction(transaction *externalapi.DomainTransaction, isBundled bool) error {
	pool := p.get()
	if pool == nil {
		return nil
	}
	return pool.QueueTransaction(transaction, isBundled)
}
