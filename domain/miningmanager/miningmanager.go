package miningmanager

import (
	"context"

	"github.com/RiseVision/rise-node/domain/consensus"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/miningmanager/transactionpool"
)

// MiningManager creates blocks for forging delegates as well as
// maintaining known transactions that have not yet been added to any block
type MiningManager interface {
	GetBlockTemplate(ctx context.Context, keyPair *keys.KeyPair, timestamp uint32) (*externalapi.DomainBlock, error)
	ValidateAndInsertTransaction(ctx context.Context, transaction *externalapi.DomainTransaction, broadcast bool) error
	TransactionPool() *transactionpool.TransactionPool
}

type miningManager struct {
	consensus consensus.Consensus
	pool      *transactionpool.TransactionPool
}

// GetBlockTemplate fills the pool and builds a block on top of the chain
// tip out of its unconfirmed transactions, signed with keyPair
func (mm *miningManager) GetBlockTemplate(ctx context.Context, keyPair *keys.KeyPair,
	timestamp uint32) (*externalapi.DomainBlock, error) {

	var block *externalapi.DomainBlock
	err := mm.consensus.ChainSequence().AddAndWait(ctx, func() error {
		err := mm.pool.FillPool()
		if err != nil {
			return err
		}
		block, err = mm.consensus.BuildBlock(mm.pool.GetUnconfirmedList(), keyPair, timestamp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// ValidateAndInsertTransaction verifies transaction and, if valid, adds
// it to the pool
func (mm *miningManager) ValidateAndInsertTransaction(ctx context.Context,
	transaction *externalapi.DomainTransaction, broadcast bool) error {

	return mm.pool.ReceiveTransactions(ctx, []*externalapi.DomainTransaction{transaction}, broadcast, false)
}

func (mm *miningManager) TransactionPool() *transactionpool.TransactionPool {
	return mm.pool
}
