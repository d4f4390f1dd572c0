package miningmanager

import (
	"github.com/RiseVision/rise-node/domain/consensus"
	"github.com/RiseVision/rise-node/domain/miningmanager/transactionpool"
)

// Factory instantiates new mining managers
type Factory interface {
	NewMiningManager(consensus consensus.Consensus, config *transactionpool.Config) MiningManager
}

type factory struct{}

// NewMiningManager instantiates a new mining manager and attaches its
// transaction pool to consensus
func (f *factory) NewMiningManager(consensus consensus.Consensus, config *transactionpool.Config) MiningManager {
	pool := transactionpool.New(config, consensus, consensus.AppState())
	consensus.AttachPool(pool)

	return &miningManager{
		consensus: consensus,
		pool:      pool,
	}
}

// NewFactory creates a new mining manager factory
func NewFactory() Factory {
	return &factory{}
}
