package model

import (
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
)

// BlockBuilder assembles and signs new blocks
type BlockBuilder interface {
	BuildBlock(transactions []*externalapi.DomainTransaction, previousBlock *externalapi.DomainBlock,
		keyPair *keys.KeyPair, timestamp uint32) (*externalapi.DomainBlock, error)
}
