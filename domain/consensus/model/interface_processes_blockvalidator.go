package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// BlockValidator checks a block against the consensus rules before it
// is applied
type BlockValidator interface {
	VerifyBlock(stagingArea *StagingArea, block, lastBlock *externalapi.DomainBlock) error
}
