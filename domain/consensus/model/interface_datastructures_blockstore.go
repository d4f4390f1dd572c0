package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// BlockStore represents a store of block headers. The transactions of a
// stored block are kept in the TransactionStore and referenced by id.
type BlockStore interface {
	Store
	Stage(stagingArea *StagingArea, block *externalapi.DomainBlock)
	Block(dbContext DBReader, stagingArea *StagingArea, blockID string) (*externalapi.DomainBlock, []string, error)
	HasBlock(dbContext DBReader, stagingArea *StagingArea, blockID string) (bool, error)
	BlockIDByHeight(dbContext DBReader, stagingArea *StagingArea, height uint64) (string, error)
	Delete(stagingArea *StagingArea, blockID string, height uint64)
}
