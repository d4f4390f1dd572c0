package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// AfterSaveHook is a side effect to run once a saved block is durably
// committed. Its failure does not affect the saved block.
type AfterSaveHook func() error

// ChainManager applies, persists and reverts whole blocks
type ChainManager interface {
	SaveBlock(stagingArea *StagingArea, block *externalapi.DomainBlock) ([]AfterSaveHook, error)
	DeleteBlock(stagingArea *StagingArea, blockID string) error
	LoadBlock(stagingArea *StagingArea, blockID string) (*externalapi.DomainBlock, error)
	LastBlock(stagingArea *StagingArea) (*externalapi.DomainBlock, error)
	ApplyGenesisBlock(block *externalapi.DomainBlock) error
	ApplyBlock(block *externalapi.DomainBlock, saveBlock bool) error
	PopLastBlock(block *externalapi.DomainBlock) (*externalapi.DomainBlock, error)
	DeleteLastBlock() (*externalapi.DomainBlock, error)
	RecoverTick() error
}
