package model

// ChainStateStore represents a store of the chain tip and of the height
// of the last block whose round processing completed
type ChainStateStore interface {
	Store
	StageTip(stagingArea *StagingArea, blockID string)
	Tip(dbContext DBReader, stagingArea *StagingArea) (string, error)
	HasTip(dbContext DBReader, stagingArea *StagingArea) (bool, error)
	StageTickHeight(stagingArea *StagingArea, height uint64)
	TickHeight(dbContext DBReader, stagingArea *StagingArea) (uint64, error)
}
