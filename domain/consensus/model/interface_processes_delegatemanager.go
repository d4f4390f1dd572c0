package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// DelegateManager computes the forging order of rounds
type DelegateManager interface {
	ActiveDelegateKeys(stagingArea *StagingArea) ([]string, error)
	DelegateList(stagingArea *StagingArea, round uint64) ([]string, error)
	DelegateListForHeight(stagingArea *StagingArea, height uint64) ([]string, error)
	SlotDelegate(stagingArea *StagingArea, height uint64, slot uint64) (string, error)
	ValidateBlockSlot(stagingArea *StagingArea, block *externalapi.DomainBlock) error
	ClearCache()
}
