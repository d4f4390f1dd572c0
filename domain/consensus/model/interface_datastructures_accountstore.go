package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// AccountStore represents a store of ledger accounts
type AccountStore interface {
	Store
	Stage(stagingArea *StagingArea, account *externalapi.DomainAccount)
	Account(dbContext DBReader, stagingArea *StagingArea, address string) (*externalapi.DomainAccount, error)
	HasAccount(dbContext DBReader, stagingArea *StagingArea, address string) (bool, error)
	Delete(stagingArea *StagingArea, address string)
	Accounts(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.DomainAccount, error)
	Delegates(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.DomainAccount, error)
	Commitment(dbContext DBReader, stagingArea *StagingArea) (string, error)
	DelegateSetGeneration() uint64
}
