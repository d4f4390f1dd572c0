package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// TransactionStore represents a store of confirmed transactions and
// their type specific asset rows
type TransactionStore interface {
	Store
	Stage(stagingArea *StagingArea, transaction *externalapi.DomainTransaction, assetBytes []byte)
	Transaction(dbContext DBReader, stagingArea *StagingArea, transactionID string) (*externalapi.DomainTransaction, []byte, error)
	HasTransaction(dbContext DBReader, stagingArea *StagingArea, transactionID string) (bool, error)
	Delete(stagingArea *StagingArea, transactionID string, transactionType externalapi.TransactionType)
}
