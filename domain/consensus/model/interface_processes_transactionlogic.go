package model

import (
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
)

// TransactionLogic runs the checks and state transitions shared by all
// transaction types and dispatches the rest to the type registry
type TransactionLogic interface {
	Registry() TransactionTypeRegistry

	GetBytes(transaction *externalapi.DomainTransaction, skipSignature, skipSecondSignature bool) ([]byte, error)
	GetID(transaction *externalapi.DomainTransaction) (string, error)
	CalculateFee(transaction *externalapi.DomainTransaction, sender *externalapi.DomainAccount, height uint64) (uint64, error)
	Ready(transaction *externalapi.DomainTransaction, sender *externalapi.DomainAccount) (bool, error)
	IsConfirmed(stagingArea *StagingArea, transactionID string) (bool, error)

	Process(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		sender, requester *externalapi.DomainAccount) error
	ObjectNormalize(transaction *externalapi.DomainTransaction) error
	Verify(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		sender, requester *externalapi.DomainAccount, height uint64) error

	Apply(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		block *externalapi.DomainBlock, sender *externalapi.DomainAccount) error
	Undo(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		block *externalapi.DomainBlock, sender *externalapi.DomainAccount) error
	ApplyUnconfirmed(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		sender *externalapi.DomainAccount) error
	UndoUnconfirmed(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		sender *externalapi.DomainAccount) error

	DBSave(transaction *externalapi.DomainTransaction) ([]byte, error)
	DBRead(assetBytes []byte, transaction *externalapi.DomainTransaction) error
	AfterSave(transaction *externalapi.DomainTransaction) error
}
