package model

import "github.com/RiseVision/rise-node/domain/consensus/model/externalapi"

// TransactionType is the type specific half of transaction handling.
// The pool and the chain never branch on a transaction's type; they
// reach the handler registered for it through TransactionTypeRegistry.
type TransactionType interface {
	Type() externalapi.TransactionType

	CalculateFee(transaction *externalapi.DomainTransaction, sender *externalapi.DomainAccount, height uint64) uint64
	Verify(stagingArea *StagingArea, transaction *externalapi.DomainTransaction, sender *externalapi.DomainAccount) error
	Process(stagingArea *StagingArea, transaction *externalapi.DomainTransaction, sender *externalapi.DomainAccount) error
	ObjectNormalize(transaction *externalapi.DomainTransaction) error

	Apply(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		block *externalapi.DomainBlock, sender *externalapi.DomainAccount) error
	Undo(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		block *externalapi.DomainBlock, sender *externalapi.DomainAccount) error
	ApplyUnconfirmed(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		sender *externalapi.DomainAccount) error
	UndoUnconfirmed(stagingArea *StagingArea, transaction *externalapi.DomainTransaction,
		sender *externalapi.DomainAccount) error

	Ready(transaction *externalapi.DomainTransaction, sender *externalapi.DomainAccount) bool
	GetBytes(transaction *externalapi.DomainTransaction) ([]byte, error)
	DBSave(transaction *externalapi.DomainTransaction) ([]byte, error)
	DBRead(assetBytes []byte, transaction *externalapi.DomainTransaction) error
	AfterSave(transaction *externalapi.DomainTransaction) error
}

// TransactionTypeRegistry dispatches transaction handling by type
type TransactionTypeRegistry interface {
	Register(handler TransactionType) error
	Get(transactionType externalapi.TransactionType) (TransactionType, error)
}
