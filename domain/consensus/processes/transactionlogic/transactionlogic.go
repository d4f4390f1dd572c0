package transactionlogic

import (
	"time"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/slots"
	"github.com/RiseVision/rise-node/domain/dposconfig"
)

// transactionLogic runs the checks and balance mutations every
// transaction shares, and hands the rest to the handler registered for
// the transaction's type
type transactionLogic struct {
	params          *dposconfig.Params
	databaseContext model.DBReader
	slots           *slots.Slots

	registry         model.TransactionTypeRegistry
	accountManager   model.AccountManager
	transactionStore model.TransactionStore

	now func() time.Time
}

// New instantiates a new TransactionLogic
func New(
	params *dposconfig.Params,
	databaseContext model.DBReader,
	slots *slots.Slots,
	registry model.TransactionTypeRegistry,
	accountManager model.AccountManager,
	transactionStore model.TransactionStore) model.TransactionLogic {

	return &transactionLogic{
		params:           params,
		databaseContext:  databaseContext,
		slots:            slots,
		registry:         registry,
		accountManager:   accountManager,
		transactionStore: transactionStore,
		now:              time.Now,
	}
}

func (tl *transactionLogic) Registry() model.TransactionTypeRegistry {
	return tl.registry
}

func (tl *transactionLogic) handler(transaction *externalapi.DomainTransaction) (model.TransactionType, error) {
	return tl.registry.Get(transaction.Type)
}

func (tl *transactionLogic) assetBytes(transaction *externalapi.DomainTransaction) ([]byte, error) {
	handler, err := tl.handler(transaction)
	if err != nil {
		return nil, err
	}
	return handler.GetBytes(transaction)
}

// GetBytes returns the canonical serialization of transaction
func (tl *transactionLogic) GetBytes(transaction *externalapi.DomainTransaction,
	skipSignature, skipSecondSignature bool) ([]byte, error) {

	assetBytes, err := tl.assetBytes(transaction)
	if err != nil {
		return nil, err
	}
	return hashing.TransactionBytes(transaction, assetBytes, skipSignature, skipSecondSignature)
}

// GetID computes the id of a fully signed transaction
func (tl *transactionLogic) GetID(transaction *externalapi.DomainTransaction) (string, error) {
	assetBytes, err := tl.assetBytes(transaction)
	if err != nil {
		return "", err
	}
	return hashing.TransactionID(transaction, assetBytes)
}

func (tl *transactionLogic) CalculateFee(transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount, height uint64) (uint64, error) {

	handler, err := tl.handler(transaction)
	if err != nil {
		return 0, err
	}
	return handler.CalculateFee(transaction, sender, height), nil
}

// Ready reports whether transaction carries every co-signature it needs
// to be included in a block
func (tl *transactionLogic) Ready(transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) (bool, error) {

	handler, err := tl.handler(transaction)
	if err != nil {
		return false, err
	}
	if !handler.Ready(transaction, sender) {
		return false, nil
	}
	if sender != nil && sender.IsMultisignature() && transaction.Type != externalapi.TransactionTypeMultisignature {
		return uint32(len(transaction.Signatures)) >= sender.MultiMin, nil
	}
	return true, nil
}

func (tl *transactionLogic) IsConfirmed(stagingArea *model.StagingArea, transactionID string) (bool, error) {
	return tl.transactionStore.HasTransaction(tl.databaseContext, stagingArea, transactionID)
}

func (tl *transactionLogic) DBSave(transaction *externalapi.DomainTransaction) ([]byte, error) {
	handler, err := tl.handler(transaction)
	if err != nil {
		return nil, err
	}
	return handler.DBSave(transaction)
}

func (tl *transactionLogic) DBRead(assetBytes []byte, transaction *externalapi.DomainTransaction) error {
	handler, err := tl.handler(transaction)
	if err != nil {
		return err
	}
	return handler.DBRead(assetBytes, transaction)
}

func (tl *transactionLogic) AfterSave(transaction *externalapi.DomainTransaction) error {
	handler, err := tl.handler(transaction)
	if err != nil {
		return err
	}
	return handler.AfterSave(transaction)
}
