package transactiontypes

import (
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

// baseType holds what every handler shares and the hooks most of them
// leave empty
type baseType struct {
	params         *dposconfig.Params
	accountManager model.AccountManager
}

func (bt *baseType) Process(*model.StagingArea, *externalapi.DomainTransaction, *externalapi.DomainAccount) error {
	return nil
}

func (bt *baseType) Ready(*externalapi.DomainTransaction, *externalapi.DomainAccount) bool {
	return true
}

func (bt *baseType) AfterSave(transaction *externalapi.DomainTransaction) error {
	log.Tracef("Transaction %s of type %s saved in block %s", transaction.ID, transaction.Type, transaction.BlockID)
	return nil
}

// sender re-reads the sender from the staging area, since the common
// transaction logic may already have changed it
func (bt *baseType) sender(stagingArea *model.StagingArea,
	sender *externalapi.DomainAccount) (*externalapi.DomainAccount, error) {

	return bt.accountManager.Account(stagingArea, sender.Address)
}

// checkAssetKinds fails unless only the asset field matching the
// transaction's type is set
func checkAssetKinds(transaction *externalapi.DomainTransaction, signature, delegate, votes, multisignature bool) error {
	asset := &transaction.Asset
	if (asset.Signature != nil) != signature ||
		(asset.Delegate != nil) != delegate ||
		(asset.Votes != nil) != votes ||
		(asset.Multisignature != nil) != multisignature {

		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s of type %s carries an unexpected asset",
			transaction.ID, transaction.Type)
	}
	return nil
}

func requireNoRecipient(transaction *externalapi.DomainTransaction) error {
	if transaction.RecipientID != "" {
		return errors.Wrapf(ruleerrors.ErrInvalidRecipient, "transaction %s of type %s must not have a recipient",
			transaction.ID, transaction.Type)
	}
	return nil
}

func requireZeroAmount(transaction *externalapi.DomainTransaction) error {
	if transaction.Amount != 0 {
		return errors.Wrapf(ruleerrors.ErrInvalidAmount, "transaction %s of type %s must not transfer an amount",
			transaction.ID, transaction.Type)
	}
	return nil
}
