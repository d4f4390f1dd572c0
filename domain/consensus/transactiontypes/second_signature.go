package transactiontypes

import (
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

// secondSignature registers a second public key whose signature every
// later transaction of the sender must carry
type secondSignature struct {
	baseType
}

// NewSecondSignature returns the handler of second signature registrations
func NewSecondSignature(params *dposconfig.Params, accountManager model.AccountManager) model.TransactionType {
	return &secondSignature{baseType{params: params, accountManager: accountManager}}
}

func (ss *secondSignature) Type() externalapi.TransactionType {
	return externalapi.TransactionTypeSecondSignature
}

func (ss *secondSignature) CalculateFee(*externalapi.DomainTransaction, *externalapi.DomainAccount, uint64) uint64 {
	return ss.params.Fees.SecondSignature
}

func (ss *secondSignature) ObjectNormalize(transaction *externalapi.DomainTransaction) error {
	err := checkAssetKinds(transaction, true, false, false, false)
	if err != nil {
		return err
	}
	if len(transaction.Asset.Signature.PublicKey) != keys.PublicKeySize {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s registers a %d bytes long public key",
			transaction.ID, len(transaction.Asset.Signature.PublicKey))
	}
	return nil
}

func (ss *secondSignature) Verify(_ *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	err := requireNoRecipient(transaction)
	if err != nil {
		return err
	}
	err = requireZeroAmount(transaction)
	if err != nil {
		return err
	}
	if sender.SecondSignature {
		return errors.Wrapf(ruleerrors.ErrAlreadySecondSignature, "account %s already has a second signature",
			sender.Address)
	}
	return nil
}

func (ss *secondSignature) Apply(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	account, err := ss.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	account.SecondSignature = true
	account.UnconfirmedSecondSignature = false
	account.SecondPublicKey = append([]byte(nil), transaction.Asset.Signature.PublicKey...)
	ss.accountManager.Save(stagingArea, account)
	return nil
}

func (ss *secondSignature) Undo(stagingArea *model.StagingArea, _ *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	account, err := ss.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	account.SecondSignature = false
	account.UnconfirmedSecondSignature = true
	account.SecondPublicKey = nil
	ss.accountManager.Save(stagingArea, account)
	return nil
}

func (ss *secondSignature) ApplyUnconfirmed(stagingArea *model.StagingArea, _ *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	account, err := ss.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	if account.SecondSignature || account.UnconfirmedSecondSignature {
		return errors.Wrapf(ruleerrors.ErrAlreadySecondSignature, "account %s already registers a second signature",
			account.Address)
	}
	account.UnconfirmedSecondSignature = true
	ss.accountManager.Save(stagingArea, account)
	return nil
}

func (ss *secondSignature) UndoUnconfirmed(stagingArea *model.StagingArea, _ *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	account, err := ss.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	account.UnconfirmedSecondSignature = false
	ss.accountManager.Save(stagingArea, account)
	return nil
}

func (ss *secondSignature) GetBytes(transaction *externalapi.DomainTransaction) ([]byte, error) {
	if transaction.Asset.Signature == nil {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s has no signature asset", transaction.ID)
	}
	return append([]byte(nil), transaction.Asset.Signature.PublicKey...), nil
}

func (ss *secondSignature) DBSave(transaction *externalapi.DomainTransaction) ([]byte, error) {
	if transaction.Asset.Signature == nil {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s has no signature asset", transaction.ID)
	}
	return serialization.SerializeSignatureAsset(transaction.Asset.Signature), nil
}

func (ss *secondSignature) DBRead(assetBytes []byte, transaction *externalapi.DomainTransaction) error {
	asset, err := serialization.DeserializeSignatureAsset(assetBytes)
	if err != nil {
		return err
	}
	transaction.Asset.Signature = asset
	return nil
}
