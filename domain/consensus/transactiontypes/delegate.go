package transactiontypes

import (
	"regexp"
	"strings"

	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

const maxUsernameLength = 20

var usernamePattern = regexp.MustCompile(`^[a-z0-9!@$&_.]+$`)

// delegate registers the sender as a delegate under a unique username
type delegate struct {
	baseType
}

// NewDelegate returns the handler of delegate registrations
func NewDelegate(params *dposconfig.Params, accountManager model.AccountManager) model.TransactionType {
	return &delegate{baseType{params: params, accountManager: accountManager}}
}

func (d *delegate) Type() externalapi.TransactionType {
	return externalapi.TransactionTypeDelegate
}

func (d *delegate) CalculateFee(*externalapi.DomainTransaction, *externalapi.DomainAccount, uint64) uint64 {
	return d.params.Fees.Delegate
}

func (d *delegate) ObjectNormalize(transaction *externalapi.DomainTransaction) error {
	err := checkAssetKinds(transaction, false, true, false, false)
	if err != nil {
		return err
	}
	return validateUsername(transaction.Asset.Delegate.Username)
}

func validateUsername(username string) error {
	if username == "" || len(username) > maxUsernameLength {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "username must be 1 to %d characters long",
			maxUsernameLength)
	}
	if username != strings.ToLower(username) {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "username %s must be lowercase", username)
	}
	if !usernamePattern.MatchString(username) {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "username %s contains invalid characters", username)
	}
	if hashing.IsValidAddress(strings.ToUpper(username)) {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "username %s can be mistaken for an address", username)
	}
	return nil
}

func (d *delegate) Verify(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	err := requireNoRecipient(transaction)
	if err != nil {
		return err
	}
	err = requireZeroAmount(transaction)
	if err != nil {
		return err
	}
	if sender.IsDelegate {
		return errors.Wrapf(ruleerrors.ErrAlreadyDelegate, "account %s is already a delegate", sender.Address)
	}
	return d.checkUsernameAvailable(stagingArea, transaction.Asset.Delegate.Username, false)
}

// checkUsernameAvailable fails if username is taken by a delegate, or
// when includePending is set, by a pending registration too
func (d *delegate) checkUsernameAvailable(stagingArea *model.StagingArea, username string, includePending bool) error {
	registrants, err := d.accountManager.DelegateRegistrants(stagingArea)
	if err != nil {
		return err
	}
	for _, registrant := range registrants {
		if registrant.IsDelegate && registrant.Username == username {
			return errors.Wrapf(ruleerrors.ErrUsernameTaken, "username %s belongs to %s", username, registrant.Address)
		}
		if includePending && registrant.UnconfirmedIsDelegate && registrant.UnconfirmedUsername == username {
			return errors.Wrapf(ruleerrors.ErrUsernameTaken, "username %s is being registered by %s",
				username, registrant.Address)
		}
	}
	return nil
}

func (d *delegate) Apply(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	account, err := d.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	account.IsDelegate = true
	account.UnconfirmedIsDelegate = false
	account.Username = transaction.Asset.Delegate.Username
	account.UnconfirmedUsername = ""
	d.accountManager.Save(stagingArea, account)
	return nil
}

func (d *delegate) Undo(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	account, err := d.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	account.IsDelegate = false
	account.UnconfirmedIsDelegate = true
	account.Username = ""
	account.UnconfirmedUsername = transaction.Asset.Delegate.Username
	d.accountManager.Save(stagingArea, account)
	return nil
}

func (d *delegate) ApplyUnconfirmed(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	account, err := d.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	if account.IsDelegate || account.UnconfirmedIsDelegate {
		return errors.Wrapf(ruleerrors.ErrAlreadyDelegate, "account %s is already registering as a delegate",
			account.Address)
	}
	username := transaction.Asset.Delegate.Username
	err = d.checkUsernameAvailable(stagingArea, username, true)
	if err != nil {
		return err
	}
	account.UnconfirmedIsDelegate = true
	account.UnconfirmedUsername = username
	d.accountManager.Save(stagingArea, account)
	return nil
}

func (d *delegate) UndoUnconfirmed(stagingArea *model.StagingArea, _ *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	account, err := d.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	account.UnconfirmedIsDelegate = false
	account.UnconfirmedUsername = ""
	d.accountManager.Save(stagingArea, account)
	return nil
}

func (d *delegate) GetBytes(transaction *externalapi.DomainTransaction) ([]byte, error) {
	if transaction.Asset.Delegate == nil {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s has no delegate asset", transaction.ID)
	}
	return []byte(transaction.Asset.Delegate.Username), nil
}

func (d *delegate) DBSave(transaction *externalapi.DomainTransaction) ([]byte, error) {
	if transaction.Asset.Delegate == nil {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s has no delegate asset", transaction.ID)
	}
	return serialization.SerializeDelegateAsset(transaction.Asset.Delegate), nil
}

func (d *delegate) DBRead(assetBytes []byte, transaction *externalapi.DomainTransaction) error {
	asset, err := serialization.DeserializeDelegateAsset(assetBytes)
	if err != nil {
		return err
	}
	transaction.Asset.Delegate = asset
	return nil
}
