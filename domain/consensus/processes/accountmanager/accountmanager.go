package accountmanager

import (
	"encoding/hex"

	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/pkg/errors"
)

// accountManager is the single entry point through which ledger accounts
// are created and mutated
type accountManager struct {
	databaseContext model.DBReader
	accountStore    model.AccountStore
}

// New instantiates a new AccountManager
func New(databaseContext model.DBReader, accountStore model.AccountStore) model.AccountManager {
	return &accountManager{
		databaseContext: databaseContext,
		accountStore:    accountStore,
	}
}

// Account returns the account of the given address
func (am *accountManager) Account(stagingArea *model.StagingArea, address string) (*externalapi.DomainAccount, error) {
	return am.accountStore.Account(am.databaseContext, stagingArea, address)
}

// AccountByPublicKey returns the account derived from the given public key
func (am *accountManager) AccountByPublicKey(stagingArea *model.StagingArea,
	publicKey []byte) (*externalapi.DomainAccount, error) {

	return am.Account(stagingArea, hashing.AddressFromPublicKey(publicKey))
}

// GetOrCreateByPublicKey returns the account derived from publicKey,
// creating it if it does not exist. An account that was so far only known
// by its address gets its public key recorded.
func (am *accountManager) GetOrCreateByPublicKey(stagingArea *model.StagingArea,
	publicKey []byte) (*externalapi.DomainAccount, error) {

	if len(publicKey) == 0 {
		return nil, errors.Wrapf(ruleerrors.ErrMissingSender, "cannot derive an account from an empty public key")
	}

	address := hashing.AddressFromPublicKey(publicKey)
	account, err := am.getOrCreate(stagingArea, address)
	if err != nil {
		return nil, err
	}
	if !account.HasPublicKey() {
		account.PublicKey = append([]byte(nil), publicKey...)
		am.accountStore.Stage(stagingArea, account)
	}
	return account, nil
}

// GetOrCreateByAddress returns the account of the given address, creating
// it without a public key if it does not exist
func (am *accountManager) GetOrCreateByAddress(stagingArea *model.StagingArea,
	address string) (*externalapi.DomainAccount, error) {

	if !hashing.IsValidAddress(address) {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidRecipient, "invalid address %s", address)
	}
	return am.getOrCreate(stagingArea, address)
}

func (am *accountManager) getOrCreate(stagingArea *model.StagingArea,
	address string) (*externalapi.DomainAccount, error) {

	account, err := am.Account(stagingArea, address)
	if err == nil {
		return account, nil
	}
	if !database.IsNotFoundError(err) {
		return nil, err
	}

	account = &externalapi.DomainAccount{Address: address}
	am.accountStore.Stage(stagingArea, account)
	return account, nil
}

// Merge adds diff to the account of the given address, creating it if
// needed, and stages the result. A merge that would leave either balance
// negative fails without staging anything.
func (am *accountManager) Merge(stagingArea *model.StagingArea, address string,
	diff *model.AccountDiff) (*externalapi.DomainAccount, error) {

	account, err := am.GetOrCreateByAddress(stagingArea, address)
	if err != nil {
		return nil, err
	}

	balance := account.Balance + diff.Balance
	if balance < 0 {
		return nil, errors.Wrapf(ruleerrors.ErrInsufficientBalance, "account %s has balance %d, "+
			"cannot subtract %d", address, account.Balance, -diff.Balance)
	}
	unconfirmedBalance := account.UnconfirmedBalance + diff.UnconfirmedBalance
	if unconfirmedBalance < 0 {
		return nil, errors.Wrapf(ruleerrors.ErrInsufficientBalance, "account %s has unconfirmed balance %d, "+
			"cannot subtract %d", address, account.UnconfirmedBalance, -diff.UnconfirmedBalance)
	}

	account.Balance = balance
	account.UnconfirmedBalance = unconfirmedBalance
	account.ProducedBlocks += diff.ProducedBlocks
	account.MissedBlocks += diff.MissedBlocks
	account.Fees += diff.Fees
	account.Rewards += diff.Rewards
	am.accountStore.Stage(stagingArea, account)
	return account, nil
}

// Save stages the given account
func (am *accountManager) Save(stagingArea *model.StagingArea, account *externalapi.DomainAccount) {
	am.accountStore.Stage(stagingArea, account)
}

// Delegates returns every confirmed delegate, sorted by address
func (am *accountManager) Delegates(stagingArea *model.StagingArea) ([]*externalapi.DomainAccount, error) {
	candidates, err := am.accountStore.Delegates(am.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	delegates := make([]*externalapi.DomainAccount, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.IsDelegate {
			delegates = append(delegates, candidate)
		}
	}
	return delegates, nil
}

// DelegateRegistrants returns every account that is a delegate or has a
// delegate registration pending in the pool, sorted by address
func (am *accountManager) DelegateRegistrants(stagingArea *model.StagingArea) ([]*externalapi.DomainAccount, error) {
	return am.accountStore.Delegates(am.databaseContext, stagingArea)
}

// RecalculateVoteWeights sets the vote weight of every delegate to the sum
// of the confirmed balances of the accounts voting for it. It returns the
// vote weights that were in effect before, keyed by delegate address.
func (am *accountManager) RecalculateVoteWeights(stagingArea *model.StagingArea) (map[string]int64, error) {
	accounts, err := am.accountStore.Accounts(am.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	weights := make(map[string]int64)
	for _, account := range accounts {
		for _, vote := range account.Votes {
			weights[vote] += account.Balance
		}
	}

	delegates, err := am.accountStore.Delegates(am.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	previous := make(map[string]int64, len(delegates))
	for _, delegate := range delegates {
		previous[delegate.Address] = delegate.VoteWeight

		weight := int64(0)
		if delegate.IsDelegate && delegate.HasPublicKey() {
			weight = weights[hex.EncodeToString(delegate.PublicKey)]
		}
		if weight == delegate.VoteWeight {
			continue
		}
		delegate.VoteWeight = weight
		am.accountStore.Stage(stagingArea, delegate)
	}
	log.Debugf("Recalculated the vote weights of %d delegates", len(delegates))
	return previous, nil
}

// RestoreVoteWeights sets the vote weights of the given delegates back to
// the given values
func (am *accountManager) RestoreVoteWeights(stagingArea *model.StagingArea, voteWeights map[string]int64) error {
	for address, weight := range voteWeights {
		delegate, err := am.Account(stagingArea, address)
		if err != nil {
			return errors.Wrapf(err, "cannot restore the vote weight of %s", address)
		}
		if delegate.VoteWeight == weight {
			continue
		}
		delegate.VoteWeight = weight
		am.accountStore.Stage(stagingArea, delegate)
	}
	return nil
}

// ResetUnconfirmedState copies every confirmed field onto its unconfirmed
// counterpart. It is used when no unconfirmed transaction is applied,
// such as on startup.
func (am *accountManager) ResetUnconfirmedState(stagingArea *model.StagingArea) error {
	accounts, err := am.accountStore.Accounts(am.databaseContext, stagingArea)
	if err != nil {
		return err
	}
	reset := 0
	for _, account := range accounts {
		clone := account.Clone()
		clone.UnconfirmedBalance = account.Balance
		clone.UnconfirmedIsDelegate = false
		clone.UnconfirmedUsername = ""
		clone.UnconfirmedSecondSignature = false
		clone.UnconfirmedVotes = append([]string(nil), account.Votes...)
		clone.UnconfirmedMultisignatures = append([]string(nil), account.Multisignatures...)
		clone.UnconfirmedMultiMin = account.MultiMin
		clone.UnconfirmedMultiLifetime = account.MultiLifetime
		if clone.Equal(account) {
			continue
		}
		am.accountStore.Stage(stagingArea, clone)
		reset++
	}
	if reset > 0 {
		log.Infof("Reset the unconfirmed state of %d accounts", reset)
	}
	return nil
}

// Commitment returns the accounts commitment, staged changes included
func (am *accountManager) Commitment(stagingArea *model.StagingArea) (string, error) {
	return am.accountStore.Commitment(am.databaseContext, stagingArea)
}
