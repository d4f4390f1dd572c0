package transactiontypes

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

const (
	addVote    = '+'
	removeVote = '-'
)

// vote adds and removes the sender's votes for delegates. A vote change
// is a '+' or '-' followed by the hex public key of the delegate.
type vote struct {
	baseType
}

// NewVote returns the handler of vote transactions
func NewVote(params *dposconfig.Params, accountManager model.AccountManager) model.TransactionType {
	return &vote{baseType{params: params, accountManager: accountManager}}
}

func (v *vote) Type() externalapi.TransactionType {
	return externalapi.TransactionTypeVote
}

func (v *vote) CalculateFee(*externalapi.DomainTransaction, *externalapi.DomainAccount, uint64) uint64 {
	return v.params.Fees.Vote
}

func (v *vote) ObjectNormalize(transaction *externalapi.DomainTransaction) error {
	err := checkAssetKinds(transaction, false, false, true, false)
	if err != nil {
		return err
	}

	votes := transaction.Asset.Votes
	if len(votes) == 0 || len(votes) > v.params.MaxVotesPerTransaction {
		return errors.Wrapf(ruleerrors.ErrInvalidVote, "transaction %s carries %d vote changes, "+
			"expected 1 to %d", transaction.ID, len(votes), v.params.MaxVotesPerTransaction)
	}
	seen := make(map[string]struct{}, len(votes))
	for _, change := range votes {
		_, publicKey, err := parseVoteChange(change)
		if err != nil {
			return err
		}
		if _, ok := seen[publicKey]; ok {
			return errors.Wrapf(ruleerrors.ErrInvalidVote, "transaction %s changes the vote for %s twice",
				transaction.ID, publicKey)
		}
		seen[publicKey] = struct{}{}
	}
	return nil
}

func parseVoteChange(change string) (byte, string, error) {
	if len(change) != 1+2*keys.PublicKeySize || (change[0] != addVote && change[0] != removeVote) {
		return 0, "", errors.Wrapf(ruleerrors.ErrInvalidVote, "malformed vote change %q", change)
	}
	publicKey := change[1:]
	if strings.ToLower(publicKey) != publicKey {
		return 0, "", errors.Wrapf(ruleerrors.ErrInvalidVote, "vote change %q is not lowercase hex", change)
	}
	if _, err := hex.DecodeString(publicKey); err != nil {
		return 0, "", errors.Wrapf(ruleerrors.ErrInvalidVote, "vote change %q is not hex", change)
	}
	return change[0], publicKey, nil
}

func (v *vote) Verify(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	if transaction.RecipientID != sender.Address {
		return errors.Wrapf(ruleerrors.ErrInvalidRecipient, "vote transaction %s must be sent to its sender",
			transaction.ID)
	}
	err := requireZeroAmount(transaction)
	if err != nil {
		return err
	}

	for _, change := range transaction.Asset.Votes {
		_, publicKey, err := parseVoteChange(change)
		if err != nil {
			return err
		}
		err = v.checkDelegate(stagingArea, publicKey)
		if err != nil {
			return err
		}
	}

	_, err = v.changeVotes(sender.Votes, transaction.Asset.Votes)
	return err
}

func (v *vote) checkDelegate(stagingArea *model.StagingArea, publicKeyHex string) error {
	publicKey, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidVote, "vote for malformed public key %s", publicKeyHex)
	}
	delegate, err := v.accountManager.AccountByPublicKey(stagingArea, publicKey)
	if err != nil {
		if database.IsNotFoundError(err) {
			return errors.Wrapf(ruleerrors.ErrInvalidVote, "vote for unknown account %s", publicKeyHex)
		}
		return err
	}
	if !delegate.IsDelegate {
		return errors.Wrapf(ruleerrors.ErrInvalidVote, "vote for %s, which is not a delegate", publicKeyHex)
	}
	return nil
}

// changeVotes applies vote changes to a sorted vote list and returns the
// new sorted list
func (v *vote) changeVotes(current []string, changes []string) ([]string, error) {
	votes := make(map[string]struct{}, len(current)+len(changes))
	for _, publicKey := range current {
		votes[publicKey] = struct{}{}
	}
	for _, change := range changes {
		sign, publicKey, err := parseVoteChange(change)
		if err != nil {
			return nil, err
		}
		_, voted := votes[publicKey]
		switch {
		case sign == addVote && voted:
			return nil, errors.Wrapf(ruleerrors.ErrInvalidVote, "already voted for %s", publicKey)
		case sign == removeVote && !voted:
			return nil, errors.Wrapf(ruleerrors.ErrInvalidVote, "cannot remove a missing vote for %s", publicKey)
		case sign == addVote:
			votes[publicKey] = struct{}{}
		default:
			delete(votes, publicKey)
		}
	}
	if len(votes) > v.params.MaxVotesPerAccount {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidVote, "%d votes exceed the maximum of %d",
			len(votes), v.params.MaxVotesPerAccount)
	}

	if len(votes) == 0 {
		return nil, nil
	}
	result := make([]string, 0, len(votes))
	for publicKey := range votes {
		result = append(result, publicKey)
	}
	sort.Strings(result)
	return result, nil
}

func invertVoteChanges(changes []string) []string {
	inverted := make([]string, len(changes))
	for i, change := range changes {
		if change == "" {
			continue
		}
		sign := byte(addVote)
		if change[0] == addVote {
			sign = removeVote
		}
		inverted[i] = string(sign) + change[1:]
	}
	return inverted
}

func (v *vote) Apply(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	return v.updateVotes(stagingArea, sender, transaction.Asset.Votes, false)
}

func (v *vote) Undo(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	return v.updateVotes(stagingArea, sender, invertVoteChanges(transaction.Asset.Votes), false)
}

func (v *vote) ApplyUnconfirmed(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	return v.updateVotes(stagingArea, sender, transaction.Asset.Votes, true)
}

func (v *vote) UndoUnconfirmed(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	return v.updateVotes(stagingArea, sender, invertVoteChanges(transaction.Asset.Votes), true)
}

func (v *vote) updateVotes(stagingArea *model.StagingArea, sender *externalapi.DomainAccount,
	changes []string, unconfirmed bool) error {

	account, err := v.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	if unconfirmed {
		account.UnconfirmedVotes, err = v.changeVotes(account.UnconfirmedVotes, changes)
	} else {
		account.Votes, err = v.changeVotes(account.Votes, changes)
	}
	if err != nil {
		return err
	}
	v.accountManager.Save(stagingArea, account)
	return nil
}

func (v *vote) GetBytes(transaction *externalapi.DomainTransaction) ([]byte, error) {
	return []byte(strings.Join(transaction.Asset.Votes, "")), nil
}

func (v *vote) DBSave(transaction *externalapi.DomainTransaction) ([]byte, error) {
	return serialization.SerializeVotesAsset(transaction.Asset.Votes), nil
}

func (v *vote) DBRead(assetBytes []byte, transaction *externalapi.DomainTransaction) error {
	votes, err := serialization.DeserializeVotesAsset(assetBytes)
	if err != nil {
		return err
	}
	transaction.Asset.Votes = votes
	return nil
}
