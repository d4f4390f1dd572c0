package blockvalidator

import (
	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/pkg/errors"
)

// validateBodyInContext runs every transaction of block through the
// transaction checks against the current ledger
func (v *blockValidator) validateBodyInContext(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	var invalidTransactions []ruleerrors.InvalidTransaction
	for _, transaction := range block.Transactions {
		err := v.validateTransaction(stagingArea, transaction, block.Height)
		if err != nil {
			if !ruleerrors.IsRuleError(err) {
				return err
			}
			invalidTransactions = append(invalidTransactions,
				ruleerrors.InvalidTransaction{TransactionID: transaction.ID, Error: err})
		}
	}
	if len(invalidTransactions) > 0 {
		return ruleerrors.NewErrInvalidTransactionsInNewBlock(invalidTransactions)
	}
	return nil
}

func (v *blockValidator) validateTransaction(stagingArea *model.StagingArea,
	transaction *externalapi.DomainTransaction, height uint64) error {

	err := v.transactionLogic.ObjectNormalize(transaction)
	if err != nil {
		return err
	}
	sender, err := v.lookupAccount(stagingArea, transaction.SenderPublicKey)
	if err != nil {
		return err
	}
	var requester *externalapi.DomainAccount
	if len(transaction.RequesterPublicKey) > 0 {
		requester, err = v.accountManager.AccountByPublicKey(stagingArea, transaction.RequesterPublicKey)
		if database.IsNotFoundError(err) {
			return errors.Wrapf(ruleerrors.ErrMissingRequester, "requester %x of transaction %s has no account",
				transaction.RequesterPublicKey, transaction.ID)
		}
		if err != nil {
			return err
		}
	}

	err = v.transactionLogic.Process(stagingArea, transaction, sender, requester)
	if err != nil {
		return err
	}
	err = v.transactionLogic.Verify(stagingArea, transaction, sender, requester, height)
	if err != nil {
		return err
	}
	ready, err := v.transactionLogic.Ready(transaction, sender)
	if err != nil {
		return err
	}
	if !ready {
		return errors.Wrapf(ruleerrors.ErrInvalidMultisignatures, "transaction %s lacks co-signatures",
			transaction.ID)
	}
	return nil
}

// lookupAccount returns the account of publicKey, or an empty one that is
// not staged if it does not exist yet
func (v *blockValidator) lookupAccount(stagingArea *model.StagingArea,
	publicKey []byte) (*externalapi.DomainAccount, error) {

	account, err := v.accountManager.AccountByPublicKey(stagingArea, publicKey)
	if database.IsNotFoundError(err) {
		return &externalapi.DomainAccount{
			Address:   hashing.AddressFromPublicKey(publicKey),
			PublicKey: append([]byte(nil), publicKey...),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}
