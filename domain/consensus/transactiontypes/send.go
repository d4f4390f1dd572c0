package transactiontypes

import (
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

// send transfers Amount from the sender to the recipient. The recipient
// is only credited once the transaction is confirmed.
type send struct {
	baseType
}

// NewSend returns the handler of send transactions
func NewSend(params *dposconfig.Params, accountManager model.AccountManager) model.TransactionType {
	return &send{baseType{params: params, accountManager: accountManager}}
}

func (s *send) Type() externalapi.TransactionType {
	return externalapi.TransactionTypeSend
}

func (s *send) CalculateFee(*externalapi.DomainTransaction, *externalapi.DomainAccount, uint64) uint64 {
	return s.params.Fees.Send
}

func (s *send) ObjectNormalize(transaction *externalapi.DomainTransaction) error {
	return checkAssetKinds(transaction, false, false, false, false)
}

func (s *send) Verify(_ *model.StagingArea, transaction *externalapi.DomainTransaction, _ *externalapi.DomainAccount) error {
	if !hashing.IsValidAddress(transaction.RecipientID) {
		return errors.Wrapf(ruleerrors.ErrInvalidRecipient, "transaction %s has an invalid recipient %q",
			transaction.ID, transaction.RecipientID)
	}
	if transaction.Amount == 0 {
		return errors.Wrapf(ruleerrors.ErrInvalidAmount, "transaction %s sends nothing", transaction.ID)
	}
	return nil
}

func (s *send) Apply(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, _ *externalapi.DomainAccount) error {

	_, err := s.accountManager.Merge(stagingArea, transaction.RecipientID, &model.AccountDiff{
		Balance:            int64(transaction.Amount),
		UnconfirmedBalance: int64(transaction.Amount),
	})
	return err
}

func (s *send) Undo(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, _ *externalapi.DomainAccount) error {

	_, err := s.accountManager.Merge(stagingArea, transaction.RecipientID, &model.AccountDiff{
		Balance:            -int64(transaction.Amount),
		UnconfirmedBalance: -int64(transaction.Amount),
	})
	return err
}

func (s *send) ApplyUnconfirmed(*model.StagingArea, *externalapi.DomainTransaction, *externalapi.DomainAccount) error {
	return nil
}

func (s *send) UndoUnconfirmed(*model.StagingArea, *externalapi.DomainTransaction, *externalapi.DomainAccount) error {
	return nil
}

func (s *send) GetBytes(*externalapi.DomainTransaction) ([]byte, error) {
	return nil, nil
}

func (s *send) DBSave(*externalapi.DomainTransaction) ([]byte, error) {
	return nil, nil
}

func (s *send) DBRead([]byte, *externalapi.DomainTransaction) error {
	return nil
}
