package transactionlogic

import (
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

func spent(transaction *externalapi.DomainTransaction) int64 {
	return int64(transaction.Amount + transaction.Fee)
}

// Apply debits the sender's confirmed balance and applies the type
// specific changes
func (tl *transactionLogic) Apply(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	block *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	handler, err := tl.handler(transaction)
	if err != nil {
		return err
	}
	ready, err := tl.Ready(transaction, sender)
	if err != nil {
		return err
	}
	if !ready {
		return errors.Wrapf(ruleerrors.ErrInvalidMultisignatures, "transaction %s is not ready", transaction.ID)
	}

	diff := &model.AccountDiff{Balance: -spent(transaction)}
	_, err = tl.accountManager.Merge(stagingArea, sender.Address, diff)
	if err != nil {
		return err
	}
	err = handler.Apply(stagingArea, transaction, block, sender)
	if err != nil {
		_, revertErr := tl.accountManager.Merge(stagingArea, sender.Address, diff.Negate())
		if revertErr != nil {
			return errors.Wrapf(revertErr, "failed reverting the debit of transaction %s after: %s",
				transaction.ID, err)
		}
		return err
	}
	log.Tracef("Applied transaction %s of %s", transaction.ID, sender.Address)
	return nil
}

// Undo reverts Apply
func (tl *transactionLogic) Undo(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	block *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	handler, err := tl.handler(transaction)
	if err != nil {
		return err
	}
	err = handler.Undo(stagingArea, transaction, block, sender)
	if err != nil {
		return err
	}
	_, err = tl.accountManager.Merge(stagingArea, sender.Address, &model.AccountDiff{Balance: spent(transaction)})
	if err != nil {
		return err
	}
	log.Tracef("Undid transaction %s of %s", transaction.ID, sender.Address)
	return nil
}

// ApplyUnconfirmed debits the sender's unconfirmed balance and applies the
// type specific unconfirmed changes
func (tl *transactionLogic) ApplyUnconfirmed(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	handler, err := tl.handler(transaction)
	if err != nil {
		return err
	}

	diff := &model.AccountDiff{UnconfirmedBalance: -spent(transaction)}
	_, err = tl.accountManager.Merge(stagingArea, sender.Address, diff)
	if err != nil {
		return err
	}
	err = handler.ApplyUnconfirmed(stagingArea, transaction, sender)
	if err != nil {
		_, revertErr := tl.accountManager.Merge(stagingArea, sender.Address, diff.Negate())
		if revertErr != nil {
			return errors.Wrapf(revertErr, "failed reverting the unconfirmed debit of transaction %s after: %s",
				transaction.ID, err)
		}
		return err
	}
	return nil
}

// UndoUnconfirmed reverts ApplyUnconfirmed
func (tl *transactionLogic) UndoUnconfirmed(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	handler, err := tl.handler(transaction)
	if err != nil {
		return err
	}
	err = handler.UndoUnconfirmed(stagingArea, transaction, sender)
	if err != nil {
		return err
	}
	_, err = tl.accountManager.Merge(stagingArea, sender.Address,
		&model.AccountDiff{UnconfirmedBalance: spent(transaction)})
	return err
}
