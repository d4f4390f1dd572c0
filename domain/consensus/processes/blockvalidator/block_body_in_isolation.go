package blockvalidator

import (
	"bytes"
	"crypto/sha256"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

func (v *blockValidator) validateBodyInIsolation(block *externalapi.DomainBlock) error {
	err := v.checkTransactionCount(block)
	if err != nil {
		return err
	}
	err = v.checkDuplicateTransactions(block)
	if err != nil {
		return err
	}
	return v.checkPayload(block)
}

func (v *blockValidator) checkTransactionCount(block *externalapi.DomainBlock) error {
	if len(block.Transactions) > v.params.MaxTxsPerBlock {
		return errors.Wrapf(ruleerrors.ErrTooManyTransactions, "block %s has %d transactions, "+
			"the maximum is %d", block.ID, len(block.Transactions), v.params.MaxTxsPerBlock)
	}
	if int(block.NumberOfTransactions) != len(block.Transactions) {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockTotals, "block %s declares %d transactions but "+
			"carries %d", block.ID, block.NumberOfTransactions, len(block.Transactions))
	}
	return nil
}

func (v *blockValidator) checkDuplicateTransactions(block *externalapi.DomainBlock) error {
	ids := make(map[string]struct{}, len(block.Transactions))
	for _, transaction := range block.Transactions {
		if _, ok := ids[transaction.ID]; ok {
			return errors.Wrapf(ruleerrors.ErrDuplicateTransaction, "block %s contains transaction %s twice",
				block.ID, transaction.ID)
		}
		ids[transaction.ID] = struct{}{}
	}
	return nil
}

// checkPayload recomputes the payload length, payload hash and totals
func (v *blockValidator) checkPayload(block *externalapi.DomainBlock) error {
	payloadHash := sha256.New()
	payloadLength := 0
	var totalAmount, totalFee uint64
	for _, transaction := range block.Transactions {
		transactionBytes, err := v.transactionLogic.GetBytes(transaction, false, false)
		if err != nil {
			return err
		}
		payloadLength += len(transactionBytes)
		payloadHash.Write(transactionBytes)
		totalAmount += transaction.Amount
		totalFee += transaction.Fee
	}

	if payloadLength > v.params.MaxPayloadLength {
		return errors.Wrapf(ruleerrors.ErrPayloadTooLarge, "block %s has a %d bytes long payload, "+
			"the maximum is %d", block.ID, payloadLength, v.params.MaxPayloadLength)
	}
	if uint32(payloadLength) != block.PayloadLength {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockTotals, "block %s declares a payload length of %d, "+
			"found %d", block.ID, block.PayloadLength, payloadLength)
	}
	if !bytes.Equal(payloadHash.Sum(nil), block.PayloadHash) {
		return errors.Wrapf(ruleerrors.ErrInvalidPayloadHash, "block %s", block.ID)
	}
	if totalAmount != block.TotalAmount || totalFee != block.TotalFee {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockTotals, "block %s declares amount %d and fee %d, "+
			"found %d and %d", block.ID, block.TotalAmount, block.TotalFee, totalAmount, totalFee)
	}
	return nil
}
