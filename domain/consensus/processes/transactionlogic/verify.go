package transactionlogic

import (
	"bytes"
	"encoding/hex"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/pkg/errors"
)

// Process resolves the sender fields of transaction and checks its id
func (tl *transactionLogic) Process(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender, requester *externalapi.DomainAccount) error {

	if sender == nil {
		return errors.Wrapf(ruleerrors.ErrMissingSender, "transaction %s has no sender", transaction.ID)
	}
	if len(transaction.RequesterPublicKey) > 0 && requester == nil {
		return errors.Wrapf(ruleerrors.ErrMissingRequester, "requester of transaction %s is unknown",
			transaction.ID)
	}

	if transaction.SenderID == "" {
		transaction.SenderID = sender.Address
	}
	if transaction.SenderID != sender.Address {
		return errors.Wrapf(ruleerrors.ErrSenderMismatch, "transaction %s claims sender %s, signed by %s",
			transaction.ID, transaction.SenderID, sender.Address)
	}

	id, err := tl.GetID(transaction)
	if err != nil {
		return err
	}
	if transaction.ID != id {
		return errors.Wrapf(ruleerrors.ErrInvalidTransactionID, "transaction %s has id %s", id, transaction.ID)
	}

	handler, err := tl.handler(transaction)
	if err != nil {
		return err
	}
	return handler.Process(stagingArea, transaction, sender)
}

// ObjectNormalize checks the shape of transaction
func (tl *transactionLogic) ObjectNormalize(transaction *externalapi.DomainTransaction) error {
	if len(transaction.SenderPublicKey) != keys.PublicKeySize {
		return errors.Wrapf(ruleerrors.ErrMissingSender, "transaction %s has a %d bytes long sender public key",
			transaction.ID, len(transaction.SenderPublicKey))
	}
	if len(transaction.RequesterPublicKey) != 0 && len(transaction.RequesterPublicKey) != keys.PublicKeySize {
		return errors.Wrapf(ruleerrors.ErrInvalidRequester, "transaction %s has a %d bytes long requester "+
			"public key", transaction.ID, len(transaction.RequesterPublicKey))
	}
	if len(transaction.Signature) != keys.SignatureSize {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "transaction %s has a %d bytes long signature",
			transaction.ID, len(transaction.Signature))
	}
	if len(transaction.SignSignature) != 0 && len(transaction.SignSignature) != keys.SignatureSize {
		return errors.Wrapf(ruleerrors.ErrInvalidSecondSignature, "transaction %s has a %d bytes long "+
			"second signature", transaction.ID, len(transaction.SignSignature))
	}
	if transaction.RecipientID != "" && !hashing.IsValidAddress(transaction.RecipientID) {
		return errors.Wrapf(ruleerrors.ErrInvalidRecipient, "transaction %s has a malformed recipient %q",
			transaction.ID, transaction.RecipientID)
	}
	if transaction.Amount > tl.params.TotalAmount {
		return errors.Wrapf(ruleerrors.ErrInvalidAmount, "transaction %s sends %d, more than the total supply",
			transaction.ID, transaction.Amount)
	}

	handler, err := tl.handler(transaction)
	if err != nil {
		return err
	}
	return handler.ObjectNormalize(transaction)
}

// Verify checks transaction against the rules every type shares and then
// against its type's rules
func (tl *transactionLogic) Verify(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender, requester *externalapi.DomainAccount, height uint64) error {

	if sender == nil {
		return errors.Wrapf(ruleerrors.ErrMissingSender, "transaction %s has no sender", transaction.ID)
	}
	handler, err := tl.handler(transaction)
	if err != nil {
		return err
	}

	signer, err := tl.signerPublicKey(transaction, sender, requester)
	if err != nil {
		return err
	}

	if transaction.SenderID != sender.Address || sender.Address != hashing.AddressFromPublicKey(transaction.SenderPublicKey) {
		return errors.Wrapf(ruleerrors.ErrSenderMismatch, "transaction %s claims sender %s, signed by %s",
			transaction.ID, transaction.SenderID, sender.Address)
	}

	assetBytes, err := handler.GetBytes(transaction)
	if err != nil {
		return err
	}
	err = tl.verifySignatures(transaction, sender, signer, assetBytes)
	if err != nil {
		return err
	}

	fee := handler.CalculateFee(transaction, sender, height)
	if transaction.Fee != fee {
		return errors.Wrapf(ruleerrors.ErrInvalidFee, "transaction %s pays a fee of %d, expected %d",
			transaction.ID, transaction.Fee, fee)
	}

	currentSlot := tl.slots.CurrentSlot(tl.now())
	if tl.slots.SlotNumber(transaction.Timestamp) > currentSlot {
		return errors.Wrapf(ruleerrors.ErrInvalidTimestamp, "transaction %s is timestamped in slot %d, "+
			"after the current slot %d", transaction.ID, tl.slots.SlotNumber(transaction.Timestamp), currentSlot)
	}

	confirmed, err := tl.IsConfirmed(stagingArea, transaction.ID)
	if err != nil {
		return err
	}
	if confirmed {
		return errors.Wrapf(ruleerrors.ErrDuplicateTransaction, "transaction %s is already confirmed",
			transaction.ID)
	}

	return handler.Verify(stagingArea, transaction, sender)
}

// signerPublicKey returns the key the transaction's signature must verify
// against. A requester may sign on behalf of a multisignature account it
// belongs to.
func (tl *transactionLogic) signerPublicKey(transaction *externalapi.DomainTransaction,
	sender, requester *externalapi.DomainAccount) ([]byte, error) {

	if len(transaction.RequesterPublicKey) == 0 {
		return transaction.SenderPublicKey, nil
	}
	if !sender.IsMultisignature() {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidRequester, "transaction %s has a requester but "+
			"%s has no keysgroup", transaction.ID, sender.Address)
	}
	if requester == nil {
		return nil, errors.Wrapf(ruleerrors.ErrMissingRequester, "requester of transaction %s is unknown",
			transaction.ID)
	}
	requesterKey := hex.EncodeToString(transaction.RequesterPublicKey)
	for _, member := range sender.Multisignatures {
		if member == requesterKey {
			return transaction.RequesterPublicKey, nil
		}
	}
	return nil, errors.Wrapf(ruleerrors.ErrInvalidRequester, "requester %s of transaction %s is not in "+
		"the keysgroup of %s", requesterKey, transaction.ID, sender.Address)
}

func (tl *transactionLogic) verifySignatures(transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount, signer []byte, assetBytes []byte) error {

	hash, err := hashing.TransactionSigningHash(transaction, assetBytes)
	if err != nil {
		return err
	}
	if !keys.Verify(hash, transaction.Signature, signer) {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "transaction %s", transaction.ID)
	}

	switch {
	case sender.SecondSignature:
		secondHash, err := hashing.TransactionSecondSigningHash(transaction, assetBytes)
		if err != nil {
			return err
		}
		if !keys.Verify(secondHash, transaction.SignSignature, sender.SecondPublicKey) {
			return errors.Wrapf(ruleerrors.ErrInvalidSecondSignature, "transaction %s", transaction.ID)
		}
	case len(transaction.SignSignature) > 0:
		return errors.Wrapf(ruleerrors.ErrInvalidSecondSignature, "transaction %s carries a second signature "+
			"but %s has none registered", transaction.ID, sender.Address)
	}

	// Keysgroup registrations check their co-signatures against the new
	// keysgroup in their own handler
	if !sender.IsMultisignature() || transaction.Type == externalapi.TransactionTypeMultisignature {
		return nil
	}
	return verifyCoSignatures(transaction, hash, sender.Multisignatures, signer)
}

// verifyCoSignatures checks that every co-signature belongs to a distinct
// keysgroup member other than the signer
func verifyCoSignatures(transaction *externalapi.DomainTransaction, hash []byte,
	keysgroup []string, signer []byte) error {

	members := make([][]byte, 0, len(keysgroup))
	for _, memberHex := range keysgroup {
		member, err := keys.ParsePublicKey(memberHex)
		if err != nil {
			return errors.Wrapf(ruleerrors.ErrInvalidMultisignatures, "keysgroup member %s: %s", memberHex, err)
		}
		members = append(members, member)
	}

	signed := make([]bool, len(members))
	for _, signature := range transaction.Signatures {
		found := false
		for i, member := range members {
			if signed[i] || bytes.Equal(member, signer) {
				continue
			}
			if keys.Verify(hash, signature, member) {
				signed[i] = true
				found = true
				break
			}
		}
		if !found {
			return errors.Wrapf(ruleerrors.ErrInvalidMultisignatures, "transaction %s carries a co-signature "+
				"of no remaining keysgroup member", transaction.ID)
		}
	}
	return nil
}
