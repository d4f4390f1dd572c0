package testutils

import (
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
)

// SignTransaction signs transaction with keyPair, and with secondKeyPair
// when it is not nil, and assigns its id. An empty SenderPublicKey is
// filled in from keyPair.
func SignTransaction(registry model.TransactionTypeRegistry, transaction *externalapi.DomainTransaction,
	keyPair, secondKeyPair *keys.KeyPair) error {

	if len(transaction.SenderPublicKey) == 0 {
		transaction.SenderPublicKey = keyPair.PublicKey
	}
	if transaction.SenderID == "" {
		transaction.SenderID = hashing.AddressFromPublicKey(transaction.SenderPublicKey)
	}

	handler, err := registry.Get(transaction.Type)
	if err != nil {
		return err
	}
	assetBytes, err := handler.GetBytes(transaction)
	if err != nil {
		return err
	}

	hash, err := hashing.TransactionSigningHash(transaction, assetBytes)
	if err != nil {
		return err
	}
	transaction.Signature = keyPair.Sign(hash)

	transaction.SignSignature = nil
	if secondKeyPair != nil {
		secondHash, err := hashing.TransactionSecondSigningHash(transaction, assetBytes)
		if err != nil {
			return err
		}
		transaction.SignSignature = secondKeyPair.Sign(secondHash)
	}

	transaction.ID, err = hashing.TransactionID(transaction, assetBytes)
	return err
}

// CoSignTransaction appends the co-signature of keyPair to transaction
func CoSignTransaction(registry model.TransactionTypeRegistry, transaction *externalapi.DomainTransaction,
	keyPair *keys.KeyPair) error {

	handler, err := registry.Get(transaction.Type)
	if err != nil {
		return err
	}
	assetBytes, err := handler.GetBytes(transaction)
	if err != nil {
		return err
	}
	hash, err := hashing.TransactionSigningHash(transaction, assetBytes)
	if err != nil {
		return err
	}
	transaction.Signatures = append(transaction.Signatures, keyPair.Sign(hash))
	return nil
}
