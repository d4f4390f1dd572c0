package hashing

import (
	"bytes"
	"encoding/binary"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/util/binaryserializer"
	"github.com/pkg/errors"
)

// TransactionBytes returns the canonical serialization of transaction.
// assetBytes is the type specific serialization of its asset.
// Co-signatures are never part of it.
func TransactionBytes(transaction *externalapi.DomainTransaction, assetBytes []byte,
	skipSignature, skipSecondSignature bool) ([]byte, error) {

	buf := &bytes.Buffer{}
	err := binaryserializer.PutUint8(buf, uint8(transaction.Type))
	if err != nil {
		return nil, err
	}
	err = binaryserializer.PutUint32(buf, binary.LittleEndian, transaction.Timestamp)
	if err != nil {
		return nil, err
	}
	buf.Write(transaction.SenderPublicKey)
	if len(transaction.RequesterPublicKey) > 0 {
		buf.Write(transaction.RequesterPublicKey)
	}

	var recipient uint64
	if transaction.RecipientID != "" {
		recipient, err = ParseAddress(transaction.RecipientID)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s", transaction.ID)
		}
	}
	err = binaryserializer.PutUint64(buf, binary.BigEndian, recipient)
	if err != nil {
		return nil, err
	}
	err = binaryserializer.PutUint64(buf, binary.LittleEndian, transaction.Amount)
	if err != nil {
		return nil, err
	}

	buf.Write(assetBytes)

	if !skipSignature {
		buf.Write(transaction.Signature)
	}
	if !skipSecondSignature {
		buf.Write(transaction.SignSignature)
	}
	return buf.Bytes(), nil
}

// TransactionSigningHash returns the digest signed by the sender, the
// requester and every co-signer
func TransactionSigningHash(transaction *externalapi.DomainTransaction, assetBytes []byte) ([]byte, error) {
	transactionBytes, err := TransactionBytes(transaction, assetBytes, true, true)
	if err != nil {
		return nil, err
	}
	return Hash(transactionBytes), nil
}

// TransactionSecondSigningHash returns the digest signed by the sender's
// second key. It covers the first signature.
func TransactionSecondSigningHash(transaction *externalapi.DomainTransaction, assetBytes []byte) ([]byte, error) {
	transactionBytes, err := TransactionBytes(transaction, assetBytes, false, true)
	if err != nil {
		return nil, err
	}
	return Hash(transactionBytes), nil
}

// TransactionID returns the id of a fully signed transaction
func TransactionID(transaction *externalapi.DomainTransaction, assetBytes []byte) (string, error) {
	transactionBytes, err := TransactionBytes(transaction, assetBytes, false, false)
	if err != nil {
		return "", err
	}
	return IDFromHash(Hash(transactionBytes)), nil
}
