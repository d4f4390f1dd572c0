package serialization

import (
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

// SerializeTransaction encodes a transaction record. The type specific
// asset is persisted separately.
func SerializeTransaction(transaction *externalapi.DomainTransaction) []byte {
	var b []byte
	b = appendString(b, 1, transaction.ID)
	b = appendUint64(b, 2, uint64(transaction.Type))
	b = appendUint64(b, 3, uint64(transaction.Timestamp))
	b = appendBytes(b, 4, transaction.SenderPublicKey)
	b = appendString(b, 5, transaction.SenderID)
	b = appendBytes(b, 6, transaction.RequesterPublicKey)
	b = appendString(b, 7, transaction.RecipientID)
	b = appendUint64(b, 8, transaction.Amount)
	b = appendUint64(b, 9, transaction.Fee)
	b = appendBytes(b, 10, transaction.Signature)
	b = appendBytes(b, 11, transaction.SignSignature)
	b = appendRepeatedBytes(b, 12, transaction.Signatures)
	b = appendString(b, 13, transaction.BlockID)
	b = appendUint64(b, 14, transaction.Height)
	return b
}

// DeserializeTransaction decodes a transaction record
func DeserializeTransaction(b []byte) (*externalapi.DomainTransaction, error) {
	transaction := &externalapi.DomainTransaction{}
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &transaction.ID)
		case 2:
			var transactionType uint32
			n, err := consumeUint32(typ, b, &transactionType)
			transaction.Type = externalapi.TransactionType(transactionType)
			return n, err
		case 3:
			return consumeUint32(typ, b, &transaction.Timestamp)
		case 4:
			return consumeBytes(typ, b, &transaction.SenderPublicKey)
		case 5:
			return consumeString(typ, b, &transaction.SenderID)
		case 6:
			return consumeBytes(typ, b, &transaction.RequesterPublicKey)
		case 7:
			return consumeString(typ, b, &transaction.RecipientID)
		case 8:
			return consumeUint64(typ, b, &transaction.Amount)
		case 9:
			return consumeUint64(typ, b, &transaction.Fee)
		case 10:
			return consumeBytes(typ, b, &transaction.Signature)
		case 11:
			return consumeBytes(typ, b, &transaction.SignSignature)
		case 12:
			return consumeRepeatedBytes(typ, b, &transaction.Signatures)
		case 13:
			return consumeString(typ, b, &transaction.BlockID)
		case 14:
			return consumeUint64(typ, b, &transaction.Height)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}
