package serialization

import (
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

// SerializeBlock encodes a block header record along with the ids of the
// block's transactions
func SerializeBlock(block *externalapi.DomainBlock, transactionIDs []string) []byte {
	var b []byte
	b = appendString(b, 1, block.ID)
	b = appendUint64(b, 2, uint64(block.Version))
	b = appendUint64(b, 3, block.Height)
	b = appendString(b, 4, block.PreviousBlock)
	b = appendUint64(b, 5, uint64(block.Timestamp))
	b = appendUint64(b, 6, uint64(block.NumberOfTransactions))
	b = appendUint64(b, 7, block.TotalAmount)
	b = appendUint64(b, 8, block.TotalFee)
	b = appendUint64(b, 9, block.Reward)
	b = appendUint64(b, 10, uint64(block.PayloadLength))
	b = appendBytes(b, 11, block.PayloadHash)
	b = appendBytes(b, 12, block.GeneratorPublicKey)
	b = appendBytes(b, 13, block.BlockSignature)
	b = appendRepeatedString(b, 14, transactionIDs)
	return b
}

// DeserializeBlock decodes a block header record. The returned block
// carries no transactions; their ids are returned alongside it.
func DeserializeBlock(b []byte) (*externalapi.DomainBlock, []string, error) {
	block := &externalapi.DomainBlock{}
	var transactionIDs []string
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &block.ID)
		case 2:
			return consumeUint32(typ, b, &block.Version)
		case 3:
			return consumeUint64(typ, b, &block.Height)
		case 4:
			return consumeString(typ, b, &block.PreviousBlock)
		case 5:
			return consumeUint32(typ, b, &block.Timestamp)
		case 6:
			return consumeUint32(typ, b, &block.NumberOfTransactions)
		case 7:
			return consumeUint64(typ, b, &block.TotalAmount)
		case 8:
			return consumeUint64(typ, b, &block.TotalFee)
		case 9:
			return consumeUint64(typ, b, &block.Reward)
		case 10:
			return consumeUint32(typ, b, &block.PayloadLength)
		case 11:
			return consumeBytes(typ, b, &block.PayloadHash)
		case 12:
			return consumeBytes(typ, b, &block.GeneratorPublicKey)
		case 13:
			return consumeBytes(typ, b, &block.BlockSignature)
		case 14:
			return consumeRepeatedString(typ, b, &transactionIDs)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return nil, nil, err
	}
	return block, transactionIDs, nil
}
