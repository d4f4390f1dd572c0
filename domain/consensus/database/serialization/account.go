package serialization

import (
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

// SerializeAccount encodes an account record
func SerializeAccount(account *externalapi.DomainAccount) []byte {
	var b []byte
	b = appendString(b, 1, account.Address)
	b = appendBytes(b, 2, account.PublicKey)
	b = appendInt64(b, 3, account.Balance)
	b = appendInt64(b, 4, account.UnconfirmedBalance)
	b = appendBool(b, 5, account.IsDelegate)
	b = appendBool(b, 6, account.UnconfirmedIsDelegate)
	b = appendString(b, 7, account.Username)
	b = appendString(b, 8, account.UnconfirmedUsername)
	b = appendBool(b, 9, account.SecondSignature)
	b = appendBool(b, 10, account.UnconfirmedSecondSignature)
	b = appendBytes(b, 11, account.SecondPublicKey)
	b = appendRepeatedString(b, 12, account.Votes)
	b = appendRepeatedString(b, 13, account.UnconfirmedVotes)
	b = appendRepeatedString(b, 14, account.Multisignatures)
	b = appendRepeatedString(b, 15, account.UnconfirmedMultisignatures)
	b = appendUint64(b, 16, uint64(account.MultiMin))
	b = appendUint64(b, 17, uint64(account.UnconfirmedMultiMin))
	b = appendUint64(b, 18, uint64(account.MultiLifetime))
	b = appendUint64(b, 19, uint64(account.UnconfirmedMultiLifetime))
	b = appendInt64(b, 20, account.ProducedBlocks)
	b = appendInt64(b, 21, account.MissedBlocks)
	b = appendInt64(b, 22, account.Fees)
	b = appendInt64(b, 23, account.Rewards)
	b = appendInt64(b, 24, account.VoteWeight)
	return b
}

// DeserializeAccount decodes an account record
func DeserializeAccount(b []byte) (*externalapi.DomainAccount, error) {
	account := &externalapi.DomainAccount{}
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &account.Address)
		case 2:
			return consumeBytes(typ, b, &account.PublicKey)
		case 3:
			return consumeInt64(typ, b, &account.Balance)
		case 4:
			return consumeInt64(typ, b, &account.UnconfirmedBalance)
		case 5:
			return consumeBool(typ, b, &account.IsDelegate)
		case 6:
			return consumeBool(typ, b, &account.UnconfirmedIsDelegate)
		case 7:
			return consumeString(typ, b, &account.Username)
		case 8:
			return consumeString(typ, b, &account.UnconfirmedUsername)
		case 9:
			return consumeBool(typ, b, &account.SecondSignature)
		case 10:
			return consumeBool(typ, b, &account.UnconfirmedSecondSignature)
		case 11:
			return consumeBytes(typ, b, &account.SecondPublicKey)
		case 12:
			return consumeRepeatedString(typ, b, &account.Votes)
		case 13:
			return consumeRepeatedString(typ, b, &account.UnconfirmedVotes)
		case 14:
			return consumeRepeatedString(typ, b, &account.Multisignatures)
		case 15:
			return consumeRepeatedString(typ, b, &account.UnconfirmedMultisignatures)
		case 16:
			return consumeUint32(typ, b, &account.MultiMin)
		case 17:
			return consumeUint32(typ, b, &account.UnconfirmedMultiMin)
		case 18:
			return consumeUint32(typ, b, &account.MultiLifetime)
		case 19:
			return consumeUint32(typ, b, &account.UnconfirmedMultiLifetime)
		case 20:
			return consumeInt64(typ, b, &account.ProducedBlocks)
		case 21:
			return consumeInt64(typ, b, &account.MissedBlocks)
		case 22:
			return consumeInt64(typ, b, &account.Fees)
		case 23:
			return consumeInt64(typ, b, &account.Rewards)
		case 24:
			return consumeInt64(typ, b, &account.VoteWeight)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
