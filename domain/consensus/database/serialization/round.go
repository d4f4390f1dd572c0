package serialization

import (
	"sort"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

// SerializeRoundRecord encodes a forging record
func SerializeRoundRecord(record *externalapi.DomainRoundRecord) []byte {
	var b []byte
	b = appendUint64(b, 1, record.Height)
	b = appendBytes(b, 2, record.GeneratorPublicKey)
	b = appendUint64(b, 3, record.Fee)
	b = appendUint64(b, 4, record.Reward)
	return b
}

// DeserializeRoundRecord decodes a forging record
func DeserializeRoundRecord(b []byte) (*externalapi.DomainRoundRecord, error) {
	record := &externalapi.DomainRoundRecord{}
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint64(typ, b, &record.Height)
		case 2:
			return consumeBytes(typ, b, &record.GeneratorPublicKey)
		case 3:
			return consumeUint64(typ, b, &record.Fee)
		case 4:
			return consumeUint64(typ, b, &record.Reward)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SerializeVoteWeights encodes a delegate address to vote weight map.
// Entries are written in address order so equal maps encode equally.
func SerializeVoteWeights(voteWeights map[string]int64) []byte {
	addresses := make([]string, 0, len(voteWeights))
	for address := range voteWeights {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	var b []byte
	for _, address := range addresses {
		var entry []byte
		entry = appendString(entry, 1, address)
		entry = appendInt64(entry, 2, voteWeights[address])

		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

// DeserializeVoteWeights decodes a delegate address to vote weight map
func DeserializeVoteWeights(b []byte) (map[string]int64, error) {
	voteWeights := make(map[string]int64)
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return skipField(num, typ, b)
		}
		var entryBytes []byte
		n, err := consumeBytes(typ, b, &entryBytes)
		if err != nil || n < 0 {
			return n, err
		}
		var address string
		var weight int64
		err = decodeMessage(entryBytes, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			switch num {
			case 1:
				return consumeString(typ, b, &address)
			case 2:
				return consumeInt64(typ, b, &weight)
			}
			return skipField(num, typ, b)
		})
		if err != nil {
			return 0, err
		}
		voteWeights[address] = weight
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return voteWeights, nil
}

// SerializeUint64 encodes a single unsigned integer record
func SerializeUint64(value uint64) []byte {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

// DeserializeUint64 decodes a single unsigned integer record
func DeserializeUint64(b []byte) (uint64, error) {
	var value uint64
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeUint64(typ, b, &value)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}
