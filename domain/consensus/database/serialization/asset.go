package serialization

import (
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

// SerializeSignatureAsset encodes a second signature registration asset
func SerializeSignatureAsset(asset *externalapi.SignatureAsset) []byte {
	return appendBytes(nil, 1, asset.PublicKey)
}

// DeserializeSignatureAsset decodes a second signature registration asset
func DeserializeSignatureAsset(b []byte) (*externalapi.SignatureAsset, error) {
	asset := &externalapi.SignatureAsset{}
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeBytes(typ, b, &asset.PublicKey)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// SerializeDelegateAsset encodes a delegate registration asset
func SerializeDelegateAsset(asset *externalapi.DelegateAsset) []byte {
	return appendString(nil, 1, asset.Username)
}

// DeserializeDelegateAsset decodes a delegate registration asset
func DeserializeDelegateAsset(b []byte) (*externalapi.DelegateAsset, error) {
	asset := &externalapi.DelegateAsset{}
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &asset.Username)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// SerializeVotesAsset encodes the vote changes of a vote transaction
func SerializeVotesAsset(votes []string) []byte {
	return appendRepeatedString(nil, 1, votes)
}

// DeserializeVotesAsset decodes the vote changes of a vote transaction
func DeserializeVotesAsset(b []byte) ([]string, error) {
	var votes []string
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeRepeatedString(typ, b, &votes)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// SerializeMultisignatureAsset encodes a keysgroup registration asset
func SerializeMultisignatureAsset(asset *externalapi.MultisignatureAsset) []byte {
	var b []byte
	b = appendUint64(b, 1, uint64(asset.Min))
	b = appendUint64(b, 2, uint64(asset.Lifetime))
	b = appendRepeatedString(b, 3, asset.Keysgroup)
	return b
}

// DeserializeMultisignatureAsset decodes a keysgroup registration asset
func DeserializeMultisignatureAsset(b []byte) (*externalapi.MultisignatureAsset, error) {
	asset := &externalapi.MultisignatureAsset{}
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint32(typ, b, &asset.Min)
		case 2:
			return consumeUint32(typ, b, &asset.Lifetime)
		case 3:
			return consumeRepeatedString(typ, b, &asset.Keysgroup)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}
