// Package serialization encodes the records persisted by the consensus
// stores using the protobuf wire format. Zero values are omitted, as in
// proto3, so an unset field and a zero field decode identically.
package serialization

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

type fieldDecoder func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func decodeMessage(b []byte, decodeField fieldDecoder) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed field tag")
		}
		b = b[n:]

		n, err := decodeField(num, typ, b)
		if err != nil {
			return errors.Wrapf(err, "malformed field %d", num)
		}
		if n < 0 {
			return errors.Wrapf(protowire.ParseError(n), "malformed field %d", num)
		}
		b = b[n:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	return protowire.ConsumeFieldValue(num, typ, b), nil
}

func checkType(typ protowire.Type, expected protowire.Type) error {
	if typ != expected {
		return errors.Errorf("wire type %d, expected %d", typ, expected)
	}
	return nil
}

func appendUint64(b []byte, num protowire.Number, value uint64) []byte {
	if value == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

func appendInt64(b []byte, num protowire.Number, value int64) []byte {
	if value == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(value))
}

func appendBool(b []byte, num protowire.Number, value bool) []byte {
	if !value {
		return b
	}
	return appendUint64(b, num, 1)
}

func appendBytes(b []byte, num protowire.Number, value []byte) []byte {
	if len(value) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, value)
}

func appendString(b []byte, num protowire.Number, value string) []byte {
	if value == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, value)
}

// appendRepeatedString keeps empty entries so that element positions survive
func appendRepeatedString(b []byte, num protowire.Number, values []string) []byte {
	for _, value := range values {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, value)
	}
	return b
}

func appendRepeatedBytes(b []byte, num protowire.Number, values [][]byte) []byte {
	for _, value := range values {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, value)
	}
	return b
}

func consumeUint64(typ protowire.Type, b []byte, dst *uint64) (int, error) {
	if err := checkType(typ, protowire.VarintType); err != nil {
		return 0, err
	}
	value, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = value
	}
	return n, nil
}

func consumeUint32(typ protowire.Type, b []byte, dst *uint32) (int, error) {
	var value uint64
	n, err := consumeUint64(typ, b, &value)
	if err != nil || n < 0 {
		return n, err
	}
	if value > uint64(^uint32(0)) {
		return 0, errors.Errorf("value %d overflows uint32", value)
	}
	*dst = uint32(value)
	return n, nil
}

func consumeInt64(typ protowire.Type, b []byte, dst *int64) (int, error) {
	var value uint64
	n, err := consumeUint64(typ, b, &value)
	if err != nil || n < 0 {
		return n, err
	}
	*dst = protowire.DecodeZigZag(value)
	return n, nil
}

func consumeBool(typ protowire.Type, b []byte, dst *bool) (int, error) {
	var value uint64
	n, err := consumeUint64(typ, b, &value)
	if err != nil || n < 0 {
		return n, err
	}
	*dst = protowire.DecodeBool(value)
	return n, nil
}

func consumeBytes(typ protowire.Type, b []byte, dst *[]byte) (int, error) {
	if err := checkType(typ, protowire.BytesType); err != nil {
		return 0, err
	}
	value, n := protowire.ConsumeBytes(b)
	if n >= 0 {
		*dst = append([]byte(nil), value...)
	}
	return n, nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	if err := checkType(typ, protowire.BytesType); err != nil {
		return 0, err
	}
	value, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = value
	}
	return n, nil
}

func consumeRepeatedString(typ protowire.Type, b []byte, dst *[]string) (int, error) {
	var value string
	n, err := consumeString(typ, b, &value)
	if err != nil || n < 0 {
		return n, err
	}
	*dst = append(*dst, value)
	return n, nil
}

func consumeRepeatedBytes(typ protowire.Type, b []byte, dst *[][]byte) (int, error) {
	var value []byte
	n, err := consumeBytes(typ, b, &value)
	if err != nil || n < 0 {
		return n, err
	}
	*dst = append(*dst, value)
	return n, nil
}
