package binaryserializer

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
)

func TestPutUint(t *testing.T) {
	buf := &bytes.Buffer{}
	err := PutUint8(buf, 7)
	if err != nil {
		t.Fatalf("PutUint8: %+v", err)
	}
	err = PutUint32(buf, binary.LittleEndian, 0x01020304)
	if err != nil {
		t.Fatalf("PutUint32: %+v", err)
	}
	err = PutUint64(buf, binary.BigEndian, 0x0102030405060708)
	if err != nil {
		t.Fatalf("PutUint64: %+v", err)
	}

	expected := []byte{7, 4, 3, 2, 1, 1, 2, 3, 4, 5, 6, 7, 8}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Fatalf("unexpected serialization: got %x, want %x", buf.Bytes(), expected)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestPutUintWriteError(t *testing.T) {
	err := PutUint64(failingWriter{}, binary.LittleEndian, 1)
	if err == nil {
		t.Fatalf("PutUint64 on a failing writer unexpectedly succeeded")
	}
}
