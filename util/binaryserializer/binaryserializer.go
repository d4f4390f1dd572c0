package binaryserializer

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// scratchPool holds 8 byte buffers reused by the Put functions.
var scratchPool = make(chan []byte, 1024)

func borrow(size int) []byte {
	select {
	case buf := <-scratchPool:
		return buf[:size]
	default:
		return make([]byte, 8)[:size]
	}
}

func release(buf []byte) {
	select {
	case scratchPool <- buf[:8]:
	default:
	}
}

func write(w io.Writer, buf []byte) error {
	defer release(buf)
	_, err := w.Write(buf)
	return errors.WithStack(err)
}

// PutUint8 writes the provided uint8 to the given writer.
func PutUint8(w io.Writer, val uint8) error {
	buf := borrow(1)
	buf[0] = val
	return write(w, buf)
}

// PutUint32 writes val to w as four bytes in the given byte order.
func PutUint32(w io.Writer, byteOrder binary.ByteOrder, val uint32) error {
	buf := borrow(4)
	byteOrder.PutUint32(buf, val)
	return write(w, buf)
}

// PutUint64 writes val to w as eight bytes in the given byte order.
func PutUint64(w io.Writer, byteOrder binary.ByteOrder, val uint64) error {
	buf := borrow(8)
	byteOrder.PutUint64(buf, val)
	return write(w, buf)
}
