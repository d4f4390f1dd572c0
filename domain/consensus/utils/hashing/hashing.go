// Package hashing holds the hash primitive shared by block ids, transaction
// ids, address derivation and the forging order shuffle.
package hashing

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// HashSize is the size in bytes of a digest returned by Hash
const HashSize = sha256.Size

// AddressSuffix terminates every textual address
const AddressSuffix = "R"

// Hash returns the sha256 digest of data
func Hash(data []byte) []byte {
	digest := sha256.Sum256(data)
	return digest[:]
}

// IDFromHash derives a numeric identifier from a digest: the first 8 bytes
// read in reverse order as a big-endian uint64, rendered in base 10.
func IDFromHash(hash []byte) string {
	return strconv.FormatUint(binary.LittleEndian.Uint64(hash[:8]), 10)
}

// AddressFromPublicKey derives the address owned by publicKey
func AddressFromPublicKey(publicKey []byte) string {
	return IDFromHash(Hash(publicKey)) + AddressSuffix
}

// ParseAddress returns the numeric part of address
func ParseAddress(address string) (uint64, error) {
	if !strings.HasSuffix(address, AddressSuffix) {
		return 0, errors.Errorf("address %s does not end with %s", address, AddressSuffix)
	}
	numeric := strings.TrimSuffix(address, AddressSuffix)
	if numeric == "" || (len(numeric) > 1 && numeric[0] == '0') {
		return 0, errors.Errorf("address %s is malformed", address)
	}
	value, err := strconv.ParseUint(numeric, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "address %s is malformed", address)
	}
	return value, nil
}

// IsValidAddress returns whether address is well formed
func IsValidAddress(address string) bool {
	_, err := ParseAddress(address)
	return err == nil
}

// ParseID returns the numeric value of a block id
func ParseID(id string) (uint64, error) {
	value, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "id %s is malformed", id)
	}
	return value, nil
}
