package hashing

import (
	"bytes"
	"encoding/binary"

	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/util/binaryserializer"
	"github.com/pkg/errors"
)

// BlockBytes returns the canonical serialization of block's header. The
// signature is appended only if includeSignature is set.
func BlockBytes(block *externalapi.DomainBlock, includeSignature bool) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := binaryserializer.PutUint32(buf, binary.LittleEndian, block.Version)
	if err != nil {
		return nil, err
	}
	err = binaryserializer.PutUint32(buf, binary.LittleEndian, block.Timestamp)
	if err != nil {
		return nil, err
	}

	var previousBlock uint64
	if block.PreviousBlock != "" {
		previousBlock, err = ParseID(block.PreviousBlock)
		if err != nil {
			return nil, err
		}
	}
	err = binaryserializer.PutUint64(buf, binary.BigEndian, previousBlock)
	if err != nil {
		return nil, err
	}

	err = binaryserializer.PutUint32(buf, binary.LittleEndian, block.NumberOfTransactions)
	if err != nil {
		return nil, err
	}
	for _, value := range []uint64{block.TotalAmount, block.TotalFee, block.Reward} {
		err = binaryserializer.PutUint64(buf, binary.LittleEndian, value)
		if err != nil {
			return nil, err
		}
	}
	err = binaryserializer.PutUint32(buf, binary.LittleEndian, block.PayloadLength)
	if err != nil {
		return nil, err
	}

	if len(block.PayloadHash) != HashSize {
		return nil, errors.Errorf("payload hash is %d bytes long, expected %d",
			len(block.PayloadHash), HashSize)
	}
	buf.Write(block.PayloadHash)
	buf.Write(block.GeneratorPublicKey)

	if includeSignature {
		buf.Write(block.BlockSignature)
	}
	return buf.Bytes(), nil
}

// BlockSigningHash returns the digest signed by the block's generator
func BlockSigningHash(block *externalapi.DomainBlock) ([]byte, error) {
	blockBytes, err := BlockBytes(block, false)
	if err != nil {
		return nil, err
	}
	return Hash(blockBytes), nil
}

// BlockID returns the id of a signed block
func BlockID(block *externalapi.DomainBlock) (string, error) {
	blockBytes, err := BlockBytes(block, true)
	if err != nil {
		return "", err
	}
	return IDFromHash(Hash(blockBytes)), nil
}
