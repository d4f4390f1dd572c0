package externalapi

import "bytes"

// DomainBlock represents a signed block of the chain
type DomainBlock struct {
	ID                   string
	Version              uint32
	Height               uint64
	PreviousBlock        string
	Timestamp            uint32
	NumberOfTransactions uint32
	TotalAmount          uint64
	TotalFee             uint64
	Reward               uint64
	PayloadLength        uint32
	PayloadHash          []byte
	GeneratorPublicKey   []byte
	BlockSignature       []byte

	Transactions []*DomainTransaction
}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	if block == nil {
		return nil
	}

	clone := *block
	clone.PayloadHash = cloneBytes(block.PayloadHash)
	clone.GeneratorPublicKey = cloneBytes(block.GeneratorPublicKey)
	clone.BlockSignature = cloneBytes(block.BlockSignature)
	if block.Transactions != nil {
		clone.Transactions = make([]*DomainTransaction, len(block.Transactions))
		for i, tx := range block.Transactions {
			clone.Transactions[i] = tx.Clone()
		}
	}
	return &clone
}

// Equal returns whether block equals to other
func (block *DomainBlock) Equal(other *DomainBlock) bool {
	if block == nil || other == nil {
		return block == other
	}

	if block.ID != other.ID ||
		block.Version != other.Version ||
		block.Height != other.Height ||
		block.PreviousBlock != other.PreviousBlock ||
		block.Timestamp != other.Timestamp ||
		block.NumberOfTransactions != other.NumberOfTransactions ||
		block.TotalAmount != other.TotalAmount ||
		block.TotalFee != other.TotalFee ||
		block.Reward != other.Reward ||
		block.PayloadLength != other.PayloadLength ||
		!bytes.Equal(block.PayloadHash, other.PayloadHash) ||
		!bytes.Equal(block.GeneratorPublicKey, other.GeneratorPublicKey) ||
		!bytes.Equal(block.BlockSignature, other.BlockSignature) {
		return false
	}

	if len(block.Transactions) != len(other.Transactions) {
		return false
	}
	for i, tx := range block.Transactions {
		if !tx.Equal(other.Transactions[i]) {
			return false
		}
	}
	return true
}
