package blockbuilder

import (
	"crypto/sha256"
	"sort"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/RiseVision/rise-node/infrastructure/logger"
)

type blockBuilder struct {
	params *dposconfig.Params

	transactionLogic model.TransactionLogic
	rewardSchedule   model.RewardSchedule
}

// New creates a new instance of a BlockBuilder
func New(
	params *dposconfig.Params,
	transactionLogic model.TransactionLogic,
	rewardSchedule model.RewardSchedule) model.BlockBuilder {

	return &blockBuilder{
		params:           params,
		transactionLogic: transactionLogic,
		rewardSchedule:   rewardSchedule,
	}
}

// BuildBlock builds a block on top of previousBlock out of as many of the
// given transactions as fit its payload, signed with keyPair
func (bb *blockBuilder) BuildBlock(transactions []*externalapi.DomainTransaction,
	previousBlock *externalapi.DomainBlock, keyPair *keys.KeyPair, timestamp uint32) (*externalapi.DomainBlock, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "BuildBlock")
	defer onEnd()

	sorted := make([]*externalapi.DomainTransaction, len(transactions))
	for i, transaction := range transactions {
		sorted[i] = transaction.Clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Amount < sorted[j].Amount
	})

	block := &externalapi.DomainBlock{
		Version:            bb.params.BlockVersion,
		Height:             previousBlock.Height + 1,
		PreviousBlock:      previousBlock.ID,
		Timestamp:          timestamp,
		GeneratorPublicKey: append([]byte(nil), keyPair.PublicKey...),
		Transactions:       make([]*externalapi.DomainTransaction, 0, len(sorted)),
	}

	payloadHash := sha256.New()
	payloadLength := 0
	for _, transaction := range sorted {
		if len(block.Transactions) >= bb.params.MaxTxsPerBlock {
			break
		}
		transactionBytes, err := bb.transactionLogic.GetBytes(transaction, false, false)
		if err != nil {
			return nil, err
		}
		if payloadLength+len(transactionBytes) > bb.params.MaxPayloadLength {
			log.Debugf("Transaction %s does not fit the payload of block %d", transaction.ID, block.Height)
			break
		}

		payloadLength += len(transactionBytes)
		payloadHash.Write(transactionBytes)
		block.TotalAmount += transaction.Amount
		block.TotalFee += transaction.Fee
		block.Transactions = append(block.Transactions, transaction)
	}

	block.NumberOfTransactions = uint32(len(block.Transactions))
	block.PayloadLength = uint32(payloadLength)
	block.PayloadHash = payloadHash.Sum(nil)
	block.Reward = bb.rewardSchedule.CalcReward(block.Height)

	hash, err := hashing.BlockSigningHash(block)
	if err != nil {
		return nil, err
	}
	block.BlockSignature = keyPair.Sign(hash)
	block.ID, err = hashing.BlockID(block)
	if err != nil {
		return nil, err
	}

	for _, transaction := range block.Transactions {
		transaction.BlockID = block.ID
		transaction.Height = block.Height
	}
	return block, nil
}
