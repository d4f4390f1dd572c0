package consensus

import (
	"context"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

// TestConsensus is a Consensus that exposes its internals to tests
type TestConsensus interface {
	Consensus

	DatabaseContext() model.DBManager
	AccountManager() model.AccountManager
	ChainManager() model.ChainManager
	RoundManager() model.RoundManager
	DelegateManager() model.DelegateManager
	BlockBuilder() model.BlockBuilder
	BlockValidator() model.BlockValidator
	BlockStore() model.BlockStore
	TransactionStore() model.TransactionStore
	ChainStateStore() model.ChainStateStore

	ForgeBlock(transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)
}

type testConsensus struct{ *consensus }

func (tc *testConsensus) DatabaseContext() model.DBManager {
	return tc.databaseContext
}

func (tc *testConsensus) AccountManager() model.AccountManager {
	return tc.accountManager
}

func (tc *testConsensus) ChainManager() model.ChainManager {
	return tc.chainManager
}

func (tc *testConsensus) RoundManager() model.RoundManager {
	return tc.roundManager
}

func (tc *testConsensus) DelegateManager() model.DelegateManager {
	return tc.delegateManager
}

func (tc *testConsensus) BlockBuilder() model.BlockBuilder {
	return tc.blockBuilder
}

func (tc *testConsensus) BlockValidator() model.BlockValidator {
	return tc.blockValidator
}

func (tc *testConsensus) BlockStore() model.BlockStore {
	return tc.blockStore
}

func (tc *testConsensus) TransactionStore() model.TransactionStore {
	return tc.transactionStore
}

func (tc *testConsensus) ChainStateStore() model.ChainStateStore {
	return tc.chainStateStore
}

// ForgeBlock builds a block with the given transactions on top of the
// chain tip, signed by the genesis delegate owning the earliest free slot,
// and processes it
func (tc *testConsensus) ForgeBlock(transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {
	lastBlock, err := tc.LastBlock()
	if err != nil {
		return nil, err
	}
	height := lastBlock.Height + 1

	genesisDelegates := make(map[string]*keys.KeyPair, len(tc.params.Genesis.Delegates))
	for i := range tc.params.Genesis.Delegates {
		keyPair := keys.KeyPairFromSecret(dposconfig.GenesisDelegateSecret(tc.params.Name, i))
		genesisDelegates[keyPair.PublicKeyHex()] = keyPair
	}

	firstSlot := tc.slots.SlotNumber(lastBlock.Timestamp) + 1
	for slot := firstSlot; slot < firstSlot+2*tc.params.ActiveDelegates; slot++ {
		delegateKey, err := tc.SlotDelegate(height, slot)
		if err != nil {
			return nil, err
		}
		keyPair, ok := genesisDelegates[delegateKey]
		if !ok {
			continue
		}

		block, err := tc.BuildBlock(transactions, keyPair, tc.slots.SlotTime(slot))
		if err != nil {
			return nil, err
		}
		err = tc.ProcessBlock(context.Background(), block)
		if err != nil {
			return nil, err
		}
		return block, nil
	}
	return nil, errors.Errorf("no genesis delegate owns a slot after slot %d", firstSlot-1)
}
