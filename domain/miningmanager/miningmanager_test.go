package miningmanager_test

import (
	"context"
	"testing"

	"github.com/RiseVision/rise-node/domain/consensus/utils/consensustestutils"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/RiseVision/rise-node/domain/miningmanager"
	"github.com/RiseVision/rise-node/domain/miningmanager/transactionpool"
)

// TestGetBlockTemplate verifies that inserted transactions end up in the
// forged block and leave the pool once it is applied
func TestGetBlockTemplate(t *testing.T) {
	params := dposconfig.DevnetParams
	tc, teardown := consensustestutils.NewTestConsensus(t, &params)
	defer teardown()

	miningManager := miningmanager.NewFactory().NewMiningManager(tc, transactionpool.DefaultConfig(&params))
	defer miningManager.TransactionPool().Stop()

	ctx := context.Background()
	genesisKeyPair := consensustestutils.GenesisAccountKeyPair(&params)
	for i := 0; i < 3; i++ {
		recipient := hashing.AddressFromPublicKey(params.Genesis.Delegates[i].PublicKey)
		transaction := consensustestutils.NewSendTransaction(t, tc, genesisKeyPair, recipient, uint64(100+i))
		err := miningManager.ValidateAndInsertTransaction(ctx, transaction, true)
		if err != nil {
			t.Fatalf("ValidateAndInsertTransaction: %+v", err)
		}
	}

	lastBlock, err := tc.LastBlock()
	if err != nil {
		t.Fatalf("LastBlock: %+v", err)
	}
	height := lastBlock.Height + 1

	genesisDelegates := make(map[string]*keys.KeyPair)
	for i := range params.Genesis.Delegates {
		keyPair := consensustestutils.GenesisDelegateKeyPair(&params, i)
		genesisDelegates[keyPair.PublicKeyHex()] = keyPair
	}
	slot := tc.Slots().SlotNumber(lastBlock.Timestamp) + 1
	var keyPair *keys.KeyPair
	for ; keyPair == nil; slot++ {
		delegateKey, err := tc.SlotDelegate(height, slot)
		if err != nil {
			t.Fatalf("SlotDelegate: %+v", err)
		}
		keyPair = genesisDelegates[delegateKey]
	}
	slot--

	block, err := miningManager.GetBlockTemplate(ctx, keyPair, tc.Slots().SlotTime(slot))
	if err != nil {
		t.Fatalf("GetBlockTemplate: %+v", err)
	}
	if len(block.Transactions) != 3 {
		t.Fatalf("expected 3 transactions in the template, got %d", len(block.Transactions))
	}
	if block.Height != height {
		t.Fatalf("expected height %d, got %d", height, block.Height)
	}

	err = tc.ProcessBlock(ctx, block)
	if err != nil {
		t.Fatalf("ProcessBlock: %+v", err)
	}
	if count := miningManager.TransactionPool().Count(); count != (transactionpool.Count{}) {
		t.Fatalf("expected an empty pool, got %+v", count)
	}
}
