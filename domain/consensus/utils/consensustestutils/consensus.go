// Package consensustestutils builds complete Consensus instances for tests
// of the packages layered on top of the consensus
package consensustestutils

import (
	"testing"
	"time"

	"github.com/RiseVision/rise-node/domain/consensus"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/consensus/utils/testutils"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/RiseVision/rise-node/infrastructure/db/database/ldb"
)

// NewTestConsensus opens a Consensus over a fresh leveldb instance and
// applies the genesis block. The teardown func stops the chain sequence
// and closes the database.
func NewTestConsensus(t *testing.T, params *dposconfig.Params) (consensus.TestConsensus, func()) {
	return NewTestConsensusWithConfig(t, &consensus.Config{
		Params: params,
		FatalHandler: func(reason string) {
			t.Errorf("fatal: %s", reason)
		},
	})
}

// NewTestConsensusWithConfig is NewTestConsensus with a custom config
func NewTestConsensusWithConfig(t *testing.T, config *consensus.Config) (consensus.TestConsensus, func()) {
	db, err := ldb.NewLevelDB(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}

	tc, err := consensus.NewFactory().NewTestConsensus(config, db)
	if err != nil {
		t.Fatalf("NewTestConsensus: %+v", err)
	}
	teardown := func() {
		tc.ChainSequence().Stop()
		err := db.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	}

	err = tc.Init()
	if err != nil {
		teardown()
		t.Fatalf("Init: %+v", err)
	}
	return tc, teardown
}

// GenesisAccountKeyPair returns the key pair holding the genesis supply of
// params' network
func GenesisAccountKeyPair(params *dposconfig.Params) *keys.KeyPair {
	return keys.KeyPairFromSecret(dposconfig.GenesisAccountSecret(params.Name))
}

// GenesisDelegateKeyPair returns the forging key pair of the index'th
// genesis delegate of params' network
func GenesisDelegateKeyPair(params *dposconfig.Params, index int) *keys.KeyPair {
	return keys.KeyPairFromSecret(dposconfig.GenesisDelegateSecret(params.Name, index))
}

// NewSendTransaction returns a send transaction of amount from keyPair to
// recipient, signed and timestamped at the current slot time
func NewSendTransaction(t *testing.T, tc consensus.TestConsensus, keyPair *keys.KeyPair,
	recipient string, amount uint64) *externalapi.DomainTransaction {

	transaction := &externalapi.DomainTransaction{
		Type:        externalapi.TransactionTypeSend,
		Timestamp:   tc.Slots().EpochTime(time.Now()),
		RecipientID: recipient,
		Amount:      amount,
		Fee:         tc.Params().Fees.Send,
	}
	SignOrFail(t, tc, transaction, keyPair, nil)
	return transaction
}

// SignOrFail signs transaction and fails the test on error
func SignOrFail(t *testing.T, tc consensus.TestConsensus, transaction *externalapi.DomainTransaction,
	keyPair, secondKeyPair *keys.KeyPair) {

	err := testutils.SignTransaction(tc.TransactionLogic().Registry(), transaction, keyPair, secondKeyPair)
	if err != nil {
		t.Fatalf("SignTransaction: %+v", err)
	}
}

// ForgeBlocks forges count empty blocks and fails the test on error
func ForgeBlocks(t *testing.T, tc consensus.TestConsensus, count int) {
	for i := 0; i < count; i++ {
		_, err := tc.ForgeBlock(nil)
		if err != nil {
			t.Fatalf("ForgeBlock %d: %+v", i, err)
		}
	}
}
