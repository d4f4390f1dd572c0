package roundmanager

import (
	"testing"

	"github.com/RiseVision/rise-node/domain/appstate"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/accountstore"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/blockstore"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/chainstatestore"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/roundstore"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/transactionstore"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/processes/accountmanager"
	"github.com/RiseVision/rise-node/domain/consensus/processes/delegateorder"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/consensus/utils/slots"
	"github.com/RiseVision/rise-node/domain/consensus/utils/testutils"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

const testActiveDelegates = 3

type testContext struct {
	roundManager    model.RoundManager
	accountManager  model.AccountManager
	roundStore      model.RoundStore
	chainStateStore model.ChainStateStore
	appState        *appstate.State
	dbManager       model.DBManager
	stagingArea     *model.StagingArea

	delegates []*keys.KeyPair
}

func newTestContext(t *testing.T) (*testContext, func()) {
	params := dposconfig.DevnetParams
	params.ActiveDelegates = testActiveDelegates

	dbManager, teardown := testutils.NewTestDBManager(t)
	accountStore, err := accountstore.New(dbManager)
	if err != nil {
		teardown()
		t.Fatalf("accountstore.New: %+v", err)
	}
	accountManager := accountmanager.New(dbManager, accountStore)
	delegateManager := delegateorder.New(dbManager, params.ActiveDelegates,
		slots.New(params.Epoch, params.BlockTime, params.ActiveDelegates), accountStore)

	tc := &testContext{
		accountManager:  accountManager,
		roundStore:      roundstore.New(),
		chainStateStore: chainstatestore.New(),
		appState:        appstate.New(),
		dbManager:       dbManager,
		stagingArea:     model.NewStagingArea(),
	}
	tc.roundManager = New(dbManager, params.ActiveDelegates, 0, tc.appState, delegateManager, accountManager,
		tc.roundStore, tc.chainStateStore, blockstore.New(), transactionstore.New())

	for i := 0; i < testActiveDelegates; i++ {
		keyPair := keys.KeyPairFromSecret(dposconfig.GenesisDelegateSecret("roundmanager", i))
		account, err := accountManager.GetOrCreateByPublicKey(tc.stagingArea, keyPair.PublicKey)
		if err != nil {
			teardown()
			t.Fatalf("GetOrCreateByPublicKey: %+v", err)
		}
		account.IsDelegate = true
		account.Username = keyPair.PublicKeyHex()[:8]
		account.VoteWeight = int64(1000 * (i + 1))
		accountManager.Save(tc.stagingArea, account)
		tc.delegates = append(tc.delegates, keyPair)
	}
	return tc, teardown
}

func (tc *testContext) account(t *testing.T, keyPair *keys.KeyPair) *externalapi.DomainAccount {
	account, err := tc.accountManager.AccountByPublicKey(tc.stagingArea, keyPair.PublicKey)
	if err != nil {
		t.Fatalf("AccountByPublicKey: %+v", err)
	}
	return account
}

func newBlock(height uint64, generator *keys.KeyPair, fee, reward uint64) *externalapi.DomainBlock {
	return &externalapi.DomainBlock{
		ID:                 hashing.IDFromHash(hashing.Hash([]byte{byte(height)})),
		Height:             height,
		TotalFee:           fee,
		Reward:             reward,
		GeneratorPublicKey: generator.PublicKey,
	}
}

func TestCalcRound(t *testing.T) {
	params := dposconfig.MainnetParams
	rm := New(nil, params.ActiveDelegates, 0, appstate.New(), nil, nil, nil, nil, nil, nil)

	tests := []struct {
		height    uint64
		round     uint64
		finishing bool
	}{
		{height: 1, round: 1, finishing: true},
		{height: 2, round: 1, finishing: false},
		{height: 100, round: 1, finishing: false},
		{height: 101, round: 1, finishing: true},
		{height: 102, round: 2, finishing: false},
		{height: 202, round: 2, finishing: true},
		{height: 203, round: 3, finishing: false},
	}
	for _, test := range tests {
		if round := rm.CalcRound(test.height); round != test.round {
			t.Errorf("CalcRound(%d): expected %d, got %d", test.height, test.round, round)
		}
		if finishing := rm.IsRoundFinishing(test.height); finishing != test.finishing {
			t.Errorf("IsRoundFinishing(%d): expected %t, got %t", test.height, test.finishing, finishing)
		}
	}
}

func TestTickDistributesRound(t *testing.T) {
	tc, teardown := newTestContext(t)
	defer teardown()

	genesisKeyPair := keys.KeyPairFromSecret("genesis")
	first, second, missing := tc.delegates[0], tc.delegates[1], tc.delegates[2]

	blocks := []*externalapi.DomainBlock{
		newBlock(1, genesisKeyPair, 0, 0),
		newBlock(2, first, 10, 5),
		newBlock(3, second, 20, 5),
	}
	var finishedRounds []uint64
	tc.roundManager.OnRoundFinished(func(round uint64, block *externalapi.DomainBlock) {
		finishedRounds = append(finishedRounds, round)
	})

	for _, block := range blocks[:2] {
		err := tc.roundManager.Tick(tc.stagingArea, block)
		if err != nil {
			t.Fatalf("Tick(%d): %+v", block.Height, err)
		}
	}
	missingAccount := tc.account(t, missing)
	missingAccount.VoteWeight = 3000
	tc.accountManager.Save(tc.stagingArea, missingAccount)

	beforeClose, err := tc.accountManager.Commitment(tc.stagingArea)
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}

	err = tc.roundManager.Tick(tc.stagingArea, blocks[2])
	if err != nil {
		t.Fatalf("Tick(3): %+v", err)
	}
	if len(finishedRounds) != 2 || finishedRounds[0] != 1 || finishedRounds[1] != 1 {
		t.Fatalf("unexpected finished rounds %v", finishedRounds)
	}

	// 30 fees over 3 positions: 10 each, the 10 left for the missing
	// position go to the last forger
	firstAccount := tc.account(t, first)
	if firstAccount.Balance != 15 || firstAccount.Fees != 10 || firstAccount.Rewards != 5 ||
		firstAccount.ProducedBlocks != 1 {
		t.Fatalf("unexpected first forger %s", spew.Sdump(firstAccount))
	}
	secondAccount := tc.account(t, second)
	if secondAccount.Balance != 25 || secondAccount.Fees != 20 || secondAccount.Rewards != 5 {
		t.Fatalf("unexpected second forger %s", spew.Sdump(secondAccount))
	}
	missingAccount = tc.account(t, missing)
	if missingAccount.MissedBlocks != 1 || missingAccount.Balance != 0 {
		t.Fatalf("unexpected outsider %s", spew.Sdump(missingAccount))
	}
	if missingAccount.VoteWeight != 0 {
		t.Fatalf("vote weight was not recalculated: %d", missingAccount.VoteWeight)
	}

	tickHeight, err := tc.chainStateStore.TickHeight(tc.dbManager, tc.stagingArea)
	if err != nil {
		t.Fatalf("TickHeight: %+v", err)
	}
	if tickHeight != 3 {
		t.Fatalf("expected tick height 3, got %d", tickHeight)
	}

	err = tc.roundManager.BackwardTick(tc.stagingArea, blocks[2], blocks[1])
	if err != nil {
		t.Fatalf("BackwardTick: %+v", err)
	}
	afterUndo, err := tc.accountManager.Commitment(tc.stagingArea)
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}
	if beforeClose != afterUndo {
		t.Fatalf("backward tick did not restore the accounts: %s != %s", beforeClose, afterUndo)
	}
	if weight := tc.account(t, missing).VoteWeight; weight != 3000 {
		t.Fatalf("expected the restored vote weight 3000, got %d", weight)
	}
	records, err := tc.roundStore.Records(tc.dbManager, tc.stagingArea, 1, 3)
	if err != nil {
		t.Fatalf("Records: %+v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 remaining round records, got %d", len(records))
	}
	tickHeight, err = tc.chainStateStore.TickHeight(tc.dbManager, tc.stagingArea)
	if err != nil {
		t.Fatalf("TickHeight: %+v", err)
	}
	if tickHeight != 2 {
		t.Fatalf("expected tick height 2, got %d", tickHeight)
	}
}

func TestSumRound(t *testing.T) {
	tc, teardown := newTestContext(t)
	defer teardown()

	genesisKeyPair := keys.KeyPairFromSecret("genesis")
	for _, block := range []*externalapi.DomainBlock{
		newBlock(1, genesisKeyPair, 100, 0),
		newBlock(2, tc.delegates[0], 10, 5),
		newBlock(3, tc.delegates[1], 20, 6),
		newBlock(4, tc.delegates[2], 40, 7),
	} {
		err := tc.roundManager.Tick(tc.stagingArea, block)
		if err != nil {
			t.Fatalf("Tick(%d): %+v", block.Height, err)
		}
	}

	summary, err := tc.roundManager.SumRound(tc.stagingArea, 3)
	if err != nil {
		t.Fatalf("SumRound: %+v", err)
	}
	if summary.Round != 1 || summary.RoundFees != 30 || len(summary.RoundRewards) != 2 ||
		summary.RoundRewards[0] != 5 || summary.RoundRewards[1] != 6 {
		t.Fatalf("unexpected round 1 summary %s", spew.Sdump(summary))
	}

	summary, err = tc.roundManager.SumRound(tc.stagingArea, 4)
	if err != nil {
		t.Fatalf("SumRound: %+v", err)
	}
	if summary.Round != 2 || summary.RoundFees != 40 || len(summary.RoundDelegates) != 1 {
		t.Fatalf("unexpected partial round 2 summary %s", spew.Sdump(summary))
	}
}

func TestConcurrentTickRejected(t *testing.T) {
	tc, teardown := newTestContext(t)
	defer teardown()

	err := tc.appState.TryStartTicking()
	if err != nil {
		t.Fatalf("TryStartTicking: %+v", err)
	}
	err = tc.roundManager.Tick(tc.stagingArea, newBlock(1, tc.delegates[0], 0, 0))
	if !errors.Is(err, appstate.ErrAlreadyTicking) {
		t.Fatalf("expected ErrAlreadyTicking, got %v", err)
	}
	tc.appState.StopTicking()
}
