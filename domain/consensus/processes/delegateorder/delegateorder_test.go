package delegateorder

import (
	"bytes"
	"encoding/hex"
	"testing"
	"time"

	"github.com/RiseVision/rise-node/domain/consensus/datastructures/accountstore"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/slots"
	"github.com/RiseVision/rise-node/domain/consensus/utils/testutils"
	"github.com/pkg/errors"
)

func stageDelegate(store model.AccountStore, stagingArea *model.StagingArea, keyByte byte, voteWeight int64) []byte {
	publicKey := bytes.Repeat([]byte{keyByte}, 32)
	store.Stage(stagingArea, &externalapi.DomainAccount{
		Address:    hashing.AddressFromPublicKey(publicKey),
		PublicKey:  publicKey,
		IsDelegate: true,
		VoteWeight: voteWeight,
	})
	return publicKey
}

func TestActiveDelegateKeysRanking(t *testing.T) {
	dbManager, teardown := testutils.NewTestDBManager(t)
	defer teardown()
	store, err := accountstore.New(dbManager)
	if err != nil {
		t.Fatalf("accountstore.New: %+v", err)
	}

	stagingArea := model.NewStagingArea()
	low := stageDelegate(store, stagingArea, 0x01, 10)
	tieB := stageDelegate(store, stagingArea, 0x03, 50)
	tieA := stageDelegate(store, stagingArea, 0x02, 50)
	stageDelegate(store, stagingArea, 0x04, 1)
	store.Stage(stagingArea, &externalapi.DomainAccount{Address: "1R", VoteWeight: 1000})
	testutils.CommitStagingArea(t, dbManager, stagingArea)

	dm := New(dbManager, 3, slots.New(time.Unix(0, 0), 10*time.Second, 3), store)
	keys, err := dm.ActiveDelegateKeys(model.NewStagingArea())
	if err != nil {
		t.Fatalf("ActiveDelegateKeys: %+v", err)
	}
	expected := []string{hex.EncodeToString(tieA), hex.EncodeToString(tieB), hex.EncodeToString(low)}
	if len(keys) != len(expected) {
		t.Fatalf("expected %d keys, got %d", len(expected), len(keys))
	}
	for i := range keys {
		if keys[i] != expected[i] {
			t.Fatalf("position %d: expected %s, got %s", i, expected[i], keys[i])
		}
	}
}

func TestDelegateListCaching(t *testing.T) {
	dbManager, teardown := testutils.NewTestDBManager(t)
	defer teardown()
	store, err := accountstore.New(dbManager)
	if err != nil {
		t.Fatalf("accountstore.New: %+v", err)
	}

	stagingArea := model.NewStagingArea()
	first := stageDelegate(store, stagingArea, 0x01, 10)
	stageDelegate(store, stagingArea, 0x02, 5)
	testutils.CommitStagingArea(t, dbManager, stagingArea)

	dm := New(dbManager, 1, slots.New(time.Unix(0, 0), 10*time.Second, 1), store)
	list, err := dm.DelegateList(model.NewStagingArea(), 1)
	if err != nil {
		t.Fatalf("DelegateList: %+v", err)
	}
	if list[0] != hex.EncodeToString(first) {
		t.Fatalf("expected the heaviest delegate to be active")
	}

	// Staged state is never served from nor stored into the cache
	stagingArea = model.NewStagingArea()
	second := stageDelegate(store, stagingArea, 0x02, 100)
	staged, err := dm.DelegateList(stagingArea, 1)
	if err != nil {
		t.Fatalf("DelegateList: %+v", err)
	}
	if staged[0] != hex.EncodeToString(second) {
		t.Fatalf("expected the staged weights to be used")
	}
	testutils.CommitStagingArea(t, dbManager, stagingArea)

	// Vote weights change only when a round closes, which clears the cache
	cached, err := dm.DelegateList(model.NewStagingArea(), 1)
	if err != nil {
		t.Fatalf("DelegateList: %+v", err)
	}
	if cached[0] != hex.EncodeToString(first) {
		t.Fatalf("expected the cached list to be served")
	}

	dm.ClearCache()
	refreshed, err := dm.DelegateList(model.NewStagingArea(), 1)
	if err != nil {
		t.Fatalf("DelegateList: %+v", err)
	}
	if refreshed[0] != hex.EncodeToString(second) {
		t.Fatalf("expected the list to be recomputed after ClearCache")
	}
}

func TestDelegateListAfterRegistration(t *testing.T) {
	dbManager, teardown := testutils.NewTestDBManager(t)
	defer teardown()
	store, err := accountstore.New(dbManager)
	if err != nil {
		t.Fatalf("accountstore.New: %+v", err)
	}

	stagingArea := model.NewStagingArea()
	stageDelegate(store, stagingArea, 0x05, 10)
	stageDelegate(store, stagingArea, 0x06, 10)
	testutils.CommitStagingArea(t, dbManager, stagingArea)

	dm := New(dbManager, 3, slots.New(time.Unix(0, 0), 10*time.Second, 3), store)
	list, err := dm.DelegateList(model.NewStagingArea(), 4)
	if err != nil {
		t.Fatalf("DelegateList: %+v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 delegates, got %d", len(list))
	}

	// A delegate registered in the middle of the round
	stagingArea = model.NewStagingArea()
	stageDelegate(store, stagingArea, 0x01, 0)
	testutils.CommitStagingArea(t, dbManager, stagingArea)

	running, err := dm.DelegateList(model.NewStagingArea(), 4)
	if err != nil {
		t.Fatalf("DelegateList: %+v", err)
	}
	restarted := New(dbManager, 3, slots.New(time.Unix(0, 0), 10*time.Second, 3), store)
	fresh, err := restarted.DelegateList(model.NewStagingArea(), 4)
	if err != nil {
		t.Fatalf("DelegateList: %+v", err)
	}
	if len(running) != 3 || len(fresh) != 3 {
		t.Fatalf("expected 3 delegates, got %d and %d", len(running), len(fresh))
	}
	for i := range running {
		if running[i] != fresh[i] {
			t.Fatalf("position %d: the cached list has %s, a fresh one has %s", i, running[i], fresh[i])
		}
	}
}

func TestValidateBlockSlot(t *testing.T) {
	dbManager, teardown := testutils.NewTestDBManager(t)
	defer teardown()
	store, err := accountstore.New(dbManager)
	if err != nil {
		t.Fatalf("accountstore.New: %+v", err)
	}

	stagingArea := model.NewStagingArea()
	for i := byte(1); i <= 5; i++ {
		stageDelegate(store, stagingArea, i, int64(i))
	}
	testutils.CommitStagingArea(t, dbManager, stagingArea)

	dm := New(dbManager, 5, slots.New(time.Unix(0, 0), 10*time.Second, 5), store)
	list, err := dm.DelegateListForHeight(model.NewStagingArea(), 7)
	if err != nil {
		t.Fatalf("DelegateListForHeight: %+v", err)
	}

	const slot = 13
	owner, err := hex.DecodeString(list[slot%5])
	if err != nil {
		t.Fatalf("DecodeString: %s", err)
	}
	block := &externalapi.DomainBlock{ID: "1", Height: 7, Timestamp: slot * 10, GeneratorPublicKey: owner}
	if err := dm.ValidateBlockSlot(model.NewStagingArea(), block); err != nil {
		t.Fatalf("ValidateBlockSlot: %+v", err)
	}

	other, err := hex.DecodeString(list[(slot+1)%5])
	if err != nil {
		t.Fatalf("DecodeString: %s", err)
	}
	block.GeneratorPublicKey = other
	err = dm.ValidateBlockSlot(model.NewStagingArea(), block)
	if !errors.Is(err, ruleerrors.ErrInvalidBlockSlot) {
		t.Fatalf("expected ErrInvalidBlockSlot, got %v", err)
	}
}
