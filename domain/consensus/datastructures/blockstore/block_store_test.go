package blockstore_test

import (
	"reflect"
	"testing"

	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/datastructures/blockstore"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/testutils"
)

func TestBlockStore(t *testing.T) {
	dbManager, teardown := testutils.NewTestDBManager(t)
	defer teardown()
	store := blockstore.New()

	block := &externalapi.DomainBlock{
		ID:                 "1234",
		Height:             7,
		PreviousBlock:      "99",
		PayloadHash:        make([]byte, 32),
		GeneratorPublicKey: make([]byte, 32),
		Transactions: []*externalapi.DomainTransaction{
			{ID: "11"}, {ID: "22"},
		},
	}

	stagingArea := model.NewStagingArea()
	store.Stage(stagingArea, block)
	testutils.CommitStagingArea(t, dbManager, stagingArea)

	stagingArea = model.NewStagingArea()
	stored, transactionIDs, err := store.Block(dbManager, stagingArea, "1234")
	if err != nil {
		t.Fatalf("Block: %+v", err)
	}
	if stored.Transactions != nil {
		t.Fatalf("expected stored block to carry no transactions")
	}
	if stored.Height != 7 || stored.PreviousBlock != "99" {
		t.Fatalf("unexpected stored block %+v", stored)
	}
	if !reflect.DeepEqual(transactionIDs, []string{"11", "22"}) {
		t.Fatalf("unexpected transaction ids %v", transactionIDs)
	}

	blockID, err := store.BlockIDByHeight(dbManager, stagingArea, 7)
	if err != nil {
		t.Fatalf("BlockIDByHeight: %+v", err)
	}
	if blockID != "1234" {
		t.Fatalf("expected block 1234 at height 7, got %s", blockID)
	}

	store.Delete(stagingArea, "1234", 7)
	has, err := store.HasBlock(dbManager, stagingArea, "1234")
	if err != nil {
		t.Fatalf("HasBlock: %+v", err)
	}
	if has {
		t.Fatalf("expected staged deletion to hide the block")
	}
	testutils.CommitStagingArea(t, dbManager, stagingArea)

	_, err = store.BlockIDByHeight(dbManager, model.NewStagingArea(), 7)
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected not found after deletion, got %v", err)
	}
}
