package chainstatestore_test

import (
	"testing"

	"github.com/RiseVision/rise-node/domain/consensus/datastructures/chainstatestore"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/utils/testutils"
)

func TestChainStateStore(t *testing.T) {
	dbManager, teardown := testutils.NewTestDBManager(t)
	defer teardown()
	store := chainstatestore.New()

	stagingArea := model.NewStagingArea()
	hasTip, err := store.HasTip(dbManager, stagingArea)
	if err != nil {
		t.Fatalf("HasTip: %+v", err)
	}
	if hasTip {
		t.Fatalf("expected an empty store to have no tip")
	}
	tickHeight, err := store.TickHeight(dbManager, stagingArea)
	if err != nil {
		t.Fatalf("TickHeight: %+v", err)
	}
	if tickHeight != 0 {
		t.Fatalf("expected tick height 0, got %d", tickHeight)
	}

	store.StageTip(stagingArea, "555")
	store.StageTickHeight(stagingArea, 12)
	testutils.CommitStagingArea(t, dbManager, stagingArea)

	stagingArea = model.NewStagingArea()
	tip, err := store.Tip(dbManager, stagingArea)
	if err != nil {
		t.Fatalf("Tip: %+v", err)
	}
	if tip != "555" {
		t.Fatalf("expected tip 555, got %s", tip)
	}
	tickHeight, err = store.TickHeight(dbManager, stagingArea)
	if err != nil {
		t.Fatalf("TickHeight: %+v", err)
	}
	if tickHeight != 12 {
		t.Fatalf("expected tick height 12, got %d", tickHeight)
	}
}
