package testutils

import (
	"testing"

	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/infrastructure/db/database/ldb"
)

// NewTestDBManager opens a leveldb instance in a temporary directory and
// returns it wrapped as a model.DBManager, along with a teardown func
// that closes it
func NewTestDBManager(t *testing.T) (model.DBManager, func()) {
	db, err := ldb.NewLevelDB(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	teardown := func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	}
	return database.New(db), teardown
}

// CommitStagingArea commits the given staging area and fails the test on error
func CommitStagingArea(t *testing.T, dbManager model.DBManager, stagingArea *model.StagingArea) {
	err := model.CommitAllChanges(dbManager, stagingArea)
	if err != nil {
		t.Fatalf("CommitAllChanges: %+v", err)
	}
}
