package chainstatestore

import (
	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
)

var tipKey = database.MakeBucket(nil).Key([]byte("tip"))
var tickHeightKey = database.MakeBucket(nil).Key([]byte("tick-height"))

// chainStateStore keeps the id of the last applied block and the height
// of the last block whose round processing completed. A tick height lower
// than the tip height means the node stopped between saving a block and
// ticking its round.
type chainStateStore struct{}

// New instantiates a new ChainStateStore
func New() model.ChainStateStore {
	return &chainStateStore{}
}

func (css *chainStateStore) StageTip(stagingArea *model.StagingArea, blockID string) {
	css.stagingShard(stagingArea).tip = &blockID
}

func (css *chainStateStore) IsStaged(stagingArea *model.StagingArea) bool {
	return css.stagingShard(stagingArea).isStaged()
}

func (css *chainStateStore) Tip(dbContext model.DBReader, stagingArea *model.StagingArea) (string, error) {
	stagingShard := css.stagingShard(stagingArea)
	if stagingShard.tip != nil {
		return *stagingShard.tip, nil
	}

	tipBytes, err := dbContext.Get(tipKey)
	if err != nil {
		return "", err
	}
	return string(tipBytes), nil
}

func (css *chainStateStore) HasTip(dbContext model.DBReader, stagingArea *model.StagingArea) (bool, error) {
	if css.stagingShard(stagingArea).tip != nil {
		return true, nil
	}
	return dbContext.Has(tipKey)
}

func (css *chainStateStore) StageTickHeight(stagingArea *model.StagingArea, height uint64) {
	css.stagingShard(stagingArea).tickHeight = &height
}

// TickHeight returns the height of the last ticked block, or 0 when no
// block was ticked yet
func (css *chainStateStore) TickHeight(dbContext model.DBReader, stagingArea *model.StagingArea) (uint64, error) {
	stagingShard := css.stagingShard(stagingArea)
	if stagingShard.tickHeight != nil {
		return *stagingShard.tickHeight, nil
	}

	tickHeightBytes, err := dbContext.Get(tickHeightKey)
	if err != nil {
		if database.IsNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}
	return serialization.DeserializeUint64(tickHeightBytes)
}
