package chainstatestore

import (
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
)

type chainStateStagingShard struct {
	store      *chainStateStore
	tip        *string
	tickHeight *uint64
}

func (css *chainStateStore) stagingShard(stagingArea *model.StagingArea) *chainStateStagingShard {
	return stagingArea.GetOrCreateShard("ChainStateStore", func() model.StagingShard {
		return &chainStateStagingShard{store: css}
	}).(*chainStateStagingShard)
}

func (csss *chainStateStagingShard) Commit(dbTx model.DBTransaction) error {
	if csss.tip != nil {
		err := dbTx.Put(tipKey, []byte(*csss.tip))
		if err != nil {
			return err
		}
	}
	if csss.tickHeight != nil {
		err := dbTx.Put(tickHeightKey, serialization.SerializeUint64(*csss.tickHeight))
		if err != nil {
			return err
		}
	}
	return nil
}

func (csss *chainStateStagingShard) isStaged() bool {
	return csss.tip != nil || csss.tickHeight != nil
}
