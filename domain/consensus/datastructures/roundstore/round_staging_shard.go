package roundstore

import (
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
)

type roundStagingShard struct {
	store               *roundStore
	recordsToAdd        map[uint64]*externalapi.DomainRoundRecord
	recordsToDelete     map[uint64]struct{}
	voteWeightsToAdd    map[uint64]map[string]int64
	voteWeightsToDelete map[uint64]struct{}
}

func (rs *roundStore) stagingShard(stagingArea *model.StagingArea) *roundStagingShard {
	return stagingArea.GetOrCreateShard("RoundStore", func() model.StagingShard {
		return &roundStagingShard{
			store:               rs,
			recordsToAdd:        make(map[uint64]*externalapi.DomainRoundRecord),
			recordsToDelete:     make(map[uint64]struct{}),
			voteWeightsToAdd:    make(map[uint64]map[string]int64),
			voteWeightsToDelete: make(map[uint64]struct{}),
		}
	}).(*roundStagingShard)
}

func (rss *roundStagingShard) Commit(dbTx model.DBTransaction) error {
	for height, record := range rss.recordsToAdd {
		err := dbTx.Put(rss.store.recordKey(height), serialization.SerializeRoundRecord(record))
		if err != nil {
			return err
		}
	}
	for height := range rss.recordsToDelete {
		err := dbTx.Delete(rss.store.recordKey(height))
		if err != nil {
			return err
		}
	}

	for closingHeight, voteWeights := range rss.voteWeightsToAdd {
		err := dbTx.Put(rss.store.voteWeightsKey(closingHeight), serialization.SerializeVoteWeights(voteWeights))
		if err != nil {
			return err
		}
	}
	for closingHeight := range rss.voteWeightsToDelete {
		err := dbTx.Delete(rss.store.voteWeightsKey(closingHeight))
		if err != nil {
			return err
		}
	}
	return nil
}

func (rss *roundStagingShard) isStaged() bool {
	return len(rss.recordsToAdd) != 0 || len(rss.recordsToDelete) != 0 ||
		len(rss.voteWeightsToAdd) != 0 || len(rss.voteWeightsToDelete) != 0
}
