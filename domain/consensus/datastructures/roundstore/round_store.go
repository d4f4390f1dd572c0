package roundstore

import (
	"encoding/binary"

	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	infrastructuredatabase "github.com/RiseVision/rise-node/infrastructure/db/database"
	"github.com/pkg/errors"
)

var recordsBucketName = []byte("round-records")
var voteWeightsBucketName = []byte("vote-weights")

// roundStore represents a store of the per-block forging records that
// round closing sums over
type roundStore struct {
	recordsBucket     *infrastructuredatabase.Bucket
	voteWeightsBucket *infrastructuredatabase.Bucket
}

// New instantiates a new RoundStore
func New() model.RoundStore {
	return &roundStore{
		recordsBucket:     database.MakeBucket(recordsBucketName),
		voteWeightsBucket: database.MakeBucket(voteWeightsBucketName),
	}
}

// StageRecord stages the forging record of a single block
func (rs *roundStore) StageRecord(stagingArea *model.StagingArea, record *externalapi.DomainRoundRecord) {
	stagingShard := rs.stagingShard(stagingArea)
	delete(stagingShard.recordsToDelete, record.Height)
	stagingShard.recordsToAdd[record.Height] = record.Clone()
}

func (rs *roundStore) IsStaged(stagingArea *model.StagingArea) bool {
	return rs.stagingShard(stagingArea).isStaged()
}

// Records returns the forging records of heights fromHeight..toHeight
// inclusive, ordered by height. Heights without a record are skipped.
func (rs *roundStore) Records(dbContext model.DBReader, stagingArea *model.StagingArea,
	fromHeight, toHeight uint64) ([]*externalapi.DomainRoundRecord, error) {

	stagingShard := rs.stagingShard(stagingArea)
	var records []*externalapi.DomainRoundRecord
	for height := fromHeight; height <= toHeight && height >= fromHeight; height++ {
		if record, ok := stagingShard.recordsToAdd[height]; ok {
			records = append(records, record.Clone())
			continue
		}
		if _, ok := stagingShard.recordsToDelete[height]; ok {
			continue
		}

		recordBytes, err := dbContext.Get(rs.recordKey(height))
		if err != nil {
			if database.IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		record, err := serialization.DeserializeRoundRecord(recordBytes)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteRecord deletes the forging record of the given height
func (rs *roundStore) DeleteRecord(stagingArea *model.StagingArea, height uint64) {
	stagingShard := rs.stagingShard(stagingArea)
	delete(stagingShard.recordsToAdd, height)
	stagingShard.recordsToDelete[height] = struct{}{}
}

// StageVoteWeights stages the delegate vote weights that were in effect
// right before the round closing at closingHeight recalculated them
func (rs *roundStore) StageVoteWeights(stagingArea *model.StagingArea, closingHeight uint64,
	voteWeights map[string]int64) {

	stagingShard := rs.stagingShard(stagingArea)
	weightsCopy := make(map[string]int64, len(voteWeights))
	for address, weight := range voteWeights {
		weightsCopy[address] = weight
	}
	delete(stagingShard.voteWeightsToDelete, closingHeight)
	stagingShard.voteWeightsToAdd[closingHeight] = weightsCopy
}

// VoteWeights returns the vote weights staged for the given closing height
func (rs *roundStore) VoteWeights(dbContext model.DBReader, stagingArea *model.StagingArea,
	closingHeight uint64) (map[string]int64, error) {

	stagingShard := rs.stagingShard(stagingArea)
	if voteWeights, ok := stagingShard.voteWeightsToAdd[closingHeight]; ok {
		weightsCopy := make(map[string]int64, len(voteWeights))
		for address, weight := range voteWeights {
			weightsCopy[address] = weight
		}
		return weightsCopy, nil
	}
	if _, ok := stagingShard.voteWeightsToDelete[closingHeight]; ok {
		return nil, errors.Wrapf(database.ErrNotFound, "vote weights of height %d are staged for deletion", closingHeight)
	}

	voteWeightsBytes, err := dbContext.Get(rs.voteWeightsKey(closingHeight))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeVoteWeights(voteWeightsBytes)
}

// DeleteVoteWeights deletes the vote weights of the given closing height
func (rs *roundStore) DeleteVoteWeights(stagingArea *model.StagingArea, closingHeight uint64) {
	stagingShard := rs.stagingShard(stagingArea)
	delete(stagingShard.voteWeightsToAdd, closingHeight)
	stagingShard.voteWeightsToDelete[closingHeight] = struct{}{}
}

func (rs *roundStore) recordKey(height uint64) *infrastructuredatabase.Key {
	return rs.recordsBucket.Key(heightBytes(height))
}

func (rs *roundStore) voteWeightsKey(closingHeight uint64) *infrastructuredatabase.Key {
	return rs.voteWeightsBucket.Key(heightBytes(closingHeight))
}

func heightBytes(height uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, height)
	return b
}
