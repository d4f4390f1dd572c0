package blockstore

import (
	"encoding/binary"

	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	infrastructuredatabase "github.com/RiseVision/rise-node/infrastructure/db/database"
	"github.com/pkg/errors"
)

var bucketName = []byte("blocks")
var heightsBucketName = []byte("block-heights")

// blockStore represents a store of block headers
type blockStore struct {
	bucket        *infrastructuredatabase.Bucket
	heightsBucket *infrastructuredatabase.Bucket
}

// New instantiates a new BlockStore
func New() model.BlockStore {
	return &blockStore{
		bucket:        database.MakeBucket(bucketName),
		heightsBucket: database.MakeBucket(heightsBucketName),
	}
}

// Stage stages the given block. Only the ids of the block's transactions
// are kept with it.
func (bs *blockStore) Stage(stagingArea *model.StagingArea, block *externalapi.DomainBlock) {
	stagingShard := bs.stagingShard(stagingArea)

	transactionIDs := make([]string, len(block.Transactions))
	for i, transaction := range block.Transactions {
		transactionIDs[i] = transaction.ID
	}
	header := block.Clone()
	header.Transactions = nil

	delete(stagingShard.toDelete, block.ID)
	stagingShard.toAdd[block.ID] = &stagedBlock{block: header, transactionIDs: transactionIDs}
}

func (bs *blockStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bs.stagingShard(stagingArea).isStaged()
}

// Block gets the header of the block with the given id along with the ids
// of its transactions
func (bs *blockStore) Block(dbContext model.DBReader, stagingArea *model.StagingArea, blockID string) (
	*externalapi.DomainBlock, []string, error) {

	stagingShard := bs.stagingShard(stagingArea)
	if staged, ok := stagingShard.toAdd[blockID]; ok {
		return staged.block.Clone(), append([]string(nil), staged.transactionIDs...), nil
	}
	if _, ok := stagingShard.toDelete[blockID]; ok {
		return nil, nil, errors.Wrapf(database.ErrNotFound, "block %s is staged for deletion", blockID)
	}

	blockBytes, err := dbContext.Get(bs.blockKey(blockID))
	if err != nil {
		return nil, nil, err
	}
	return serialization.DeserializeBlock(blockBytes)
}

// HasBlock returns whether a block with the given id exists in the store
func (bs *blockStore) HasBlock(dbContext model.DBReader, stagingArea *model.StagingArea, blockID string) (bool, error) {
	stagingShard := bs.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[blockID]; ok {
		return true, nil
	}
	if _, ok := stagingShard.toDelete[blockID]; ok {
		return false, nil
	}
	return dbContext.Has(bs.blockKey(blockID))
}

// BlockIDByHeight returns the id of the block at the given height
func (bs *blockStore) BlockIDByHeight(dbContext model.DBReader, stagingArea *model.StagingArea,
	height uint64) (string, error) {

	stagingShard := bs.stagingShard(stagingArea)
	for blockID, staged := range stagingShard.toAdd {
		if staged.block.Height == height {
			return blockID, nil
		}
	}
	for _, deletedHeight := range stagingShard.toDelete {
		if deletedHeight == height {
			return "", errors.Wrapf(database.ErrNotFound, "block at height %d is staged for deletion", height)
		}
	}

	blockID, err := dbContext.Get(bs.heightKey(height))
	if err != nil {
		return "", err
	}
	return string(blockID), nil
}

// Delete deletes the block with the given id and height
func (bs *blockStore) Delete(stagingArea *model.StagingArea, blockID string, height uint64) {
	stagingShard := bs.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[blockID]; ok {
		delete(stagingShard.toAdd, blockID)
	}
	stagingShard.toDelete[blockID] = height
}

func (bs *blockStore) blockKey(blockID string) *infrastructuredatabase.Key {
	return bs.bucket.Key([]byte(blockID))
}

func (bs *blockStore) heightKey(height uint64) *infrastructuredatabase.Key {
	var heightBytes [8]byte
	binary.BigEndian.PutUint64(heightBytes[:], height)
	return bs.heightsBucket.Key(heightBytes[:])
}
