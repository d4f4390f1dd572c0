package blockstore

import (
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
)

type stagedBlock struct {
	block          *externalapi.DomainBlock
	transactionIDs []string
}

type blockStagingShard struct {
	store    *blockStore
	toAdd    map[string]*stagedBlock
	toDelete map[string]uint64
}

func (bs *blockStore) stagingShard(stagingArea *model.StagingArea) *blockStagingShard {
	return stagingArea.GetOrCreateShard("BlockStore", func() model.StagingShard {
		return &blockStagingShard{
			store:    bs,
			toAdd:    make(map[string]*stagedBlock),
			toDelete: make(map[string]uint64),
		}
	}).(*blockStagingShard)
}

func (bss *blockStagingShard) Commit(dbTx model.DBTransaction) error {
	for blockID, height := range bss.toDelete {
		err := dbTx.Delete(bss.store.blockKey(blockID))
		if err != nil {
			return err
		}
		err = dbTx.Delete(bss.store.heightKey(height))
		if err != nil {
			return err
		}
	}

	for blockID, staged := range bss.toAdd {
		err := dbTx.Put(bss.store.blockKey(blockID), serialization.SerializeBlock(staged.block, staged.transactionIDs))
		if err != nil {
			return err
		}
		err = dbTx.Put(bss.store.heightKey(staged.block.Height), []byte(blockID))
		if err != nil {
			return err
		}
	}
	return nil
}

func (bss *blockStagingShard) isStaged() bool {
	return len(bss.toAdd) != 0 || len(bss.toDelete) != 0
}
