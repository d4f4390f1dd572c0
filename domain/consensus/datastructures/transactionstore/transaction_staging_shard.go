package transactionstore

import (
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
)

type stagedTransaction struct {
	transaction *externalapi.DomainTransaction
	assetBytes  []byte
}

type transactionStagingShard struct {
	store    *transactionStore
	toAdd    map[string]*stagedTransaction
	toDelete map[string]externalapi.TransactionType
}

func (ts *transactionStore) stagingShard(stagingArea *model.StagingArea) *transactionStagingShard {
	return stagingArea.GetOrCreateShard("TransactionStore", func() model.StagingShard {
		return &transactionStagingShard{
			store:    ts,
			toAdd:    make(map[string]*stagedTransaction),
			toDelete: make(map[string]externalapi.TransactionType),
		}
	}).(*transactionStagingShard)
}

func (tss *transactionStagingShard) Commit(dbTx model.DBTransaction) error {
	for transactionID, transactionType := range tss.toDelete {
		err := dbTx.Delete(tss.store.transactionKey(transactionID))
		if err != nil {
			return err
		}
		err = dbTx.Delete(tss.store.assetKey(transactionID, transactionType))
		if err != nil {
			return err
		}
	}

	for transactionID, staged := range tss.toAdd {
		err := dbTx.Put(tss.store.transactionKey(transactionID), serialization.SerializeTransaction(staged.transaction))
		if err != nil {
			return err
		}
		if len(staged.assetBytes) == 0 {
			continue
		}
		err = dbTx.Put(tss.store.assetKey(transactionID, staged.transaction.Type), staged.assetBytes)
		if err != nil {
			return err
		}
	}
	return nil
}

func (tss *transactionStagingShard) isStaged() bool {
	return len(tss.toAdd) != 0 || len(tss.toDelete) != 0
}
