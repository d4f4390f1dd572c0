package transactionstore

import (
	"strconv"

	"github.com/RiseVision/rise-node/domain/consensus/database"
	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	infrastructuredatabase "github.com/RiseVision/rise-node/infrastructure/db/database"
	"github.com/pkg/errors"
)

var bucketName = []byte("transactions")
var assetsBucketName = []byte("transaction-assets")

// transactionStore represents a store of confirmed transactions. Every
// transaction type keeps its asset rows in a bucket of its own.
type transactionStore struct {
	bucket       *infrastructuredatabase.Bucket
	assetsBucket *infrastructuredatabase.Bucket
}

// New instantiates a new TransactionStore
func New() model.TransactionStore {
	return &transactionStore{
		bucket:       database.MakeBucket(bucketName),
		assetsBucket: database.MakeBucket(assetsBucketName),
	}
}

// Stage stages the given transaction along with its serialized asset
func (ts *transactionStore) Stage(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	assetBytes []byte) {

	stagingShard := ts.stagingShard(stagingArea)
	delete(stagingShard.toDelete, transaction.ID)
	stagingShard.toAdd[transaction.ID] = &stagedTransaction{
		transaction: transaction.Clone(),
		assetBytes:  append([]byte(nil), assetBytes...),
	}
}

func (ts *transactionStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ts.stagingShard(stagingArea).isStaged()
}

// Transaction gets the transaction with the given id and its serialized
// asset. The returned transaction's asset is left empty.
func (ts *transactionStore) Transaction(dbContext model.DBReader, stagingArea *model.StagingArea,
	transactionID string) (*externalapi.DomainTransaction, []byte, error) {

	stagingShard := ts.stagingShard(stagingArea)
	if staged, ok := stagingShard.toAdd[transactionID]; ok {
		return staged.transaction.Clone(), append([]byte(nil), staged.assetBytes...), nil
	}
	if _, ok := stagingShard.toDelete[transactionID]; ok {
		return nil, nil, errors.Wrapf(database.ErrNotFound, "transaction %s is staged for deletion", transactionID)
	}

	transactionBytes, err := dbContext.Get(ts.transactionKey(transactionID))
	if err != nil {
		return nil, nil, err
	}
	transaction, err := serialization.DeserializeTransaction(transactionBytes)
	if err != nil {
		return nil, nil, err
	}

	assetBytes, err := dbContext.Get(ts.assetKey(transactionID, transaction.Type))
	if err != nil {
		if !database.IsNotFoundError(err) {
			return nil, nil, err
		}
		assetBytes = nil
	}
	return transaction, assetBytes, nil
}

// HasTransaction returns whether a confirmed transaction with the given id exists
func (ts *transactionStore) HasTransaction(dbContext model.DBReader, stagingArea *model.StagingArea,
	transactionID string) (bool, error) {

	stagingShard := ts.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[transactionID]; ok {
		return true, nil
	}
	if _, ok := stagingShard.toDelete[transactionID]; ok {
		return false, nil
	}
	return dbContext.Has(ts.transactionKey(transactionID))
}

// Delete deletes the transaction with the given id and its asset row
func (ts *transactionStore) Delete(stagingArea *model.StagingArea, transactionID string,
	transactionType externalapi.TransactionType) {

	stagingShard := ts.stagingShard(stagingArea)
	delete(stagingShard.toAdd, transactionID)
	stagingShard.toDelete[transactionID] = transactionType
}

func (ts *transactionStore) transactionKey(transactionID string) *infrastructuredatabase.Key {
	return ts.bucket.Key([]byte(transactionID))
}

func (ts *transactionStore) assetKey(transactionID string, transactionType externalapi.TransactionType) *infrastructuredatabase.Key {
	typeBucket := ts.assetsBucket.Bucket([]byte(strconv.Itoa(int(transactionType))))
	return typeBucket.Key([]byte(transactionID))
}
