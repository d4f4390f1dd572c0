package database

import (
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/infrastructure/db/database"
)

type dbManager struct {
	db database.Database
}

func (dbw *dbManager) Get(key *database.Key) ([]byte, error) {
	return dbw.db.Get(key)
}

func (dbw *dbManager) Has(key *database.Key) (bool, error) {
	return dbw.db.Has(key)
}

func (dbw *dbManager) Put(key *database.Key, value []byte) error {
	return dbw.db.Put(key, value)
}

func (dbw *dbManager) Delete(key *database.Key) error {
	return dbw.db.Delete(key)
}

func (dbw *dbManager) Cursor(bucket *database.Bucket) (database.Cursor, error) {
	return dbw.db.Cursor(bucket)
}

func (dbw *dbManager) Begin() (model.DBTransaction, error) {
	transaction, err := dbw.db.Begin()
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// New wraps the given database as an instance of model.DBManager
func New(db database.Database) model.DBManager {
	return &dbManager{db: db}
}
