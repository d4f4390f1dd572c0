package model

import "github.com/RiseVision/rise-node/infrastructure/db/database"

// DBReader defines a proxy over domain data access
type DBReader interface {
	// Get gets the value for the given key. It returns
	// ErrNotFound if the given key does not exist.
	Get(key *database.Key) ([]byte, error)

	// Has returns true if the database does contains the
	// given key.
	Has(key *database.Key) (bool, error)

	// Cursor begins a new cursor over the given bucket.
	Cursor(bucket *database.Bucket) (database.Cursor, error)
}

// DBWriter is an interface to write to the database
type DBWriter interface {
	DBReader

	// Put sets the value for the given key. It overwrites
	// any previous value for that key.
	Put(key *database.Key, value []byte) error

	// Delete deletes the value for the given key. Will not
	// return an error if the key doesn't exist.
	Delete(key *database.Key) error
}

// DBTransaction is a proxy over domain data
// access that requires an open database transaction
type DBTransaction interface {
	DBWriter

	// Rollback rolls back whatever changes were made to the
	// database within this transaction.
	Rollback() error

	// Commit commits whatever changes were made to the database
	// within this transaction.
	Commit() error

	// RollbackUnlessClosed rolls back changes that were made to
	// the database within the transaction, unless the transaction
	// had already been closed using either Rollback or Commit.
	RollbackUnlessClosed() error
}

// DBManager defines the interface of a database that can begin
// transactions and read data.
type DBManager interface {
	DBWriter

	// Begin begins a new database transaction.
	Begin() (DBTransaction, error)
}
