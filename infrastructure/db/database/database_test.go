package database_test

import (
	"bytes"
	"testing"

	"github.com/RiseVision/rise-node/infrastructure/db/database"
)

func TestDatabasePutGetDelete(t *testing.T) {
	testForAllDatabaseTypes(t, "TestDatabasePutGetDelete", testDatabasePutGetDelete)
}

func testDatabasePutGetDelete(t *testing.T, db database.Database, testName string) {
	key := testBucket.Key([]byte("key"))
	value := []byte("value")

	_, err := db.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("%s: Get of a missing key returned %v, want ErrNotFound", testName, err)
	}

	err = db.Put(key, value)
	if err != nil {
		t.Fatalf("%s: Put unexpectedly failed: %+v", testName, err)
	}
	exists, err := db.Has(key)
	if err != nil {
		t.Fatalf("%s: Has unexpectedly failed: %+v", testName, err)
	}
	if !exists {
		t.Fatalf("%s: Has unexpectedly returned false", testName)
	}
	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("%s: Get unexpectedly failed: %+v", testName, err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("%s: Get returned %q, want %q", testName, got, value)
	}

	err = db.Delete(key)
	if err != nil {
		t.Fatalf("%s: Delete unexpectedly failed: %+v", testName, err)
	}
	exists, err = db.Has(key)
	if err != nil {
		t.Fatalf("%s: Has unexpectedly failed: %+v", testName, err)
	}
	if exists {
		t.Fatalf("%s: Has unexpectedly returned true after Delete", testName)
	}
}

func TestTransactionCommitAndRollback(t *testing.T) {
	testForAllDatabaseTypes(t, "TestTransactionCommitAndRollback", testTransactionCommitAndRollback)
}

func testTransactionCommitAndRollback(t *testing.T, db database.Database, testName string) {
	committedKey := testBucket.Key([]byte("committed"))
	rolledBackKey := testBucket.Key([]byte("rolledBack"))

	dbTx, err := db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin unexpectedly failed: %+v", testName, err)
	}
	err = dbTx.Put(committedKey, []byte("1"))
	if err != nil {
		t.Fatalf("%s: Put unexpectedly failed: %+v", testName, err)
	}

	// Writes are not visible outside the transaction before commit
	exists, err := db.Has(committedKey)
	if err != nil {
		t.Fatalf("%s: Has unexpectedly failed: %+v", testName, err)
	}
	if exists {
		t.Fatalf("%s: uncommitted key is visible", testName)
	}

	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("%s: Commit unexpectedly failed: %+v", testName, err)
	}
	exists, err = db.Has(committedKey)
	if err != nil {
		t.Fatalf("%s: Has unexpectedly failed: %+v", testName, err)
	}
	if !exists {
		t.Fatalf("%s: committed key is not visible", testName)
	}

	dbTx, err = db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin unexpectedly failed: %+v", testName, err)
	}
	err = dbTx.Put(rolledBackKey, []byte("2"))
	if err != nil {
		t.Fatalf("%s: Put unexpectedly failed: %+v", testName, err)
	}
	err = dbTx.Rollback()
	if err != nil {
		t.Fatalf("%s: Rollback unexpectedly failed: %+v", testName, err)
	}
	err = dbTx.RollbackUnlessClosed()
	if err != nil {
		t.Fatalf("%s: RollbackUnlessClosed unexpectedly failed: %+v", testName, err)
	}
	err = dbTx.Commit()
	if err == nil {
		t.Fatalf("%s: Commit of a closed transaction unexpectedly succeeded", testName)
	}
	exists, err = db.Has(rolledBackKey)
	if err != nil {
		t.Fatalf("%s: Has unexpectedly failed: %+v", testName, err)
	}
	if exists {
		t.Fatalf("%s: rolled back key is visible", testName)
	}
}

func TestCursorIteratesBucket(t *testing.T) {
	testForAllDatabaseTypes(t, "TestCursorIteratesBucket", testCursorIteratesBucket)
}

func testCursorIteratesBucket(t *testing.T, db database.Database, testName string) {
	entries := populateDatabaseForTest(t, db, testName)

	// A key in a different bucket must not show up
	err := db.Put(database.MakeBucket([]byte("other")).Key([]byte("key0")), []byte("x"))
	if err != nil {
		t.Fatalf("%s: Put unexpectedly failed: %+v", testName, err)
	}

	cursor, err := db.Cursor(testBucket)
	if err != nil {
		t.Fatalf("%s: Cursor unexpectedly failed: %+v", testName, err)
	}
	defer cursor.Close()

	count := 0
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("%s: Key unexpectedly failed: %+v", testName, err)
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("%s: Value unexpectedly failed: %+v", testName, err)
		}
		entry := entries[count]
		if !bytes.Equal(key.Bytes(), entry.key.Bytes()) {
			t.Fatalf("%s: key %d is %s, want %s", testName, count, key, entry.key)
		}
		if !bytes.Equal(value, entry.value) {
			t.Fatalf("%s: value %d is %q, want %q", testName, count, value, entry.value)
		}
		count++
	}
	if count != len(entries) {
		t.Fatalf("%s: iterated %d entries, want %d", testName, count, len(entries))
	}

	err = cursor.Seek(testBucket.Key([]byte("key5")))
	if err != nil {
		t.Fatalf("%s: Seek unexpectedly failed: %+v", testName, err)
	}
	key, err := cursor.Key()
	if err != nil {
		t.Fatalf("%s: Key unexpectedly failed: %+v", testName, err)
	}
	if string(key.Suffix()) != "key5" {
		t.Fatalf("%s: Seek landed on %s, want key5", testName, key.Suffix())
	}

	err = cursor.Seek(testBucket.Key([]byte("zzz")))
	if !database.IsNotFoundError(err) {
		t.Fatalf("%s: Seek past the end returned %v, want ErrNotFound", testName, err)
	}
}
