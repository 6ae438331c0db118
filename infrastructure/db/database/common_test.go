package database_test

import (
	"fmt"
	"testing"

	"github.com/tanglenet/tangled/infrastructure/db/database"
	"github.com/tanglenet/tangled/infrastructure/db/database/ldb"
)

type databasePrepareFunc func(t *testing.T, testName string) (db database.Database, name string, teardownFunc func())

// databasePrepareFuncs is a set of functions, in which each function
// prepares a separate database type for testing.
// See testForAllDatabaseTypes for further details.
var databasePrepareFuncs = []databasePrepareFunc{
	prepareMemoryLDBForTest,
}

func prepareMemoryLDBForTest(t *testing.T, testName string) (db database.Database, name string, teardownFunc func()) {
	db, err := ldb.NewMemoryLevelDB()
	if err != nil {
		t.Fatalf("%s: NewMemoryLevelDB unexpectedly "+
			"failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = db.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly "+
				"failed: %s", testName, err)
		}
	}
	return db, "memory ldb", teardownFunc
}

// testForAllDatabaseTypes runs the given testFunc for every database
// type defined in databasePrepareFuncs. This is to make sure that
// all supported database types adhere to the assumptions defined in
// the interfaces in this package.
func testForAllDatabaseTypes(t *testing.T, testName string,
	testFunc func(t *testing.T, db database.Database, testName string)) {

	for _, prepareDatabase := range databasePrepareFuncs {
		func() {
			db, dbType, teardownFunc := prepareDatabase(t, testName)
			defer teardownFunc()

			testName := fmt.Sprintf("%s: %s", dbType, testName)
			testFunc(t, db, testName)
		}()
	}
}

func TestCursorIteratesBucketInOrder(t *testing.T) {
	testForAllDatabaseTypes(t, "TestCursorIteratesBucketInOrder", testCursorIteratesBucketInOrder)
}

func testCursorIteratesBucketInOrder(t *testing.T, db database.Database, testName string) {
	bucket := database.MakeBucket([]byte("outputs"))
	otherBucket := database.MakeBucket([]byte("outputs-other"))
	for i := 9; i >= 0; i-- {
		err := db.Put(bucket.Key([]byte{byte(i)}), []byte(fmt.Sprintf("value%d", i)))
		if err != nil {
			t.Fatalf("%s: Put unexpectedly failed: %s", testName, err)
		}
	}
	err := db.Put(otherBucket.Key([]byte{0}), []byte("other"))
	if err != nil {
		t.Fatalf("%s: Put unexpectedly failed: %s", testName, err)
	}

	cursor, err := db.Cursor(bucket)
	if err != nil {
		t.Fatalf("%s: Cursor unexpectedly failed: %s", testName, err)
	}
	defer cursor.Close()

	count := 0
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("%s: Key unexpectedly failed: %s", testName, err)
		}
		if len(key.Suffix()) != 1 || key.Suffix()[0] != byte(count) {
			t.Fatalf("%s: unexpected key %x at position %d", testName, key.Suffix(), count)
		}
		count++
	}
	if count != 10 {
		t.Fatalf("%s: expected 10 entries in the bucket, got %d", testName, count)
	}
}
