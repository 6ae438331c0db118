package ldb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/tanglenet/tangled/infrastructure/db/database"
)

func indexSuffix(index uint32) []byte {
	var suffix [4]byte
	binary.BigEndian.PutUint32(suffix[:], index)
	return suffix[:]
}

func putIndexedValues(t *testing.T, ldb *LevelDB, bucket *database.Bucket, indexes ...uint32) {
	for _, index := range indexes {
		err := ldb.Put(bucket.Key(indexSuffix(index)), []byte(fmt.Sprintf("milestone-%d", index)))
		if err != nil {
			t.Fatalf("Put: %+v", err)
		}
	}
}

func collectIndexes(t *testing.T, cursor database.Cursor) []uint32 {
	var indexes []uint32
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key: %+v", err)
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("Value: %+v", err)
		}
		index := binary.BigEndian.Uint32(key.Suffix())
		if !bytes.Equal(value, []byte(fmt.Sprintf("milestone-%d", index))) {
			t.Fatalf("unexpected value %q for index %d", value, index)
		}
		indexes = append(indexes, index)
	}
	return indexes
}

func TestCursorIteratesInIndexOrder(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorIteratesInIndexOrder")
	defer teardownFunc()

	milestones := database.MakeBucket([]byte("milestones"))
	putIndexedValues(t, ldb, milestones, 300, 2, 70000, 1, 256)

	cursor, err := ldb.Cursor(milestones)
	if err != nil {
		t.Fatalf("Cursor: %+v", err)
	}
	defer cursor.Close()

	indexes := collectIndexes(t, cursor)
	expected := []uint32{1, 2, 256, 300, 70000}
	if fmt.Sprint(indexes) != fmt.Sprint(expected) {
		t.Fatalf("expected indexes %v, got %v", expected, indexes)
	}

	_, err = cursor.Key()
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected a not found error from an exhausted cursor, got: %+v", err)
	}
	_, err = cursor.Value()
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected a not found error from an exhausted cursor, got: %+v", err)
	}
}

func TestCursorStaysInsideItsBucket(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorStaysInsideItsBucket")
	defer teardownFunc()

	spentByMilestone := database.MakeBucket([]byte("spent-by-milestone"))
	putIndexedValues(t, ldb, spentByMilestone.Bucket(indexSuffix(1)), 10, 11)
	putIndexedValues(t, ldb, spentByMilestone.Bucket(indexSuffix(2)), 20)
	putIndexedValues(t, ldb, database.MakeBucket([]byte("spent")), 30)

	cursor, err := ldb.Cursor(spentByMilestone.Bucket(indexSuffix(1)))
	if err != nil {
		t.Fatalf("Cursor: %+v", err)
	}
	defer cursor.Close()

	indexes := collectIndexes(t, cursor)
	if fmt.Sprint(indexes) != fmt.Sprint([]uint32{10, 11}) {
		t.Fatalf("the cursor left its bucket, got indexes %v", indexes)
	}
}

func TestCursorSeek(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorSeek")
	defer teardownFunc()

	milestones := database.MakeBucket([]byte("milestones"))
	putIndexedValues(t, ldb, milestones, 5, 6, 9)

	cursor, err := ldb.Cursor(milestones)
	if err != nil {
		t.Fatalf("Cursor: %+v", err)
	}
	defer cursor.Close()

	err = cursor.Seek(milestones.Key(indexSuffix(6)))
	if err != nil {
		t.Fatalf("Seek: %+v", err)
	}
	key, err := cursor.Key()
	if err != nil {
		t.Fatalf("Key: %+v", err)
	}
	if binary.BigEndian.Uint32(key.Suffix()) != 6 {
		t.Fatalf("Seek landed on the wrong key %x", key.Suffix())
	}
	if !cursor.Next() {
		t.Fatalf("expected a key after index 6")
	}
	key, err = cursor.Key()
	if err != nil {
		t.Fatalf("Key: %+v", err)
	}
	if binary.BigEndian.Uint32(key.Suffix()) != 9 {
		t.Fatalf("Next landed on the wrong key %x", key.Suffix())
	}

	err = cursor.Seek(milestones.Key(indexSuffix(7)))
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected a not found error when seeking a missing index, got: %+v", err)
	}
}

func TestClosedCursor(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestClosedCursor")
	defer teardownFunc()

	milestones := database.MakeBucket([]byte("milestones"))
	putIndexedValues(t, ldb, milestones, 1)

	erroringCalls := map[string]func(cursor database.Cursor) error{
		"Seek": func(cursor database.Cursor) error {
			return cursor.Seek(milestones.Key(indexSuffix(1)))
		},
		"Key": func(cursor database.Cursor) error {
			_, err := cursor.Key()
			return err
		},
		"Value": func(cursor database.Cursor) error {
			_, err := cursor.Value()
			return err
		},
		"Close": func(cursor database.Cursor) error {
			return cursor.Close()
		},
	}
	panickingCalls := map[string]func(cursor database.Cursor){
		"First": func(cursor database.Cursor) { cursor.First() },
		"Next":  func(cursor database.Cursor) { cursor.Next() },
	}

	openClosedCursor := func() database.Cursor {
		cursor, err := ldb.Cursor(milestones)
		if err != nil {
			t.Fatalf("Cursor: %+v", err)
		}
		err = cursor.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
		return cursor
	}

	for name, call := range erroringCalls {
		err := call(openClosedCursor())
		if err == nil || !strings.Contains(err.Error(), "closed cursor") {
			t.Errorf("%s: expected a closed cursor error, got: %v", name, err)
		}
	}

	for name, call := range panickingCalls {
		func() {
			defer func() {
				recovered := recover()
				if recovered == nil || !strings.Contains(fmt.Sprint(recovered), "closed cursor") {
					t.Errorf("%s: expected a closed cursor panic, got: %v", name, recovered)
				}
			}()
			call(openClosedCursor())
		}()
	}
}
