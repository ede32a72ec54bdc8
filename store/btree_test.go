package store

import (
	"testing"

	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/idatest/assert"
)

func makeBTreeBase() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

var btreeSuite = NewTestSuite(makeBTreeBase)

func TestBTreeCacheGetSet(t *testing.T) {
	btreeSuite.GetSet(t)
}

func TestBTreeCacheConflicts(t *testing.T) {
	btreeSuite.CacheConflicts(t)
}

func TestBTreeFuzzIterator(t *testing.T) {
	btreeSuite.FuzzIterator(t)
}

func TestBTreeIteratorWithConflicts(t *testing.T) {
	btreeSuite.IteratorWithConflicts(t)
}

func TestBTreeIteratorSurvivesWrites(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("A")))
	assert.Nil(t, db.Set([]byte("b"), []byte("B")))
	cache := db.CacheWrap()

	it, err := cache.Iterator([]byte("a"), []byte("z"))
	assert.Nil(t, err)
	defer it.Release()

	// Modifying the store while iterating must not affect the iterator.
	assert.Nil(t, cache.Delete([]byte("b")))

	key, value, err := it.Next()
	assert.Nil(t, err)
	assert.Equal(t, []byte("a"), key)
	assert.Equal(t, []byte("A"), value)
	key, _, err = it.Next()
	assert.Nil(t, err)
	assert.Equal(t, []byte("b"), key)
	_, _, err = it.Next()
	assert.IsErr(t, errors.ErrIteratorDone, err)
}

func TestLogableStore(t *testing.T) {
	kv, ops := LogableStore()
	assert.Nil(t, kv.Set([]byte("k"), []byte("v")))
	assert.Nil(t, kv.Delete([]byte("other")))

	got := ops.ShowOps()
	assert.Equal(t, 2, len(got))
	assert.Equal(t, true, got[0].IsSetOp())
	assert.Equal(t, []byte("k"), got[0].Key())
	assert.Equal(t, []byte("v"), got[0].Value())
	assert.Equal(t, false, got[1].IsSetOp())
}

func TestSliceIterator(t *testing.T) {
	const size = 10

	models := randModels(size, 8, 40)

	it := NewSliceIterator(models)
	for i := 0; i < size; i++ {
		key, value, err := it.Next()
		assert.Nil(t, err)
		assert.Equal(t, models[i].Key, key)
		assert.Equal(t, models[i].Value, value)
	}
	_, _, err := it.Next()
	assert.IsErr(t, errors.ErrIteratorDone, err)

	it = NewSliceIterator(models)
	it.Release()
	_, _, err = it.Next()
	assert.IsErr(t, errors.ErrIteratorDone, err)
}
