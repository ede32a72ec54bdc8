//nolint
package store

import "github.com/iov-one/ida"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = ida.ReadOnlyKVStore
type SetDeleter = ida.SetDeleter
type KVStore = ida.KVStore
type Batch = ida.Batch
type Iterator = ida.Iterator
type CacheableKVStore = ida.CacheableKVStore
type KVCacheWrap = ida.KVCacheWrap
type CommitKVStore = ida.CommitKVStore
type CommitID = ida.CommitID

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
