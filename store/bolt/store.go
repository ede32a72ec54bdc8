/*
Package bolt keeps the ledger state in a single bbolt database file. Every
commit bumps the version and records a digest of the whole state.
*/
package bolt

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/store"
	"go.etcd.io/bbolt"
	"golang.org/x/crypto/blake2b"
)

var (
	bucketState = []byte("state")
	bucketMeta  = []byte("meta")

	keyVersion = []byte("version")
	keyHash    = []byte("hash")
)

// CommitStore persists the state in a bbolt database.
type CommitStore struct {
	db *bbolt.DB
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore opens or creates the database at given path. The parent
// directory is created if it does not exist.
func NewCommitStore(path string) (*CommitStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create directory: %s", err)
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open bolt db: %s", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketState, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(errors.ErrDatabase, "create bucket %q: %s", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &CommitStore{db: db}, nil
}

// Close closes the underlying database.
func (s *CommitStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Get returns the value at last committed state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	return s.Adapter().Get(key)
}

// Adapter returns the database as a cacheable KVStore. Writes are visible
// immediately, Commit only records a new version.
func (s *CommitStore) Adapter() store.CacheableKVStore {
	return store.BTreeCacheable{KVStore: adapter{db: s.db}}
}

// CacheWrap returns a savepoint on top of the database. Writing it applies
// all changes in a single bolt transaction.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

// Commit bumps the version and stores the digest of the current state.
func (s *CommitStore) Commit() (store.CommitID, error) {
	var id store.CommitID
	err := s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		id.Version = decodeVersion(meta.Get(keyVersion)) + 1

		h, err := blake2b.New256(nil)
		if err != nil {
			return err
		}
		err = tx.Bucket(bucketState).ForEach(func(k, v []byte) error {
			writeLengthPrefixed(h, k)
			writeLengthPrefixed(h, v)
			return nil
		})
		if err != nil {
			return err
		}
		id.Hash = h.Sum(nil)

		if err := meta.Put(keyVersion, encodeVersion(id.Version)); err != nil {
			return err
		}
		return meta.Put(keyHash, id.Hash)
	})
	if err != nil {
		return store.CommitID{}, errors.Wrapf(errors.ErrDatabase, "commit: %s", err)
	}
	return id, nil
}

// LoadLatestVersion is a noop. Every write is already durable.
func (s *CommitStore) LoadLatestVersion() error {
	return nil
}

// LatestVersion returns the last committed version and its digest.
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	var id store.CommitID
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		id.Version = decodeVersion(meta.Get(keyVersion))
		id.Hash = copyBytes(meta.Get(keyHash))
		return nil
	})
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return id, nil
}

type hashWriter interface {
	Write([]byte) (int, error)
}

func writeLengthPrefixed(w hashWriter, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	_, _ = w.Write(n[:])
	_, _ = w.Write(b)
}

func encodeVersion(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func decodeVersion(b []byte) int64 {
	if len(b) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// copyBytes is required because bolt memory is valid only within the
// transaction.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// adapter exposes the state bucket as a KVStore.
type adapter struct {
	db *bbolt.DB
}

var _ store.KVStore = adapter{}

func (a adapter) Get(key []byte) ([]byte, error) {
	var val []byte
	err := a.db.View(func(tx *bbolt.Tx) error {
		val = copyBytes(tx.Bucket(bucketState).Get(key))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return val, nil
}

func (a adapter) Has(key []byte) (bool, error) {
	val, err := a.Get(key)
	return val != nil, err
}

func (a adapter) Set(key, value []byte) error {
	b := a.NewBatch()
	if err := b.Set(key, value); err != nil {
		return err
	}
	return b.Write()
}

func (a adapter) Delete(key []byte) error {
	b := a.NewBatch()
	if err := b.Delete(key); err != nil {
		return err
	}
	return b.Write()
}

// NewBatch returns a batch that is written in a single bolt transaction.
func (a adapter) NewBatch() store.Batch {
	return &batch{db: a.db}
}

func (a adapter) Iterator(start, end []byte) (store.Iterator, error) {
	var res []store.Model
	err := a.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketState).Cursor()
		var k, v []byte
		if start == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if end != nil && bytes.Compare(k, end) >= 0 {
				break
			}
			res = append(res, store.Pair(copyBytes(k), copyBytes(v)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.NewSliceIterator(res), nil
}

func (a adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	var res []store.Model
	err := a.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketState).Cursor()
		var k, v []byte
		if end == nil {
			k, v = c.Last()
		} else {
			// Seek lands on the first key not lower than end, which is
			// excluded from the range.
			if k, v = c.Seek(end); k == nil {
				k, v = c.Last()
			} else {
				k, v = c.Prev()
			}
		}
		for ; k != nil; k, v = c.Prev() {
			if start != nil && bytes.Compare(k, start) < 0 {
				break
			}
			res = append(res, store.Pair(copyBytes(k), copyBytes(v)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.NewSliceIterator(res), nil
}

// batch collects operations and writes them atomically.
type batch struct {
	db  *bbolt.DB
	ops []store.Op
}

var _ store.Batch = (*batch)(nil)

func (b *batch) Set(key, value []byte) error {
	b.ops = append(b.ops, store.SetOp(key, value))
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, store.DelOp(key))
	return nil
}

func (b *batch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketState)
		for _, op := range b.ops {
			var err error
			if op.IsSetOp() {
				err = bucket.Put(op.Key(), op.Value())
			} else {
				err = bucket.Delete(op.Key())
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	b.ops = nil
	return nil
}
