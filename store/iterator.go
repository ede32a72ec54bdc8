package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/ida/errors"
)

// snapshotBtree copies all btree items within [start, end) into a slice,
// ordered as requested. Working on a copy allows the btree to be modified
// while the iterator is still in use.
func snapshotBtree(bt *btree.BTree, start, end []byte, reverse bool) []keyer {
	var items []keyer
	collect := func(i btree.Item) bool {
		items = append(items, i.(keyer))
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}

	if reverse {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return items
}

// cacheIterator merges the cached items with the iterator of the parent
// store. Cached values take precedence and deleted items hide the parent
// entries with the same key.
type cacheIterator struct {
	items   []keyer
	parent  Iterator
	reverse bool

	// Parent entry that was read but not yet returned.
	peekKey   []byte
	peekValue []byte
	peeked    bool

	parentDone bool
}

var _ Iterator = (*cacheIterator)(nil)

func newCacheIterator(items []keyer, parent Iterator, reverse bool) *cacheIterator {
	return &cacheIterator{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
}

func (c *cacheIterator) peekParent() error {
	if c.peeked || c.parentDone {
		return nil
	}
	key, value, err := c.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		c.parentDone = true
		return nil
	case err != nil:
		return err
	}
	c.peekKey, c.peekValue, c.peeked = key, value, true
	return nil
}

func (c *cacheIterator) takeParent() ([]byte, []byte) {
	key, value := c.peekKey, c.peekValue
	c.peekKey, c.peekValue, c.peeked = nil, nil, false
	return key, value
}

// Next returns the next entry of the combined iteration.
func (c *cacheIterator) Next() (key, value []byte, err error) {
	for {
		if err := c.peekParent(); err != nil {
			return nil, nil, err
		}

		if len(c.items) == 0 {
			if !c.peeked {
				return nil, nil, errors.Wrap(errors.ErrIteratorDone, "cache iterator")
			}
			key, value := c.takeParent()
			return key, value, nil
		}

		item := c.items[0]
		if c.peeked {
			cmp := bytes.Compare(item.Key(), c.peekKey)
			if c.reverse {
				cmp = -cmp
			}
			if cmp > 0 {
				key, value := c.takeParent()
				return key, value, nil
			}
			if cmp == 0 {
				// Cached item overrides the parent entry.
				c.takeParent()
			}
		}

		c.items = c.items[1:]
		if set, ok := item.(setItem); ok {
			return set.key, set.value, nil
		}
		// Deleted item, look further.
	}
}

// Release releases the parent iterator and drops the snapshot.
func (c *cacheIterator) Release() {
	c.parent.Release()
	c.items = nil
	c.peekKey, c.peekValue, c.peeked = nil, nil, false
	c.parentDone = true
}
