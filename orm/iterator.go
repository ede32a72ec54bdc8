package orm

import (
	"github.com/iov-one/ida"
)

// ObjectIterator loads bucket objects while iterating over the keys of a
// bucket.
type ObjectIterator struct {
	iterator ida.Iterator
	bucket   Bucket
}

// Next returns the next object. It returns ErrIteratorDone when there are
// no more objects.
func (i *ObjectIterator) Next() (Object, error) {
	key, value, err := i.iterator.Next()
	if err != nil {
		return nil, err
	}
	return i.bucket.Parse(key[len(i.bucket.prefix):], value)
}

// Release releases the underlying store iterator.
func (i *ObjectIterator) Release() {
	i.iterator.Release()
}
