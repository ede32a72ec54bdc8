package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/idatest/assert"
	"github.com/iov-one/ida/store"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()

	cases := map[string]struct {
		bucket     string
		name       string
		increments int64
	}{
		"first sequence":          {bucket: "foo", name: "id", increments: 22},
		"other name":              {bucket: "foo", name: "other", increments: 11},
		"other bucket, same name": {bucket: "bar", name: "id", increments: 77},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s := NewSequence(tc.bucket, tc.name)
			orig, _, err := s.Latest(db)
			assert.Nil(t, err)

			var prev []byte
			var val int64
			for i := int64(0); i < tc.increments; i++ {
				raw, err := s.NextVal(db)
				assert.Nil(t, err)
				if bytes.Compare(prev, raw) >= 0 {
					t.Fatalf("sequence values must grow: %X >= %X", prev, raw)
				}
				prev = raw
				val, err = DecodeSequence(raw)
				assert.Nil(t, err)
			}
			assert.Equal(t, orig+tc.increments, val)

			latest, _, err := s.Latest(db)
			assert.Nil(t, err)
			assert.Equal(t, val, latest)
		})
	}
}

func TestDecodeSequenceInvalid(t *testing.T) {
	_, err := DecodeSequence([]byte{1, 2, 3})
	assert.IsErr(t, errors.ErrInput, err)

	val, err := DecodeSequence(nil)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), val)
}
