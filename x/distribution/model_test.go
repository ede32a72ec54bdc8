package distribution

import (
	"testing"

	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/idatest"
	"github.com/iov-one/ida/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexSerialization(t *testing.T) {
	idx := &Index{
		Schema:             1,
		Publisher:          idatest.NewAddress(),
		ID:                 7,
		Value:              coin.NewAmount(1234),
		TotalUnitsApproved: coin.NewAmount(1000000),
	}
	raw, err := idx.Marshal()
	require.NoError(t, err)
	var got Index
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, idx.Publisher, got.Publisher)
	assert.Equal(t, idx.ID, got.ID)
	requireAmount(t, idx.Value, got.Value)
	requireAmount(t, idx.TotalUnitsApproved, got.TotalUnitsApproved)
	assert.True(t, got.TotalUnitsPending.IsZero())
}

func TestSubscriptionValidation(t *testing.T) {
	pub, subscriber := idatest.NewAddress(), idatest.NewAddress()
	cases := map[string]struct {
		sub     Subscription
		wantErr *errors.Error
	}{
		"with units": {
			sub: Subscription{Schema: 1, Publisher: pub, Subscriber: subscriber, Units: coin.NewAmount(1)},
		},
		"approved without units": {
			sub: Subscription{Schema: 1, Publisher: pub, Subscriber: subscriber, Approved: true},
		},
		"pending value only": {
			sub: Subscription{Schema: 1, Publisher: pub, Subscriber: subscriber, PendingDistribution: coin.NewAmount(1)},
		},
		"empty": {
			sub:     Subscription{Schema: 1, Publisher: pub, Subscriber: subscriber},
			wantErr: errors.ErrModel,
		},
		"missing schema": {
			sub:     Subscription{Publisher: pub, Subscriber: subscriber, Approved: true},
			wantErr: errors.ErrModel,
		},
		"missing subscriber": {
			sub:     Subscription{Schema: 1, Publisher: pub, Approved: true},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.sub.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestSubscriptionID(t *testing.T) {
	pub, a, b := idatest.NewAddress(), idatest.NewAddress(), idatest.NewAddress()

	assert.Equal(t, SubscriptionID(pub, 1, a), SubscriptionID(pub, 1, a))
	assert.NotEqual(t, SubscriptionID(pub, 1, a), SubscriptionID(pub, 2, a))
	assert.NotEqual(t, SubscriptionID(pub, 1, a), SubscriptionID(pub, 1, b))
	assert.Len(t, SubscriptionID(pub, 1, a), 32)

	assert.NotEqual(t, IndexAccount(pub, 1), IndexAccount(pub, 2))
	assert.NoError(t, IndexAccount(pub, 1).Validate())
}

func TestRefList(t *testing.T) {
	db := store.MemStore()
	bucket := NewRefListBucket()
	key := subscriberListKey(idatest.NewAddress())

	a := SubscriptionID(idatest.NewAddress(), 1, idatest.NewAddress())
	b := SubscriptionID(idatest.NewAddress(), 1, idatest.NewAddress())
	c := SubscriptionID(idatest.NewAddress(), 1, idatest.NewAddress())

	refs, err := bucket.Refs(db, key)
	require.NoError(t, err)
	assert.Empty(t, refs)

	for _, ref := range [][]byte{a, b, c, b} {
		require.NoError(t, bucket.Append(db, key, ref))
	}
	refs, err = bucket.Refs(db, key)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{a, b, c}, refs)

	// Removal keeps the order of remaining entries.
	require.NoError(t, bucket.Remove(db, key, a))
	refs, err = bucket.Refs(db, key)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{b, c}, refs)

	// Removing an unknown reference is a no-op.
	require.NoError(t, bucket.Remove(db, key, a))

	require.NoError(t, bucket.Remove(db, key, b))
	require.NoError(t, bucket.Remove(db, key, c))
	ok, err := db.Has(bucket.DBKey(key))
	require.NoError(t, err)
	assert.False(t, ok, "empty list must be deleted")

	err = bucket.Append(db, key, []byte("short"))
	assert.True(t, errors.ErrModel.Is(err))
}
