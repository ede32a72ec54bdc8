package distribution

import (
	"context"
	"testing"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
	"github.com/iov-one/ida/idatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingSubscriptionClaim(t *testing.T) {
	e := newEnv(t)
	subscriber := idatest.NewAddress()
	e.mint(e.publisher, "100")
	e.createIndex(1)

	_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subscriber, human(t, "0.001"))
	require.NoError(t, err)
	_, err = e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(200))
	require.NoError(t, err)

	requireAmount(t, human(t, "99.8"), e.balance(e.publisher))
	requireAmount(t, coin.Amount{}, e.balance(subscriber))
	info := e.subscription(1, subscriber)
	assert.False(t, info.Approved)
	requireAmount(t, human(t, "0.2"), info.PendingDistribution)
	requireAmount(t, human(t, "0.2"), e.index(1).TotalUnitsPendingDistribution)

	claimer := idatest.NewAddress()
	_, err = e.ctrl.Claim(e.ctx, e.db, e.publisher, 1, subscriber, claimer)
	require.NoError(t, err)
	requireAmount(t, human(t, "0.2"), e.balance(subscriber))
	requireAmount(t, coin.Amount{}, e.balance(claimer))
	requireAmount(t, coin.Amount{}, e.subscription(1, subscriber).PendingDistribution)

	// Claiming again pays nothing.
	_, err = e.ctrl.Claim(e.ctx, e.db, e.publisher, 1, subscriber, claimer)
	require.NoError(t, err)
	requireAmount(t, human(t, "0.2"), e.balance(subscriber))
}

func TestApprovedSubscriptionNeedsNoClaim(t *testing.T) {
	e := newEnv(t)
	subscriber := idatest.NewAddress()
	e.mint(e.publisher, "100")
	e.createIndex(1)

	_, err := e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, subscriber)
	require.NoError(t, err)
	info := e.subscription(1, subscriber)
	assert.True(t, info.Exists)
	assert.True(t, info.Approved)
	assert.True(t, info.Units.IsZero())

	_, err = e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subscriber, human(t, "0.001"))
	require.NoError(t, err)
	_, actual, err := e.ctrl.Distribute(e.ctx, e.db, e.publisher, 1, human(t, "0.1"))
	require.NoError(t, err)
	requireAmount(t, human(t, "0.1"), actual)
	requireAmount(t, coin.NewAmount(100), e.index(1).IndexValue)

	balance, err := e.ctrl.RealtimeBalance(e.db, subscriber)
	require.NoError(t, err)
	requireAmount(t, human(t, "0.1"), balance)
	requireAmount(t, human(t, "0.1"), e.subscription(1, subscriber).Owed)

	// Settlement moves the owed value into the wallet without changing
	// the realtime balance.
	_, err = e.ctrl.RevokeSubscription(e.ctx, e.db, e.publisher, 1, subscriber)
	require.NoError(t, err)
	requireAmount(t, human(t, "0.1"), e.balance(subscriber))
	balance, err = e.ctrl.RealtimeBalance(e.db, subscriber)
	require.NoError(t, err)
	requireAmount(t, human(t, "0.1"), balance)
}

func TestDistributeWithoutUnits(t *testing.T) {
	e := newEnv(t)
	e.mint(e.publisher, "10")
	e.createIndex(1)
	e.events.Reset()

	before := snapshot(t, e.db)
	_, actual, err := e.ctrl.Distribute(e.ctx, e.db, e.publisher, 1, human(t, "5"))
	require.NoError(t, err)
	assert.True(t, actual.IsZero())
	assert.Equal(t, before, snapshot(t, e.db))
	assert.Empty(t, e.events.Events())
	requireAmount(t, human(t, "10"), e.balance(e.publisher))
}

func TestIndexValueMustIncrease(t *testing.T) {
	e := newEnv(t)
	e.mint(e.publisher, "10")
	e.createIndex(1)
	_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, idatest.NewAddress(), human(t, "1"))
	require.NoError(t, err)
	_, err = e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(5))
	require.NoError(t, err)

	before := snapshot(t, e.db)
	_, err = e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(4))
	require.True(t, ErrIndexValueMustIncrease.Is(err), "%+v", err)
	assert.Equal(t, before, snapshot(t, e.db))

	// Setting the same value is allowed and free.
	_, err = e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(5))
	require.NoError(t, err)
	requireAmount(t, human(t, "5"), e.balance(e.publisher))
}

func TestPublisherSolvency(t *testing.T) {
	e := newEnv(t)
	e.mint(e.publisher, "0.1")
	e.createIndex(1)
	_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, idatest.NewAddress(), human(t, "0.001"))
	require.NoError(t, err)

	before := snapshot(t, e.db)
	_, err = e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(200))
	require.True(t, ErrInsufficientBalance.Is(err), "%+v", err)
	_, _, err = e.ctrl.Distribute(e.ctx, e.db, e.publisher, 1, human(t, "0.2"))
	require.True(t, ErrInsufficientBalance.Is(err), "%+v", err)
	assert.Equal(t, before, snapshot(t, e.db))

	// Reserved value is not available for distributions.
	_, err = e.cash.Reserve(e.db, e.publisher, coin.NewCoin(0, 50000000, ticker))
	require.NoError(t, err)
	_, err = e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(100))
	require.True(t, ErrInsufficientBalance.Is(err), "%+v", err)
	_, err = e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(50))
	require.NoError(t, err)
}

func TestControllerErrors(t *testing.T) {
	e := newEnv(t)
	e.createIndex(1)
	pending := idatest.NewAddress()
	approved := idatest.NewAddress()
	stranger := idatest.NewAddress()
	_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, pending, human(t, "1"))
	require.NoError(t, err)
	_, err = e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, approved)
	require.NoError(t, err)

	zero := make(ida.Address, ida.AddressLength)

	cases := map[string]struct {
		op      func() error
		wantErr *errors.Error
	}{
		"create existing index": {
			op: func() error {
				_, err := e.ctrl.CreateIndex(e.ctx, e.db, e.publisher, 1)
				return err
			},
			wantErr: ErrIndexExists,
		},
		"update missing index": {
			op: func() error {
				_, err := e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 2, coin.NewAmount(1))
				return err
			},
			wantErr: ErrIndexNotFound,
		},
		"distribute to missing index": {
			op: func() error {
				_, _, err := e.ctrl.Distribute(e.ctx, e.db, e.publisher, 2, coin.NewAmount(1))
				return err
			},
			wantErr: ErrIndexNotFound,
		},
		"subscribe to missing index": {
			op: func() error {
				_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 2, pending, coin.NewAmount(1))
				return err
			},
			wantErr: ErrIndexNotFound,
		},
		"zero subscriber": {
			op: func() error {
				_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, zero, coin.NewAmount(1))
				return err
			},
			wantErr: ErrInvalidSubscriber,
		},
		"malformed subscriber": {
			op: func() error {
				_, err := e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, ida.Address{1, 2, 3})
				return err
			},
			wantErr: ErrInvalidSubscriber,
		},
		"approve twice": {
			op: func() error {
				_, err := e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, approved)
				return err
			},
			wantErr: ErrAlreadyApproved,
		},
		"revoke pending": {
			op: func() error {
				_, err := e.ctrl.RevokeSubscription(e.ctx, e.db, e.publisher, 1, pending)
				return err
			},
			wantErr: ErrNotApproved,
		},
		"revoke missing": {
			op: func() error {
				_, err := e.ctrl.RevokeSubscription(e.ctx, e.db, e.publisher, 1, stranger)
				return err
			},
			wantErr: ErrSubscriptionNotFound,
		},
		"delete missing": {
			op: func() error {
				_, err := e.ctrl.DeleteSubscription(e.ctx, e.db, e.publisher, 1, stranger, stranger)
				return err
			},
			wantErr: ErrSubscriptionNotFound,
		},
		"delete by a stranger": {
			op: func() error {
				_, err := e.ctrl.DeleteSubscription(e.ctx, e.db, e.publisher, 1, pending, stranger)
				return err
			},
			wantErr: ErrNotAllowed,
		},
		"claim missing": {
			op: func() error {
				_, err := e.ctrl.Claim(e.ctx, e.db, e.publisher, 1, stranger, stranger)
				return err
			},
			wantErr: ErrSubscriptionNotFound,
		},
		"claim approved": {
			op: func() error {
				_, err := e.ctrl.Claim(e.ctx, e.db, e.publisher, 1, approved, stranger)
				return err
			},
			wantErr: ErrAlreadyApproved,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			before := snapshot(t, e.db)
			if err := tc.op(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, before, snapshot(t, e.db))
		})
	}
}

func TestMissingConfiguration(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.db.Delete([]byte("_c:distribution")))
	_, err := e.ctrl.CreateIndex(e.ctx, e.db, e.publisher, 1)
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)
}

func TestDeleteSubscription(t *testing.T) {
	for _, byPublisher := range []bool{true, false} {
		e := newEnv(t)
		subscriber := idatest.NewAddress()
		other := idatest.NewAddress()
		e.mint(e.publisher, "10")
		e.createIndex(1)
		_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subscriber, human(t, "1"))
		require.NoError(t, err)
		_, err = e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, other, human(t, "1"))
		require.NoError(t, err)
		_, err = e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(2))
		require.NoError(t, err)
		_, err = e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, subscriber)
		require.NoError(t, err)
		_, err = e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(3))
		require.NoError(t, err)

		caller := subscriber
		if byPublisher {
			caller = e.publisher
		}
		_, err = e.ctrl.DeleteSubscription(e.ctx, e.db, e.publisher, 1, subscriber, caller)
		require.NoError(t, err)

		requireAmount(t, human(t, "3"), e.balance(subscriber))
		info := e.subscription(1, subscriber)
		assert.False(t, info.Exists)
		assert.True(t, info.Units.IsZero())

		idx := e.index(1)
		requireAmount(t, human(t, "0"), idx.TotalUnitsApproved)
		requireAmount(t, human(t, "1"), idx.TotalUnitsPending)

		list, err := e.ctrl.ListByPublisher(e.db, e.publisher, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, other, list[0].Subscriber)

		mine, err := e.ctrl.ListBySubscriber(e.db, subscriber)
		require.NoError(t, err)
		assert.Empty(t, mine)

		_, err = e.ctrl.GetSubscriptionByID(e.db, SubscriptionID(e.publisher, 1, subscriber))
		assert.True(t, ErrSubscriptionNotFound.Is(err))
	}
}

func TestSubscriptionRemovedWhenEmpty(t *testing.T) {
	e := newEnv(t)
	subscriber := idatest.NewAddress()
	e.createIndex(1)

	_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subscriber, human(t, "1"))
	require.NoError(t, err)
	_, err = e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subscriber, coin.Amount{})
	require.NoError(t, err)

	assert.False(t, e.subscription(1, subscriber).Exists)
	list, err := e.ctrl.ListByPublisher(e.db, e.publisher, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubscriptionLimit(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, gconf.Save(e.db, confPkg, &Configuration{Schema: 1, Ticker: ticker, MaxSubscriptions: 2}))
	subscriber := idatest.NewAddress()
	for id := uint32(1); id <= 3; id++ {
		e.createIndex(id)
	}

	for id := uint32(1); id <= 2; id++ {
		_, err := e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, id, subscriber)
		require.NoError(t, err)
	}
	_, err := e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 3, subscriber)
	require.True(t, ErrSubscriptionLimit.Is(err), "%+v", err)

	// Changing an existing subscription is not limited.
	_, err = e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subscriber, human(t, "1"))
	require.NoError(t, err)

	_, err = e.ctrl.DeleteSubscription(e.ctx, e.db, e.publisher, 2, subscriber, subscriber)
	require.NoError(t, err)
	_, err = e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 3, subscriber)
	require.NoError(t, err)
}

func TestListings(t *testing.T) {
	e := newEnv(t)
	other := newEnv(t)
	other.db = e.db
	other.ctrl = e.ctrl

	subscriber := idatest.NewAddress()
	e.createIndex(1)
	other.createIndex(7)

	a, b := idatest.NewAddress(), idatest.NewAddress()
	for _, s := range []ida.Address{a, subscriber, b} {
		_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, s, human(t, "1"))
		require.NoError(t, err)
	}
	_, err := e.ctrl.ApproveSubscription(e.ctx, e.db, other.publisher, 7, subscriber)
	require.NoError(t, err)

	list, err := e.ctrl.ListByPublisher(e.db, e.publisher, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []ida.Address{a, subscriber, b}, []ida.Address{list[0].Subscriber, list[1].Subscriber, list[2].Subscriber})

	mine, err := e.ctrl.ListBySubscriber(e.db, subscriber)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, e.publisher, mine[0].Publisher)
	assert.False(t, mine[0].Approved)
	assert.Equal(t, other.publisher, mine[1].Publisher)
	assert.True(t, mine[1].Approved)

	byID, err := e.ctrl.GetSubscriptionByID(e.db, mine[1].ID)
	require.NoError(t, err)
	assert.Equal(t, mine[1], byID)

	_, err = e.ctrl.ListByPublisher(e.db, e.publisher, 99)
	assert.True(t, ErrIndexNotFound.Is(err))

	missing, err := e.ctrl.GetIndex(e.db, e.publisher, 99)
	require.NoError(t, err)
	assert.False(t, missing.Exists)
}

func TestCalculateDistribution(t *testing.T) {
	e := newEnv(t)
	e.createIndex(1)
	_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, idatest.NewAddress(), human(t, "0.003"))
	require.NoError(t, err)

	before := snapshot(t, e.db)
	actual, value, err := e.ctrl.CalculateDistribution(e.db, e.publisher, 1, human(t, "1"))
	require.NoError(t, err)
	// 1e9 / 3e6 = 333, 333 * 3e6 = 0.999
	requireAmount(t, human(t, "0.999"), actual)
	requireAmount(t, coin.NewAmount(333), value)
	assert.Equal(t, before, snapshot(t, e.db))

	_, _, err = e.ctrl.CalculateDistribution(e.db, e.publisher, 2, human(t, "1"))
	assert.True(t, ErrIndexNotFound.Is(err))
}

func TestSelfSubscription(t *testing.T) {
	e := newEnv(t)
	e.mint(e.publisher, "100")
	e.createIndex(1)
	_, err := e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, e.publisher)
	require.NoError(t, err)
	_, err = e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, e.publisher, human(t, "0.001"))
	require.NoError(t, err)
	_, _, err = e.ctrl.Distribute(e.ctx, e.db, e.publisher, 1, human(t, "0.2"))
	require.NoError(t, err)

	balance, err := e.ctrl.RealtimeBalance(e.db, e.publisher)
	require.NoError(t, err)
	requireAmount(t, human(t, "100"), balance)
}

// TestValueConservation runs a sequence of operations and checks after
// each one that no value is created or lost and that the index account
// holds exactly what is owed to subscribers.
func TestValueConservation(t *testing.T) {
	e := newEnv(t)
	e.mint(e.publisher, "1000")
	e.createIndex(1)
	subs := []ida.Address{idatest.NewAddress(), idatest.NewAddress(), idatest.NewAddress()}
	account := IndexAccount(e.publisher, 1)

	steps := []func() error{
		func() error { _, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subs[0], human(t, "1")); return err },
		func() error { _, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subs[1], human(t, "2.5")); return err },
		func() error { _, err := e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, subs[1]); return err },
		func() error { _, _, err := e.ctrl.Distribute(e.ctx, e.db, e.publisher, 1, human(t, "7")); return err },
		func() error { _, err := e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, subs[2]); return err },
		func() error { _, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subs[2], human(t, "0.3")); return err },
		func() error { _, err := e.ctrl.UpdateIndex(e.ctx, e.db, e.publisher, 1, coin.NewAmount(9)); return err },
		func() error { _, err := e.ctrl.RevokeSubscription(e.ctx, e.db, e.publisher, 1, subs[1]); return err },
		func() error { _, _, err := e.ctrl.Distribute(e.ctx, e.db, e.publisher, 1, human(t, "33.3")); return err },
		func() error { _, err := e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, subs[0]); return err },
		func() error { _, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subs[1], human(t, "0.5")); return err },
		func() error { _, err := e.ctrl.Claim(e.ctx, e.db, e.publisher, 1, subs[1], subs[0]); return err },
		func() error { _, err := e.ctrl.DeleteSubscription(e.ctx, e.db, e.publisher, 1, subs[2], e.publisher); return err },
		func() error { _, _, err := e.ctrl.Distribute(e.ctx, e.db, e.publisher, 1, human(t, "3")); return err },
	}

	total := human(t, "1000")
	var lastValue coin.Amount
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)

		sum := e.balance(e.publisher)
		sum = mustAdd(t, sum, e.balance(account))
		var owed coin.Amount
		for _, s := range subs {
			sum = mustAdd(t, sum, e.balance(s))
			info := e.subscription(1, s)
			owed = mustAdd(t, owed, info.Owed)
			owed = mustAdd(t, owed, info.PendingDistribution)
		}
		requireAmount(t, total, sum)
		requireAmount(t, owed, e.balance(account))

		idx := e.index(1)
		require.True(t, idx.IndexValue.Cmp(lastValue) >= 0, "step %d: index value decreased", i)
		lastValue = idx.IndexValue

		var approved, pending coin.Amount
		for _, s := range subs {
			info := e.subscription(1, s)
			if info.Approved {
				approved = mustAdd(t, approved, info.Units)
			} else {
				pending = mustAdd(t, pending, info.Units)
			}
		}
		requireAmount(t, approved, idx.TotalUnitsApproved)
		requireAmount(t, pending, idx.TotalUnitsPending)
	}
}

// TestApprovalKeepsValue checks that approving a subscription does not
// change the value the subscriber can get.
func TestApprovalKeepsValue(t *testing.T) {
	e := newEnv(t)
	subscriber := idatest.NewAddress()
	e.mint(e.publisher, "10")
	e.createIndex(1)
	_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subscriber, human(t, "2"))
	require.NoError(t, err)
	_, _, err = e.ctrl.Distribute(e.ctx, e.db, e.publisher, 1, human(t, "4"))
	require.NoError(t, err)

	info := e.subscription(1, subscriber)
	before := mustAdd(t, e.balance(subscriber), info.PendingDistribution)

	_, err = e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, subscriber)
	require.NoError(t, err)
	after, err := e.ctrl.RealtimeBalance(e.db, subscriber)
	require.NoError(t, err)
	requireAmount(t, before, after)
	requireAmount(t, human(t, "4"), after)
}

func mustAdd(t testing.TB, a, b coin.Amount) coin.Amount {
	t.Helper()
	res, err := a.Add(b)
	require.NoError(t, err)
	return res
}

func TestLifecycleEvents(t *testing.T) {
	e := newEnv(t)
	e.ctx = ida.WithHeight(context.Background(), 42)
	subscriber := idatest.NewAddress()
	e.mint(e.publisher, "10")
	e.createIndex(1)

	_, err := e.ctrl.UpdateSubscription(e.ctx, e.db, e.publisher, 1, subscriber, human(t, "1"))
	require.NoError(t, err)
	_, _, err = e.ctrl.Distribute(e.ctx, e.db, e.publisher, 1, human(t, "2"))
	require.NoError(t, err)
	_, err = e.ctrl.Claim(e.ctx, e.db, e.publisher, 1, subscriber, subscriber)
	require.NoError(t, err)
	_, err = e.ctrl.ApproveSubscription(e.ctx, e.db, e.publisher, 1, subscriber)
	require.NoError(t, err)
	_, err = e.ctrl.RevokeSubscription(e.ctx, e.db, e.publisher, 1, subscriber)
	require.NoError(t, err)
	_, err = e.ctrl.DeleteSubscription(e.ctx, e.db, e.publisher, 1, subscriber, subscriber)
	require.NoError(t, err)
	// Failures publish nothing.
	_, err = e.ctrl.RevokeSubscription(e.ctx, e.db, e.publisher, 1, subscriber)
	require.Error(t, err)

	events := e.events.Events()
	var types []EventType
	for _, ev := range events {
		types = append(types, ev.Type)
		assert.Equal(t, int64(42), ev.Height)
		assert.Equal(t, e.publisher, ev.Publisher)
	}
	assert.Equal(t, []EventType{
		EventIndexCreated,
		EventSubscriptionUnitsUpdated,
		EventIndexUpdated,
		EventClaimed,
		EventSubscriptionApproved,
		EventSubscriptionRevoked,
		EventSubscriptionDeleted,
	}, types)

	requireAmount(t, human(t, "2"), events[2].Amount)
	requireAmount(t, coin.NewAmount(2), events[2].IndexValue)
	requireAmount(t, human(t, "2"), events[3].Amount)
	assert.Equal(t, subscriber, events[3].Subscriber)
	assert.True(t, events[4].Approved)
}
