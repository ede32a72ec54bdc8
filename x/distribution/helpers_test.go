package distribution

import (
	"context"
	"testing"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/gconf"
	"github.com/iov-one/ida/idatest"
	"github.com/iov-one/ida/store"
	"github.com/iov-one/ida/x/cash"
	"github.com/stretchr/testify/require"
)

const ticker = "IDA"

// env is a funded ledger with a single publisher.
type env struct {
	t         testing.TB
	ctx       ida.Context
	db        ida.CacheableKVStore
	cash      cash.BaseController
	ctrl      *Controller
	events    *EventLog
	publisher ida.Address
}

func newEnv(t testing.TB, opts ...Option) *env {
	t.Helper()
	e := &env{
		t:         t,
		ctx:       context.Background(),
		db:        store.MemStore(),
		cash:      cash.NewController(cash.NewBucket()),
		events:    &EventLog{},
		publisher: idatest.NewAddress(),
	}
	conf := &Configuration{Schema: 1, Ticker: ticker}
	require.NoError(t, gconf.Save(e.db, confPkg, conf))
	e.ctrl = NewController(e.cash, append([]Option{WithEventSink(e.events)}, opts...)...)
	return e
}

// human parses a decimal number of whole coins into atomic units.
func human(t testing.TB, s string) coin.Amount {
	t.Helper()
	a, err := coin.ParseHumanAmount(s)
	require.NoError(t, err)
	return a
}

func (e *env) mint(addr ida.Address, amount string) {
	e.t.Helper()
	c, err := human(e.t, amount).ToCoin(ticker)
	require.NoError(e.t, err)
	require.NoError(e.t, e.cash.CoinMint(e.db, addr, c))
}

// balance returns the wallet balance of the distributed currency.
func (e *env) balance(addr ida.Address) coin.Amount {
	e.t.Helper()
	coins, err := e.cash.Balance(e.db, addr)
	require.NoError(e.t, err)
	a, err := coin.AmountOf(coins.Get(ticker))
	require.NoError(e.t, err)
	return a
}

func (e *env) createIndex(id uint32) {
	e.t.Helper()
	_, err := e.ctrl.CreateIndex(e.ctx, e.db, e.publisher, id)
	require.NoError(e.t, err)
}

func (e *env) subscription(id uint32, subscriber ida.Address) SubscriptionInfo {
	e.t.Helper()
	info, err := e.ctrl.GetSubscription(e.db, e.publisher, id, subscriber)
	require.NoError(e.t, err)
	return info
}

func (e *env) index(id uint32) IndexInfo {
	e.t.Helper()
	info, err := e.ctrl.GetIndex(e.db, e.publisher, id)
	require.NoError(e.t, err)
	return info
}

// snapshot returns a copy of the whole store content.
func snapshot(t testing.TB, db ida.ReadOnlyKVStore) map[string]string {
	t.Helper()
	it, err := db.Iterator(nil, nil)
	require.NoError(t, err)
	defer it.Release()
	res := make(map[string]string)
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res
		}
		require.NoError(t, err)
		res[string(key)] = string(value)
	}
}

func requireAmount(t testing.TB, want, got coin.Amount) {
	t.Helper()
	if !want.Equals(got) {
		t.Fatalf("want %s (%s), got %s (%s)", want, want.Human(), got, got.Human())
	}
}
