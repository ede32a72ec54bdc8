package app

import (
	"context"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// genesisKey marks a store that was already initialized.
var genesisKey = []byte("_i:genesis")

// Ledger executes transactions against a commit store. Each delivered
// transaction is applied on a cache of the last committed state and
// committed as a new version only when the handler succeeds.
type Ledger struct {
	name    string
	logger  log.Logger
	store   ida.CommitKVStore
	handler ida.Handler
	init    ida.Initializer
	height  int64
}

// NewLedger loads the latest version of the store. The handler is usually
// a router wrapped in decorators.
func NewLedger(name string, store ida.CommitKVStore, handler ida.Handler, init ida.Initializer, logger log.Logger) (*Ledger, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "cannot load store")
	}
	id, err := store.LatestVersion()
	if err != nil {
		return nil, errors.Wrap(err, "cannot read store version")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Ledger{
		name:    name,
		logger:  logger.With("module", name),
		store:   store,
		handler: handler,
		init:    init,
		height:  id.Version,
	}, nil
}

// Height returns the version of the last commit.
func (l *Ledger) Height() int64 {
	return l.height
}

// Logger returns the ledger logger.
func (l *Ledger) Logger() log.Logger {
	return l.logger
}

// InitGenesis runs all initializers with given options and commits the
// result. A ledger can be initialized only once.
func (l *Ledger) InitGenesis(opts ida.Options) (ida.CommitID, error) {
	done, err := l.store.Get(genesisKey)
	if err != nil {
		return ida.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if done != nil {
		return ida.CommitID{}, errors.Wrap(errors.ErrState, "genesis already loaded")
	}

	cache := l.store.CacheWrap()
	if err := l.init.FromGenesis(opts, cache); err != nil {
		cache.Discard()
		return ida.CommitID{}, errors.Wrap(err, "genesis")
	}
	if err := cache.Set(genesisKey, []byte{1}); err != nil {
		cache.Discard()
		return ida.CommitID{}, err
	}
	return l.commit(cache)
}

// Check runs the transaction against the last committed state without
// persisting any change.
func (l *Ledger) Check(ctx ida.Context, tx ida.Tx) (*ida.CheckResult, error) {
	cache := l.store.CacheWrap()
	defer cache.Discard()
	return l.handler.Check(l.context(ctx, l.height+1), cache, tx)
}

// Deliver executes the transaction and commits a new version when it
// succeeds. A failed transaction leaves the store unchanged.
func (l *Ledger) Deliver(ctx ida.Context, tx ida.Tx) (*ida.DeliverResult, ida.CommitID, error) {
	cache := l.store.CacheWrap()
	res, err := l.handler.Deliver(l.context(ctx, l.height+1), cache, tx)
	if err != nil {
		cache.Discard()
		return nil, ida.CommitID{}, err
	}
	id, err := l.commit(cache)
	if err != nil {
		return nil, ida.CommitID{}, err
	}
	return res, id, nil
}

// View calls fn with a read only view of the last committed state.
func (l *Ledger) View(fn func(db ida.ReadOnlyKVStore) error) error {
	cache := l.store.CacheWrap()
	defer cache.Discard()
	return fn(cache)
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}

func (l *Ledger) commit(cache ida.KVCacheWrap) (ida.CommitID, error) {
	if err := cache.Write(); err != nil {
		return ida.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	id, err := l.store.Commit()
	if err != nil {
		return ida.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	l.height = id.Version
	l.logger.Debug("commit", "height", id.Version, "hash", id.Hash)
	return id, nil
}

// context attaches the ledger logger and the execution height unless the
// caller already provided them.
func (l *Ledger) context(ctx ida.Context, height int64) ida.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if ida.GetLogger(ctx) == ida.DefaultLogger {
		ctx = ida.WithLogger(ctx, l.logger)
	}
	if _, ok := ida.GetHeight(ctx); !ok {
		ctx = ida.WithHeight(ctx, height)
	}
	return ctx
}
