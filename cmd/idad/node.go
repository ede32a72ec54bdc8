package main

import (
	"context"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/app"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/x/cash"
	"github.com/iov-one/ida/x/distribution"
	"github.com/iov-one/ida/x/distribution/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/tendermint/tendermint/libs/log"
)

// node is a ledger with all extensions registered.
type node struct {
	ledger *app.Ledger
	cash   cash.BaseController
	ctrl   *distribution.Controller
	events *distribution.EventLog
	redis  *redis.Client
}

// newNode opens the store and builds the ledger. A nil registerer
// disables metrics.
func newNode(ctx context.Context, conf Config, logger log.Logger, reg prometheus.Registerer) (*node, error) {
	n := &node{
		cash:   cash.NewController(cash.NewBucket()),
		events: &distribution.EventLog{},
	}

	sinks := teeSink{n.events}
	if conf.Redis != nil {
		rdb, err := stream.Dial(ctx, *conf.Redis)
		if err != nil {
			return nil, err
		}
		n.redis = rdb
		sinks = append(sinks, stream.NewSink(rdb, conf.Redis.Stream, conf.Redis.MaxLen))
	}
	opts := []distribution.Option{distribution.WithEventSink(sinks)}
	if reg != nil {
		m, err := distribution.NewMetrics(reg)
		if err != nil {
			n.close()
			return nil, errors.Wrap(errors.ErrHuman, err.Error())
		}
		opts = append(opts, distribution.WithMetrics(m))
	}
	n.ctrl = distribution.NewController(n.cash, opts...)

	auth := signerAuth{}
	router := app.NewRouter()
	cash.RegisterRoutes(router, auth, n.cash)
	distribution.RegisterRoutes(router, auth, n.ctrl)
	handler := app.ChainDecorators(
		app.NewLogging(),
		app.NewRecovery(),
		app.NewSavepoint().OnCheck(),
	).WithHandler(router)
	genesis := ida.ChainInitializers(cash.Initializer{}, distribution.Initializer{})

	db, err := openStore(conf)
	if err != nil {
		n.close()
		return nil, err
	}
	if n.ledger, err = app.NewLedger("ida", db, handler, genesis, logger); err != nil {
		db.Close()
		n.close()
		return nil, err
	}
	return n, nil
}

func (n *node) close() error {
	var err error
	if n.ledger != nil {
		err = errors.Append(err, n.ledger.Close())
	}
	if n.redis != nil {
		err = errors.Append(err, n.redis.Close())
	}
	return err
}

// deliver executes msg signed by the given account names.
func (n *node) deliver(ctx context.Context, msg ida.Msg, signers ...string) (*ida.DeliverResult, error) {
	conds := make([]ida.Condition, len(signers))
	for i, s := range signers {
		conds[i] = accountCondition(s)
	}
	ctx = withSigners(ctx, conds...)
	tx := &tx{msg: msg}
	if _, err := n.ledger.Check(ctx, tx); err != nil {
		return nil, err
	}
	res, _, err := n.ledger.Deliver(ctx, tx)
	return res, err
}

type tx struct {
	msg ida.Msg
}

var _ ida.Tx = (*tx)(nil)

func (t *tx) GetMsg() (ida.Msg, error) {
	return t.msg, nil
}

// teeSink publishes events to all sinks.
type teeSink []distribution.EventSink

func (t teeSink) Publish(ctx ida.Context, events ...distribution.Event) error {
	var err error
	for _, s := range t {
		err = errors.Append(err, s.Publish(ctx, events...))
	}
	return err
}
