package distribution

import (
	"context"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/store"
	"github.com/tendermint/tendermint/libs/log"
)

// CashController is the token ledger used to check publisher solvency and
// to move value. It is implemented by x/cash.
type CashController interface {
	Balance(db ida.ReadOnlyKVStore, addr ida.Address) (coin.Coins, error)
	AvailableBalance(db ida.ReadOnlyKVStore, addr ida.Address, ticker string) (coin.Coin, error)
	MoveCoins(db ida.KVStore, src, dest ida.Address, amount coin.Coin) error
}

// Controller orchestrates all index and subscription changes.
//
// Each operation runs on a cache of the given store. Any failure discards
// the cache, so an operation either applies completely or not at all.
// Events are published only after the outermost operation is written.
type Controller struct {
	cash      CashController
	indexes   IndexBucket
	subs      SubscriptionBucket
	refs      RefListBucket
	callbacks CallbackRegistry
	sink      EventSink
	metrics   *Metrics
}

// Option configures a Controller.
type Option func(*Controller)

// WithCallbacks sets the registry used to notify counterparties.
func WithCallbacks(r CallbackRegistry) Option {
	return func(c *Controller) { c.callbacks = r }
}

// WithEventSink sets the receiver of lifecycle events.
func WithEventSink(s EventSink) Option {
	return func(c *Controller) { c.sink = s }
}

// WithMetrics enables operation counters.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

func NewController(cash CashController, opts ...Option) *Controller {
	c := &Controller{
		cash:    cash,
		indexes: NewIndexBucket(),
		subs:    NewSubscriptionBucket(),
		refs:    NewRefListBucket(),
		sink:    NopSink{},
	}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

// operation is the state of a single controller call.
type operation struct {
	db          ida.KVCacheWrap
	conf        *Configuration
	events      []Event
	distributed coin.Amount
	// applied lists nested operations that succeeded within this one.
	applied []string

	parent *operation
	done   bool
}

type opKey struct{}

// enclosing returns the operation still running that ctx was created
// within, or nil.
func enclosing(ctx ida.Context) *operation {
	op, _ := ctx.Value(opKey{}).(*operation)
	for op != nil && op.done {
		op = op.parent
	}
	return op
}

// run executes fn on a cache of db. An operation started by a callback of
// another one is part of it: its events and metrics are handed over to the
// enclosing operation and published only when that one is written.
func (c *Controller) run(
	ctx ida.Context,
	db ida.KVStore,
	name string,
	keyvals []interface{},
	fn func(ida.Context, *operation) (ida.Context, error),
) (ida.Context, error) {
	logger := ida.GetLogger(ctx).With(append([]interface{}{"module", "distribution", "op", name}, keyvals...)...)

	cache := cacheable(db).CacheWrap()
	op := &operation{db: cache, parent: enclosing(ctx)}
	out, err := c.exec(context.WithValue(ctx, opKey{}, op), op, fn)
	op.done = true
	if err == nil {
		if werr := cache.Write(); werr != nil {
			err = errors.Wrap(errors.ErrDatabase, werr.Error())
		}
	} else {
		cache.Discard()
	}
	if err != nil {
		c.metrics.recordOperation(name, err)
		logger.Info("operation failed", "err", err)
		return ctx, err
	}

	if p := op.parent; p != nil {
		p.events = append(p.events, op.events...)
		p.applied = append(append(p.applied, name), op.applied...)
		if p.distributed, err = p.distributed.Add(op.distributed); err != nil {
			return ctx, err
		}
		logger.Debug("nested operation applied", "events", len(op.events))
		return out, nil
	}

	c.metrics.recordOperation(name, nil)
	for _, nested := range op.applied {
		c.metrics.recordOperation(nested, nil)
	}
	c.metrics.recordDistributed(op.distributed)
	logger.Debug("operation applied", "events", len(op.events))
	c.publish(out, logger, op.events)
	return out, nil
}

func (c *Controller) exec(ctx ida.Context, op *operation, fn func(ida.Context, *operation) (ida.Context, error)) (ida.Context, error) {
	conf, err := loadConf(op.db)
	if err != nil {
		return nil, err
	}
	op.conf = conf
	return fn(ctx, op)
}

// publish delivers events of an already written operation. A failing sink
// cannot undo the operation, so the failure is only logged.
func (c *Controller) publish(ctx ida.Context, logger log.Logger, events []Event) {
	if len(events) == 0 {
		return
	}
	if height, ok := ida.GetHeight(ctx); ok {
		for i := range events {
			events[i].Height = height
		}
	}
	if err := c.sink.Publish(ctx, events...); err != nil {
		logger.Error("cannot publish events", "err", err)
	}
}

func cacheable(db ida.KVStore) ida.CacheableKVStore {
	if c, ok := db.(ida.CacheableKVStore); ok {
		return c
	}
	return store.BTreeCacheable{KVStore: db}
}

// CreateIndex creates an empty index owned by the publisher.
func (c *Controller) CreateIndex(ctx ida.Context, db ida.KVStore, publisher ida.Address, indexID uint32) (ida.Context, error) {
	return c.run(ctx, db, "create_index", []interface{}{"publisher", publisher, "index", indexID},
		func(ctx ida.Context, op *operation) (ida.Context, error) {
			if err := publisher.Validate(); err != nil {
				return nil, errors.Wrap(err, "publisher")
			}
			idx, err := c.indexes.GetIndex(op.db, publisher, indexID)
			if err != nil {
				return nil, err
			}
			if idx != nil {
				return nil, errors.Wrapf(ErrIndexExists, "index %d of %s", indexID, publisher)
			}
			idx = &Index{Schema: 1, Publisher: publisher, ID: indexID}
			if err := c.indexes.SaveIndex(op.db, idx); err != nil {
				return nil, err
			}
			op.events = append(op.events, indexEvent(EventIndexCreated, idx, coin.Amount{}))
			return ctx, nil
		})
}

// UpdateIndex sets the index value. The publisher pays the growth of the
// index value multiplied by all units of the index.
func (c *Controller) UpdateIndex(ctx ida.Context, db ida.KVStore, publisher ida.Address, indexID uint32, value coin.Amount) (ida.Context, error) {
	return c.run(ctx, db, "update_index", []interface{}{"publisher", publisher, "index", indexID, "value", value},
		func(ctx ida.Context, op *operation) (ida.Context, error) {
			idx, err := c.loadIndex(op.db, publisher, indexID)
			if err != nil {
				return nil, err
			}
			if value.Cmp(idx.Value) < 0 {
				return nil, errors.Wrapf(ErrIndexValueMustIncrease, "%s is lower than %s", value, idx.Value)
			}
			total, err := idx.TotalUnits()
			if err != nil {
				return nil, err
			}
			outflow, err := Outflow(idx.Value, value, total)
			if err != nil {
				return nil, err
			}
			if err := c.fund(op, idx, outflow, value); err != nil {
				return nil, err
			}
			return ctx, nil
		})
}

// Distribute spreads amount over all units of the index. The amount is
// rounded down to a multiple of the total units and only the rounded
// amount is paid. Distributing to an index without units does nothing.
// The distributed amount is returned.
func (c *Controller) Distribute(ctx ida.Context, db ida.KVStore, publisher ida.Address, indexID uint32, amount coin.Amount) (ida.Context, coin.Amount, error) {
	var actual coin.Amount
	ctx, err := c.run(ctx, db, "distribute", []interface{}{"publisher", publisher, "index", indexID, "amount", amount},
		func(ctx ida.Context, op *operation) (ida.Context, error) {
			idx, err := c.loadIndex(op.db, publisher, indexID)
			if err != nil {
				return nil, err
			}
			total, err := idx.TotalUnits()
			if err != nil {
				return nil, err
			}
			delta, distributed, err := DistributionOf(amount, total)
			if err != nil {
				return nil, err
			}
			if distributed.IsZero() {
				return ctx, nil
			}
			value, err := idx.Value.Add(delta)
			if err != nil {
				return nil, err
			}
			if err := c.fund(op, idx, distributed, value); err != nil {
				return nil, err
			}
			actual = distributed
			return ctx, nil
		})
	if err != nil {
		return ctx, coin.Amount{}, err
	}
	return ctx, actual, nil
}

// fund moves outflow from the publisher to the index account and sets the
// new index value.
func (c *Controller) fund(op *operation, idx *Index, outflow, value coin.Amount) error {
	if !outflow.IsZero() {
		available, err := c.available(op, idx.Publisher)
		if err != nil {
			return err
		}
		if available.Cmp(outflow) < 0 {
			return errors.Wrapf(ErrInsufficientBalance, "available %s, required %s", available.Human(), outflow.Human())
		}
		if err := c.pay(op, idx.Publisher, IndexAccount(idx.Publisher, idx.ID), outflow); err != nil {
			return err
		}
	}
	idx.Value = value
	if err := c.indexes.SaveIndex(op.db, idx); err != nil {
		return err
	}
	op.distributed = outflow
	op.events = append(op.events, indexEvent(EventIndexUpdated, idx, outflow))
	return nil
}

func (c *Controller) available(op *operation, account ida.Address) (coin.Amount, error) {
	avail, err := c.cash.AvailableBalance(op.db, account, op.conf.Ticker)
	if err != nil {
		return coin.Amount{}, errors.Wrap(err, "available balance")
	}
	if !avail.IsPositive() {
		return coin.Amount{}, nil
	}
	return coin.AmountOf(avail)
}

func (c *Controller) pay(op *operation, src, dest ida.Address, amount coin.Amount) error {
	if amount.IsZero() {
		return nil
	}
	value, err := amount.ToCoin(op.conf.Ticker)
	if err != nil {
		return err
	}
	if err := c.cash.MoveCoins(op.db, src, dest, value); err != nil {
		return errors.Wrapf(err, "cannot move %s", value)
	}
	return nil
}

// UpdateSubscription sets the units of a subscription. Value owed for the
// old units is settled first.
func (c *Controller) UpdateSubscription(ctx ida.Context, db ida.KVStore, publisher ida.Address, indexID uint32, subscriber ida.Address, units coin.Amount) (ida.Context, error) {
	return c.changeSubscription(ctx, db, "update_subscription", publisher, publisher, indexID, subscriber, EventSubscriptionUnitsUpdated,
		func(idx *Index, sub *Subscription) (coin.Amount, error) {
			payout, err := Settle(sub, idx.Value)
			if err != nil {
				return coin.Amount{}, err
			}
			if err := MoveUnits(idx, sub.Units, sub.Approved, units, sub.Approved); err != nil {
				return coin.Amount{}, err
			}
			sub.Units = units
			return payout, nil
		})
}

// ApproveSubscription makes the subscriber balance include the owed value.
// Value accrued while pending is paid at once.
func (c *Controller) ApproveSubscription(ctx ida.Context, db ida.KVStore, publisher ida.Address, indexID uint32, subscriber ida.Address) (ida.Context, error) {
	return c.changeSubscription(ctx, db, "approve_subscription", subscriber, publisher, indexID, subscriber, EventSubscriptionApproved,
		func(idx *Index, sub *Subscription) (coin.Amount, error) {
			if sub.Approved {
				return coin.Amount{}, errors.Wrap(ErrAlreadyApproved, "cannot approve")
			}
			if _, err := Settle(sub, idx.Value); err != nil {
				return coin.Amount{}, err
			}
			if err := MoveUnits(idx, sub.Units, false, sub.Units, true); err != nil {
				return coin.Amount{}, err
			}
			payout := sub.PendingDistribution
			sub.Approved = true
			sub.PendingDistribution = coin.Amount{}
			return payout, nil
		})
}

// RevokeSubscription settles an approved subscription and turns it back
// to pending.
func (c *Controller) RevokeSubscription(ctx ida.Context, db ida.KVStore, publisher ida.Address, indexID uint32, subscriber ida.Address) (ida.Context, error) {
	return c.changeSubscription(ctx, db, "revoke_subscription", subscriber, publisher, indexID, subscriber, EventSubscriptionRevoked,
		func(idx *Index, sub *Subscription) (coin.Amount, error) {
			if !sub.IsLive() {
				return coin.Amount{}, errors.Wrap(ErrSubscriptionNotFound, "cannot revoke")
			}
			if !sub.Approved {
				return coin.Amount{}, errors.Wrap(ErrNotApproved, "cannot revoke")
			}
			payout, err := Settle(sub, idx.Value)
			if err != nil {
				return coin.Amount{}, err
			}
			if err := MoveUnits(idx, sub.Units, true, sub.Units, false); err != nil {
				return coin.Amount{}, err
			}
			sub.Approved = false
			return payout, nil
		})
}

// DeleteSubscription settles and removes a subscription. Only the
// publisher or the subscriber can delete it. All owed value, pending
// included, is paid to the subscriber.
func (c *Controller) DeleteSubscription(ctx ida.Context, db ida.KVStore, publisher ida.Address, indexID uint32, subscriber, caller ida.Address) (ida.Context, error) {
	return c.changeSubscription(ctx, db, "delete_subscription", caller, publisher, indexID, subscriber, EventSubscriptionDeleted,
		func(idx *Index, sub *Subscription) (coin.Amount, error) {
			if !sub.IsLive() {
				return coin.Amount{}, errors.Wrap(ErrSubscriptionNotFound, "cannot delete")
			}
			if !caller.Equals(publisher) && !caller.Equals(subscriber) {
				return coin.Amount{}, errors.Wrapf(ErrNotAllowed, "%s cannot delete subscription", caller)
			}
			payout, err := Settle(sub, idx.Value)
			if err != nil {
				return coin.Amount{}, err
			}
			if payout, err = payout.Add(sub.PendingDistribution); err != nil {
				return coin.Amount{}, err
			}
			if err := MoveUnits(idx, sub.Units, sub.Approved, coin.Amount{}, false); err != nil {
				return coin.Amount{}, err
			}
			sub.Units = coin.Amount{}
			sub.Approved = false
			sub.PendingDistribution = coin.Amount{}
			return payout, nil
		})
}

// Claim pays the pending value of a subscription to the subscriber. Anyone
// can claim on behalf of a subscriber.
func (c *Controller) Claim(ctx ida.Context, db ida.KVStore, publisher ida.Address, indexID uint32, subscriber, caller ida.Address) (ida.Context, error) {
	return c.changeSubscription(ctx, db, "claim", caller, publisher, indexID, subscriber, EventClaimed,
		func(idx *Index, sub *Subscription) (coin.Amount, error) {
			if !sub.IsLive() {
				return coin.Amount{}, errors.Wrap(ErrSubscriptionNotFound, "cannot claim")
			}
			if sub.Approved {
				return coin.Amount{}, errors.Wrap(ErrAlreadyApproved, "nothing to claim")
			}
			if _, err := Settle(sub, idx.Value); err != nil {
				return coin.Amount{}, err
			}
			payout := sub.PendingDistribution
			sub.PendingDistribution = coin.Amount{}
			return payout, nil
		})
}

// planFunc computes the new state of a subscription and returns the value
// to pay from the index account to the subscriber. Both idx and sub are
// fresh copies that the function modifies in place.
type planFunc func(idx *Index, sub *Subscription) (coin.Amount, error)

func (c *Controller) changeSubscription(
	ctx ida.Context,
	db ida.KVStore,
	name string,
	caller, publisher ida.Address,
	indexID uint32,
	subscriber ida.Address,
	event EventType,
	plan planFunc,
) (ida.Context, error) {
	keyvals := []interface{}{"publisher", publisher, "index", indexID, "subscriber", subscriber}
	return c.run(ctx, db, name, keyvals, func(ctx ida.Context, op *operation) (ida.Context, error) {
		if err := validSubscriber(subscriber); err != nil {
			return nil, err
		}

		idx, sub, before, payout, err := c.planChange(op, publisher, indexID, subscriber, plan)
		if err != nil {
			return nil, err
		}

		var cb AgreementCallback
		if c.callbacks != nil {
			cb = c.callbacks.Callback(counterparty(caller, publisher, subscriber))
		}
		data := agreementData(publisher, indexID, subscriber, before, stateOf(sub))

		if cb != nil {
			next, err := cb.BeforeAgreement(ctx, op.db, data)
			if err != nil {
				return nil, errors.Wrap(err, "before agreement callback")
			}
			if next != nil {
				ctx = next
			}
			// The callback could have changed the state, so the plan is
			// applied again to the current one.
			idx, sub, before, payout, err = c.planChange(op, publisher, indexID, subscriber, plan)
			if err != nil {
				return nil, err
			}
			data = agreementData(publisher, indexID, subscriber, before, stateOf(sub))
		}

		if err := c.indexes.SaveIndex(op.db, idx); err != nil {
			return nil, err
		}
		if err := c.storeSubscription(op, before.Exists, sub); err != nil {
			return nil, err
		}
		if err := c.pay(op, IndexAccount(publisher, indexID), subscriber, payout); err != nil {
			return nil, err
		}

		if cb != nil {
			next, err := cb.AfterAgreement(ctx, op.db, data)
			if err != nil {
				return nil, errors.Wrap(err, "after agreement callback")
			}
			if next != nil {
				ctx = next
			}
		}
		op.events = append(op.events, subscriptionEvent(event, idx, sub, payout))
		return ctx, nil
	})
}

// planChange loads the index and the subscription and applies the plan to
// them. A subscription that was never stored starts with zero units.
func (c *Controller) planChange(
	op *operation,
	publisher ida.Address,
	indexID uint32,
	subscriber ida.Address,
	plan planFunc,
) (*Index, *Subscription, SubscriptionState, coin.Amount, error) {
	idx, err := c.loadIndex(op.db, publisher, indexID)
	if err != nil {
		return nil, nil, SubscriptionState{}, coin.Amount{}, err
	}
	sub, err := c.loadSubscription(op.db, idx, subscriber)
	if err != nil {
		return nil, nil, SubscriptionState{}, coin.Amount{}, err
	}
	before := stateOf(sub)
	payout, err := plan(idx, sub)
	if err != nil {
		return nil, nil, SubscriptionState{}, coin.Amount{}, err
	}
	return idx, sub, before, payout, nil
}

// storeSubscription writes the subscription and keeps both listings in
// sync. A subscription that is no longer live is removed.
func (c *Controller) storeSubscription(op *operation, stored bool, sub *Subscription) error {
	id := sub.ID()
	pubKey := publisherListKey(sub.Publisher, sub.IndexID)
	subKey := subscriberListKey(sub.Subscriber)

	if !sub.IsLive() {
		if !stored {
			return nil
		}
		if err := c.subs.Delete(op.db, id); err != nil {
			return errors.Wrap(err, "cannot delete subscription")
		}
		if err := c.refs.Remove(op.db, pubKey, id); err != nil {
			return err
		}
		return c.refs.Remove(op.db, subKey, id)
	}

	if err := c.subs.SaveSubscription(op.db, sub); err != nil {
		return err
	}
	if stored {
		return nil
	}
	if max := op.conf.MaxSubscriptions; max > 0 {
		refs, err := c.refs.Refs(op.db, subKey)
		if err != nil {
			return err
		}
		if uint32(len(refs)) >= max {
			return errors.Wrapf(ErrSubscriptionLimit, "subscriber %s holds %d subscriptions", sub.Subscriber, len(refs))
		}
	}
	if err := c.refs.Append(op.db, pubKey, id); err != nil {
		return err
	}
	return c.refs.Append(op.db, subKey, id)
}

func (c *Controller) loadIndex(db ida.ReadOnlyKVStore, publisher ida.Address, indexID uint32) (*Index, error) {
	idx, err := c.indexes.GetIndex(db, publisher, indexID)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, errors.Wrapf(ErrIndexNotFound, "index %d of %s", indexID, publisher)
	}
	return idx, nil
}

func (c *Controller) loadSubscription(db ida.ReadOnlyKVStore, idx *Index, subscriber ida.Address) (*Subscription, error) {
	sub, err := c.subs.GetSubscription(db, SubscriptionID(idx.Publisher, idx.ID, subscriber))
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &Subscription{
			Schema:     1,
			Publisher:  idx.Publisher,
			IndexID:    idx.ID,
			Subscriber: subscriber,
			IndexValue: idx.Value,
		}
	}
	return sub, nil
}

func agreementData(publisher ida.Address, indexID uint32, subscriber ida.Address, before, after SubscriptionState) AgreementData {
	action := ActionUpdated
	switch {
	case !before.Exists && after.Exists:
		action = ActionCreated
	case before.Exists && !after.Exists:
		action = ActionTerminated
	}
	return AgreementData{
		Kind:       AgreementKind,
		Action:     action,
		Publisher:  publisher,
		IndexID:    indexID,
		Subscriber: subscriber,
		Before:     before,
		After:      after,
	}
}

// validSubscriber rejects the zero identity and malformed addresses.
func validSubscriber(subscriber ida.Address) error {
	zero := true
	for _, b := range subscriber {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return errors.Wrap(ErrInvalidSubscriber, "zero identity")
	}
	if err := subscriber.Validate(); err != nil {
		return errors.Wrap(ErrInvalidSubscriber, err.Error())
	}
	return nil
}
