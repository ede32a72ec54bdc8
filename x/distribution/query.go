package distribution

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
)

// IndexInfo is the state of an index as seen by a query.
type IndexInfo struct {
	Exists             bool        `json:"exists"`
	Publisher          ida.Address `json:"publisher"`
	IndexID            uint32      `json:"index_id"`
	IndexValue         coin.Amount `json:"index_value"`
	TotalUnitsApproved coin.Amount `json:"total_units_approved"`
	TotalUnitsPending  coin.Amount `json:"total_units_pending"`
	// TotalUnitsPendingDistribution is the value owed to all pending
	// subscriptions.
	TotalUnitsPendingDistribution coin.Amount `json:"total_units_pending_distribution"`
}

// SubscriptionInfo is the state of a subscription as seen by a query.
type SubscriptionInfo struct {
	ID         []byte      `json:"id"`
	Publisher  ida.Address `json:"publisher"`
	IndexID    uint32      `json:"index_id"`
	Subscriber ida.Address `json:"subscriber"`
	Exists     bool        `json:"exists"`
	Approved   bool        `json:"approved"`
	Units      coin.Amount `json:"units"`
	// IndexValue is the index value the subscription was last settled
	// at.
	IndexValue coin.Amount `json:"index_value"`
	// PendingDistribution is the value a pending subscription can
	// claim, including value accrued since its last settlement.
	PendingDistribution coin.Amount `json:"pending_distribution"`
	// Owed is the value accrued by an approved subscription since its
	// last settlement. It is part of the realtime balance.
	Owed coin.Amount `json:"owed"`
}

func subscriptionInfo(idx *Index, sub *Subscription) (SubscriptionInfo, error) {
	info := SubscriptionInfo{
		ID:                  sub.ID(),
		Publisher:           sub.Publisher,
		IndexID:             sub.IndexID,
		Subscriber:          sub.Subscriber,
		Exists:              sub.IsLive(),
		Approved:            sub.Approved,
		Units:               sub.Units,
		IndexValue:          sub.IndexValue,
		PendingDistribution: sub.PendingDistribution,
	}
	delta, err := Accrued(idx.Value, sub.IndexValue, sub.Units)
	if err != nil {
		return SubscriptionInfo{}, err
	}
	if sub.Approved {
		info.Owed = delta
	} else if info.PendingDistribution, err = info.PendingDistribution.Add(delta); err != nil {
		return SubscriptionInfo{}, err
	}
	return info, nil
}

// GetIndex returns the state of an index. A missing index is not an error,
// the result is flagged as not existing.
func (c *Controller) GetIndex(db ida.ReadOnlyKVStore, publisher ida.Address, indexID uint32) (IndexInfo, error) {
	idx, err := c.indexes.GetIndex(db, publisher, indexID)
	if err != nil {
		return IndexInfo{}, err
	}
	if idx == nil {
		return IndexInfo{Publisher: publisher, IndexID: indexID}, nil
	}
	subs, err := c.listSubscriptions(db, publisherListKey(publisher, indexID))
	if err != nil {
		return IndexInfo{}, err
	}
	pending, err := PendingTotal(idx.Value, subs)
	if err != nil {
		return IndexInfo{}, err
	}
	return IndexInfo{
		Exists:                        true,
		Publisher:                     publisher,
		IndexID:                       indexID,
		IndexValue:                    idx.Value,
		TotalUnitsApproved:            idx.TotalUnitsApproved,
		TotalUnitsPending:             idx.TotalUnitsPending,
		TotalUnitsPendingDistribution: pending,
	}, nil
}

// GetSubscription returns the state of a subscription. A subscription that
// does not exist is returned with zero values.
func (c *Controller) GetSubscription(db ida.ReadOnlyKVStore, publisher ida.Address, indexID uint32, subscriber ida.Address) (SubscriptionInfo, error) {
	if err := validSubscriber(subscriber); err != nil {
		return SubscriptionInfo{}, err
	}
	idx, err := c.loadIndex(db, publisher, indexID)
	if err != nil {
		return SubscriptionInfo{}, err
	}
	sub, err := c.loadSubscription(db, idx, subscriber)
	if err != nil {
		return SubscriptionInfo{}, err
	}
	return subscriptionInfo(idx, sub)
}

// GetSubscriptionByID returns the state of a stored subscription.
func (c *Controller) GetSubscriptionByID(db ida.ReadOnlyKVStore, id []byte) (SubscriptionInfo, error) {
	sub, err := c.subs.GetSubscription(db, id)
	if err != nil {
		return SubscriptionInfo{}, err
	}
	if sub == nil {
		return SubscriptionInfo{}, errors.Wrapf(ErrSubscriptionNotFound, "id %X", id)
	}
	idx, err := c.loadIndex(db, sub.Publisher, sub.IndexID)
	if err != nil {
		return SubscriptionInfo{}, err
	}
	return subscriptionInfo(idx, sub)
}

// ListByPublisher returns all live subscriptions of an index in the order
// they were created.
func (c *Controller) ListByPublisher(db ida.ReadOnlyKVStore, publisher ida.Address, indexID uint32) ([]SubscriptionInfo, error) {
	idx, err := c.loadIndex(db, publisher, indexID)
	if err != nil {
		return nil, err
	}
	subs, err := c.listSubscriptions(db, publisherListKey(publisher, indexID))
	if err != nil {
		return nil, err
	}
	res := make([]SubscriptionInfo, 0, len(subs))
	for _, s := range subs {
		info, err := subscriptionInfo(idx, s)
		if err != nil {
			return nil, err
		}
		res = append(res, info)
	}
	return res, nil
}

// ListBySubscriber returns all live subscriptions of a subscriber, across
// all publishers, in the order they were created.
func (c *Controller) ListBySubscriber(db ida.ReadOnlyKVStore, subscriber ida.Address) ([]SubscriptionInfo, error) {
	if err := validSubscriber(subscriber); err != nil {
		return nil, err
	}
	subs, err := c.listSubscriptions(db, subscriberListKey(subscriber))
	if err != nil {
		return nil, err
	}
	res := make([]SubscriptionInfo, 0, len(subs))
	for _, s := range subs {
		idx, err := c.loadIndex(db, s.Publisher, s.IndexID)
		if err != nil {
			return nil, err
		}
		info, err := subscriptionInfo(idx, s)
		if err != nil {
			return nil, err
		}
		res = append(res, info)
	}
	return res, nil
}

func (c *Controller) listSubscriptions(db ida.ReadOnlyKVStore, key []byte) ([]*Subscription, error) {
	refs, err := c.refs.Refs(db, key)
	if err != nil {
		return nil, err
	}
	subs := make([]*Subscription, 0, len(refs))
	for _, id := range refs {
		sub, err := c.subs.GetSubscription(db, id)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			return nil, errors.Wrapf(errors.ErrState, "listed subscription %X does not exist", id)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// CalculateDistribution returns the amount that distributing given amount
// would actually pay and the resulting index value.
func (c *Controller) CalculateDistribution(db ida.ReadOnlyKVStore, publisher ida.Address, indexID uint32, amount coin.Amount) (actual, newIndexValue coin.Amount, err error) {
	idx, err := c.loadIndex(db, publisher, indexID)
	if err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	total, err := idx.TotalUnits()
	if err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	delta, actual, err := DistributionOf(amount, total)
	if err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	newIndexValue, err = idx.Value.Add(delta)
	if err != nil {
		return coin.Amount{}, coin.Amount{}, err
	}
	return actual, newIndexValue, nil
}

// RealtimeBalance returns the wallet balance of the account in the
// distributed currency, increased by the value owed to all its approved
// subscriptions.
func (c *Controller) RealtimeBalance(db ida.ReadOnlyKVStore, account ida.Address) (coin.Amount, error) {
	conf, err := loadConf(db)
	if err != nil {
		return coin.Amount{}, err
	}
	coins, err := c.cash.Balance(db, account)
	if err != nil {
		return coin.Amount{}, errors.Wrap(err, "balance")
	}
	balance, err := coin.AmountOf(coins.Get(conf.Ticker))
	if err != nil {
		return coin.Amount{}, err
	}
	if validSubscriber(account) != nil {
		return balance, nil
	}
	subs, err := c.ListBySubscriber(db, account)
	if err != nil {
		return coin.Amount{}, err
	}
	for _, s := range subs {
		if balance, err = balance.Add(s.Owed); err != nil {
			return coin.Amount{}, err
		}
	}
	return balance, nil
}
