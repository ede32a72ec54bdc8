package distribution

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/orm"
	amino "github.com/tendermint/go-amino"
	"golang.org/x/crypto/blake2b"
)

var cdc = amino.NewCodec()

// Index is a monotonic value accumulator owned by a publisher.
type Index struct {
	Schema    uint32
	Publisher ida.Address
	ID        uint32
	// Value is the total value distributed per unit since the index was
	// created. It never decreases.
	Value              coin.Amount
	TotalUnitsApproved coin.Amount
	TotalUnitsPending  coin.Amount
}

var _ orm.Model = (*Index)(nil)

// indexWire is the serialized form of an Index.
type indexWire struct {
	Schema    uint32
	Publisher []byte
	ID        uint32
	Value     []byte
	Approved  []byte
	Pending   []byte
}

func (i *Index) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(indexWire{
		Schema:    i.Schema,
		Publisher: i.Publisher,
		ID:        i.ID,
		Value:     i.Value.Bytes(),
		Approved:  i.TotalUnitsApproved.Bytes(),
		Pending:   i.TotalUnitsPending.Bytes(),
	})
}

func (i *Index) Unmarshal(raw []byte) error {
	var w indexWire
	if err := cdc.UnmarshalBinaryBare(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	res := Index{Schema: w.Schema, Publisher: w.Publisher, ID: w.ID}
	var err error
	if res.Value, err = coin.AmountFromBytes(w.Value); err != nil {
		return errors.Wrap(errors.ErrModel, "value")
	}
	if res.TotalUnitsApproved, err = coin.AmountFromBytes(w.Approved); err != nil {
		return errors.Wrap(errors.ErrModel, "approved units")
	}
	if res.TotalUnitsPending, err = coin.AmountFromBytes(w.Pending); err != nil {
		return errors.Wrap(errors.ErrModel, "pending units")
	}
	*i = res
	return nil
}

func (i *Index) Validate() error {
	var err error
	if i.Schema == 0 {
		err = errors.Append(err, errors.Field("Schema", errors.ErrModel, "missing schema"))
	}
	err = errors.Append(err, errors.Field("Publisher", i.Publisher.Validate(), "publisher"))
	return err
}

// TotalUnits returns the units held by all subscriptions of the index.
func (i *Index) TotalUnits() (coin.Amount, error) {
	return i.TotalUnitsApproved.Add(i.TotalUnitsPending)
}

// Subscription is the relationship of a subscriber with an index.
type Subscription struct {
	Schema     uint32
	Publisher  ida.Address
	IndexID    uint32
	Subscriber ida.Address
	Approved   bool
	Units      coin.Amount
	// IndexValue is the index value the subscription was last settled
	// at.
	IndexValue coin.Amount
	// PendingDistribution is the value accrued while not approved.
	PendingDistribution coin.Amount
}

var _ orm.Model = (*Subscription)(nil)

type subscriptionWire struct {
	Schema     uint32
	Publisher  []byte
	IndexID    uint32
	Subscriber []byte
	Approved   bool
	Units      []byte
	IndexValue []byte
	Pending    []byte
}

func (s *Subscription) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(subscriptionWire{
		Schema:     s.Schema,
		Publisher:  s.Publisher,
		IndexID:    s.IndexID,
		Subscriber: s.Subscriber,
		Approved:   s.Approved,
		Units:      s.Units.Bytes(),
		IndexValue: s.IndexValue.Bytes(),
		Pending:    s.PendingDistribution.Bytes(),
	})
}

func (s *Subscription) Unmarshal(raw []byte) error {
	var w subscriptionWire
	if err := cdc.UnmarshalBinaryBare(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	res := Subscription{
		Schema:     w.Schema,
		Publisher:  w.Publisher,
		IndexID:    w.IndexID,
		Subscriber: w.Subscriber,
		Approved:   w.Approved,
	}
	var err error
	if res.Units, err = coin.AmountFromBytes(w.Units); err != nil {
		return errors.Wrap(errors.ErrModel, "units")
	}
	if res.IndexValue, err = coin.AmountFromBytes(w.IndexValue); err != nil {
		return errors.Wrap(errors.ErrModel, "index value")
	}
	if res.PendingDistribution, err = coin.AmountFromBytes(w.Pending); err != nil {
		return errors.Wrap(errors.ErrModel, "pending distribution")
	}
	*s = res
	return nil
}

func (s *Subscription) Validate() error {
	var err error
	if s.Schema == 0 {
		err = errors.Append(err, errors.Field("Schema", errors.ErrModel, "missing schema"))
	}
	err = errors.Append(err, errors.Field("Publisher", s.Publisher.Validate(), "publisher"))
	err = errors.Append(err, errors.Field("Subscriber", s.Subscriber.Validate(), "subscriber"))
	if !s.IsLive() {
		err = errors.Append(err, errors.Field("Units", errors.ErrModel, "subscription is not live"))
	}
	return err
}

// IsLive returns true if the subscription holds units, is approved or has
// value waiting to be claimed. Other subscriptions are not stored.
func (s *Subscription) IsLive() bool {
	return s.Approved || !s.Units.IsZero() || !s.PendingDistribution.IsZero()
}

// ID returns the key the subscription is stored under.
func (s *Subscription) ID() []byte {
	return SubscriptionID(s.Publisher, s.IndexID, s.Subscriber)
}

// RefList is an ordered list of subscription IDs.
type RefList struct {
	Schema uint32
	Refs   [][]byte
}

var _ orm.Model = (*RefList)(nil)

func (r *RefList) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*r)
}

func (r *RefList) Unmarshal(raw []byte) error {
	var res RefList
	if err := cdc.UnmarshalBinaryBare(raw, &res); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*r = res
	return nil
}

func (r *RefList) Validate() error {
	if r.Schema == 0 {
		return errors.Field("Schema", errors.ErrModel, "missing schema")
	}
	for i, ref := range r.Refs {
		if len(ref) != blake2b.Size256 {
			return errors.Field("Refs", errors.ErrModel, "invalid reference %d", i)
		}
	}
	return nil
}

// IndexKey returns the key an index is stored under.
func IndexKey(publisher ida.Address, indexID uint32) []byte {
	key := make([]byte, len(publisher)+4)
	copy(key, publisher)
	binary.BigEndian.PutUint32(key[len(publisher):], indexID)
	return key
}

// SubscriptionID returns the unique identifier of a subscription.
func SubscriptionID(publisher ida.Address, indexID uint32, subscriber ida.Address) []byte {
	data := make([]byte, 0, len(publisher)+4+len(subscriber))
	data = append(data, IndexKey(publisher, indexID)...)
	data = append(data, subscriber...)
	id := blake2b.Sum256(data)
	return id[:]
}

// IndexAccount returns the address holding the value distributed to the
// index and not yet paid to subscribers.
func IndexAccount(publisher ida.Address, indexID uint32) ida.Address {
	return ida.NewCondition("ida", "index", IndexKey(publisher, indexID)).Address()
}

// IndexBucket stores indexes under the publisher and index ID.
type IndexBucket struct {
	orm.Bucket
}

func NewIndexBucket() IndexBucket {
	return IndexBucket{
		Bucket: orm.NewBucket("idaindex", orm.NewSimpleObj(nil, &Index{})),
	}
}

// GetIndex returns nil if the index does not exist.
func (b IndexBucket) GetIndex(db ida.ReadOnlyKVStore, publisher ida.Address, indexID uint32) (*Index, error) {
	obj, err := b.Get(db, IndexKey(publisher, indexID))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load index")
	}
	if obj == nil {
		return nil, nil
	}
	idx, ok := obj.Value().(*Index)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return idx, nil
}

func (b IndexBucket) SaveIndex(db ida.KVStore, idx *Index) error {
	return b.Save(db, orm.NewSimpleObj(IndexKey(idx.Publisher, idx.ID), idx))
}

// SubscriptionBucket stores subscriptions under their ID.
type SubscriptionBucket struct {
	orm.Bucket
}

func NewSubscriptionBucket() SubscriptionBucket {
	return SubscriptionBucket{
		Bucket: orm.NewBucket("idasubs", orm.NewSimpleObj(nil, &Subscription{})),
	}
}

// GetSubscription returns nil if no subscription with given ID exists.
func (b SubscriptionBucket) GetSubscription(db ida.ReadOnlyKVStore, id []byte) (*Subscription, error) {
	obj, err := b.Get(db, id)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load subscription")
	}
	if obj == nil {
		return nil, nil
	}
	sub, ok := obj.Value().(*Subscription)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return sub, nil
}

func (b SubscriptionBucket) SaveSubscription(db ida.KVStore, sub *Subscription) error {
	return b.Save(db, orm.NewSimpleObj(sub.ID(), sub))
}

// RefListBucket keeps the ordered subscription listings of each index and
// each subscriber.
type RefListBucket struct {
	orm.Bucket
}

func NewRefListBucket() RefListBucket {
	return RefListBucket{
		Bucket: orm.NewBucket("idarefs", orm.NewSimpleObj(nil, &RefList{})),
	}
}

func publisherListKey(publisher ida.Address, indexID uint32) []byte {
	return append([]byte("p:"), IndexKey(publisher, indexID)...)
}

func subscriberListKey(subscriber ida.Address) []byte {
	return append([]byte("s:"), subscriber...)
}

// Refs returns the references stored under given key in insertion order.
func (b RefListBucket) Refs(db ida.ReadOnlyKVStore, key []byte) ([][]byte, error) {
	obj, err := b.Get(db, key)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load references")
	}
	if obj == nil {
		return nil, nil
	}
	return obj.Value().(*RefList).Refs, nil
}

// Append adds the reference at the end of the list unless it is already
// present.
func (b RefListBucket) Append(db ida.KVStore, key, ref []byte) error {
	refs, err := b.Refs(db, key)
	if err != nil {
		return err
	}
	for _, r := range refs {
		if bytes.Equal(r, ref) {
			return nil
		}
	}
	refs = append(refs, ref)
	return b.Save(db, orm.NewSimpleObj(key, &RefList{Schema: 1, Refs: refs}))
}

// Remove deletes the reference from the list. Later entries shift down so
// the order of the remaining ones is preserved.
func (b RefListBucket) Remove(db ida.KVStore, key, ref []byte) error {
	refs, err := b.Refs(db, key)
	if err != nil {
		return err
	}
	kept := refs[:0]
	for _, r := range refs {
		if !bytes.Equal(r, ref) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return b.Delete(db, key)
	}
	return b.Save(db, orm.NewSimpleObj(key, &RefList{Schema: 1, Refs: kept}))
}
