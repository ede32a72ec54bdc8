package cash

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/orm"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// BucketName is where we store the balances
const BucketName = "cash"

// Set is the state of a single wallet.
type Set struct {
	Schema uint32
	// Coins are all the coins held by the wallet, including reserved
	// ones.
	Coins coin.Coins
	// Reserved is the part of Coins that cannot be spent.
	Reserved coin.Coins
}

var _ orm.Model = (*Set)(nil)

func (s *Set) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*s)
}

func (s *Set) Unmarshal(raw []byte) error {
	var res Set
	if err := cdc.UnmarshalBinaryBare(raw, &res); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*s = res
	return nil
}

// Validate requires that all coins are in alphabetical order, non negative
// and that no more than held is reserved.
func (s *Set) Validate() error {
	if s.Schema == 0 {
		return errors.Field("Schema", errors.ErrModel, "missing schema")
	}
	if err := s.Coins.Validate(); err != nil {
		return errors.Field("Coins", err, "invalid coins")
	}
	if !s.Coins.IsNonNegative() {
		return errors.Field("Coins", errors.ErrAmount, "negative balance")
	}
	if err := s.Reserved.Validate(); err != nil {
		return errors.Field("Reserved", err, "invalid reserved coins")
	}
	for _, r := range s.Reserved {
		if !s.Coins.Contains(*r) {
			return errors.Field("Reserved", errors.ErrAmount, "reserved more than held")
		}
	}
	return nil
}

// NewWallet returns an empty wallet object stored under given address.
func NewWallet(key ida.Address) orm.Object {
	return orm.NewSimpleObj(key, &Set{Schema: 1})
}

// WalletWith creates a wallet holding given coins.
func WalletWith(key ida.Address, coins ...*coin.Coin) (orm.Object, error) {
	normalized, err := coin.NormalizeCoins(coins)
	if err != nil {
		return nil, err
	}
	obj := orm.NewSimpleObj(key, &Set{Schema: 1, Coins: normalized})
	return obj, obj.Validate()
}

// AsSet extracts the wallet state from an object loaded with the Bucket.
func AsSet(obj orm.Object) *Set {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Set)
}

// Available returns the spendable value of given currency.
func (s *Set) Available(ticker string) (coin.Coin, error) {
	return s.Coins.Get(ticker).Subtract(s.Reserved.Get(ticker))
}

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Set{})),
	}
}

// GetOrCreate returns the wallet of given address. An empty wallet is
// returned if none was saved yet.
func (b Bucket) GetOrCreate(db ida.ReadOnlyKVStore, key ida.Address) (orm.Object, error) {
	obj, err := b.Get(db, key)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		obj = NewWallet(key)
	}
	return obj, nil
}

// Reservation is a commitment of a wallet's coins to an outbound payment.
type Reservation struct {
	Schema uint32
	Owner  ida.Address
	Amount coin.Coin
}

var _ orm.Model = (*Reservation)(nil)

func (r *Reservation) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(*r)
}

func (r *Reservation) Unmarshal(raw []byte) error {
	var res Reservation
	if err := cdc.UnmarshalBinaryBare(raw, &res); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*r = res
	return nil
}

func (r *Reservation) Validate() error {
	if r.Schema == 0 {
		return errors.Field("Schema", errors.ErrModel, "missing schema")
	}
	if err := r.Owner.Validate(); err != nil {
		return errors.Field("Owner", err, "invalid owner")
	}
	if err := r.Amount.Validate(); err != nil {
		return errors.Field("Amount", err, "invalid amount")
	}
	if !r.Amount.IsPositive() {
		return errors.Field("Amount", errors.ErrAmount, "must be positive")
	}
	return nil
}

// ReservationBucket stores reservations under a sequence generated key.
type ReservationBucket struct {
	orm.Bucket
	seq orm.Sequence
}

func NewReservationBucket() ReservationBucket {
	b := orm.NewBucket("reserve", orm.NewSimpleObj(nil, &Reservation{}))
	return ReservationBucket{
		Bucket: b,
		seq:    b.Sequence("id"),
	}
}

// Create saves a new reservation and returns its ID.
func (b ReservationBucket) Create(db ida.KVStore, r *Reservation) ([]byte, error) {
	id, err := b.seq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "cannot acquire ID")
	}
	if err := b.Save(db, orm.NewSimpleObj(id, r)); err != nil {
		return nil, err
	}
	return id, nil
}
