package cash

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/orm"
)

// Balancer is the read only part of the ledger.
type Balancer interface {
	// Balance returns all coins held by the wallet, reserved ones
	// included.
	Balance(db ida.ReadOnlyKVStore, addr ida.Address) (coin.Coins, error)
	// AvailableBalance returns the value of given currency that is not
	// committed to any outbound payment.
	AvailableBalance(db ida.ReadOnlyKVStore, addr ida.Address, ticker string) (coin.Coin, error)
}

// CoinMover moves coins between wallets.
type CoinMover interface {
	MoveCoins(db ida.KVStore, src, dest ida.Address, amount coin.Coin) error
}

// CoinMinter creates new coins.
type CoinMinter interface {
	CoinMint(db ida.KVStore, dest ida.Address, amount coin.Coin) error
}

// Reserver commits wallet value to outbound payments.
type Reserver interface {
	// Reserve locks given amount of the owner's available balance and
	// returns the reservation ID.
	Reserve(db ida.KVStore, owner ida.Address, amount coin.Coin) ([]byte, error)
	// Release unlocks a reservation.
	Release(db ida.KVStore, reservationID []byte) error
}

// Controller is the functionality needed by cash.Handler and
// the distribution ledger.
type Controller interface {
	Balancer
	CoinMover
	CoinMinter
	Reserver
}

// BaseController is a simple implementation of Controller.
type BaseController struct {
	bucket       Bucket
	reservations ReservationBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController(bucket Bucket) BaseController {
	return BaseController{
		bucket:       bucket,
		reservations: NewReservationBucket(),
	}
}

func (c BaseController) Balance(db ida.ReadOnlyKVStore, addr ida.Address) (coin.Coins, error) {
	obj, err := c.bucket.Get(db, addr)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get wallet")
	}
	if obj == nil {
		return nil, nil
	}
	return AsSet(obj).Coins, nil
}

func (c BaseController) AvailableBalance(db ida.ReadOnlyKVStore, addr ida.Address, ticker string) (coin.Coin, error) {
	obj, err := c.bucket.GetOrCreate(db, addr)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "cannot get wallet")
	}
	return AsSet(obj).Available(ticker)
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// available coins, it fails.
func (c BaseController) MoveCoins(db ida.KVStore, src, dest ida.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return errors.Wrap(err, "cannot get sender wallet")
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	}
	available, err := AsSet(sender).Available(amount.Ticker)
	if err != nil {
		return err
	}
	if !available.IsGTE(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "available %s, required %s", available, amount)
	}

	// Moving to self must not create value.
	if src.Equals(dest) {
		return nil
	}

	if err := c.add(db, sender, amount.Negative()); err != nil {
		return err
	}
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return errors.Wrap(err, "cannot get recipient wallet")
	}
	return c.add(db, recipient, amount)
}

// CoinMint attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) CoinMint(db ida.KVStore, dest ida.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return errors.Wrap(err, "cannot get recipient wallet")
	}
	return c.add(db, recipient, amount)
}

func (c BaseController) add(db ida.KVStore, wallet orm.Object, amount coin.Coin) error {
	set := AsSet(wallet)
	coins, err := set.Coins.Clone().Add(amount)
	if err != nil {
		return err
	}
	set.Coins = coins
	return c.bucket.Save(db, wallet)
}

func (c BaseController) Reserve(db ida.KVStore, owner ida.Address, amount coin.Coin) ([]byte, error) {
	r := &Reservation{Schema: 1, Owner: owner, Amount: amount}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	wallet, err := c.bucket.Get(db, owner)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get wallet")
	}
	if wallet == nil {
		return nil, errors.Wrapf(errors.ErrEmpty, "empty account %s", owner)
	}
	set := AsSet(wallet)
	available, err := set.Available(amount.Ticker)
	if err != nil {
		return nil, err
	}
	if !available.IsGTE(amount) {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "available %s, required %s", available, amount)
	}
	if set.Reserved, err = set.Reserved.Clone().Add(amount); err != nil {
		return nil, err
	}
	if err := c.bucket.Save(db, wallet); err != nil {
		return nil, err
	}
	return c.reservations.Create(db, r)
}

func (c BaseController) Release(db ida.KVStore, reservationID []byte) error {
	obj, err := c.reservations.Get(db, reservationID)
	if err != nil {
		return errors.Wrap(err, "cannot get reservation")
	}
	if obj == nil {
		return errors.Wrapf(errors.ErrNotFound, "reservation %X", reservationID)
	}
	r := obj.Value().(*Reservation)

	wallet, err := c.bucket.Get(db, r.Owner)
	if err != nil {
		return errors.Wrap(err, "cannot get wallet")
	}
	if wallet == nil {
		return errors.Wrapf(errors.ErrState, "reservation of a missing account %s", r.Owner)
	}
	set := AsSet(wallet)
	if set.Reserved, err = set.Reserved.Clone().Subtract(r.Amount); err != nil {
		return err
	}
	if err := c.bucket.Save(db, wallet); err != nil {
		return err
	}
	return c.reservations.Delete(db, reservationID)
}
