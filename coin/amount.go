package coin

import (
	"encoding/json"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/iov-one/ida/errors"
	"github.com/shopspring/decimal"
)

// Amount is an unsigned 256 bit quantity expressed in atomic units. One atomic
// unit is 1/FracUnit of a whole coin. All arithmetic is overflow checked.
//
// Amount is used for distribution units, index values and settled balances.
// Zero value is a valid zero amount.
type Amount struct {
	v uint256.Int
}

// NewAmount returns an amount of n atomic units.
func NewAmount(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// ParseAmount parses a base 10 integer of atomic units.
func ParseAmount(s string) (Amount, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, errors.Wrapf(errors.ErrInput, "amount %q: %s", s, err)
	}
	return Amount{v: *v}, nil
}

// ParseHumanAmount parses a decimal representation of whole coins, for example
// "0.001", into an amount of atomic units. Values more precise than a single
// atomic unit are rejected.
func ParseHumanAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, errors.Wrapf(errors.ErrInput, "amount %q: %s", s, err)
	}
	if d.IsNegative() {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "negative amount %q", s)
	}
	d = d.Shift(9)
	if !d.IsInteger() {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "amount %q too precise", s)
	}
	return AmountFromBig(d.BigInt())
}

// AmountFromBig converts a non negative big integer into an amount.
func AmountFromBig(b *big.Int) (Amount, error) {
	if b.Sign() < 0 {
		return Amount{}, errors.Wrap(errors.ErrAmount, "negative amount")
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return Amount{}, errors.Wrap(errors.ErrOverflow, "amount exceeds 256 bits")
	}
	return Amount{v: *v}, nil
}

// AmountFromBytes loads an amount serialized with Bytes.
func AmountFromBytes(raw []byte) (Amount, error) {
	if len(raw) > 32 {
		return Amount{}, errors.Wrapf(errors.ErrInput, "amount of %d bytes", len(raw))
	}
	var a Amount
	a.v.SetBytes(raw)
	return a, nil
}

// Bytes returns the minimal big endian representation. Zero is an empty
// slice.
func (a Amount) Bytes() []byte {
	return a.v.Bytes()
}

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	var res Amount
	if _, overflow := res.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", a, b)
	}
	return res, nil
}

// Sub returns a - b. It fails if b is greater than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	var res Amount
	if _, underflow := res.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "%s - %s is negative", a, b)
	}
	return res, nil
}

// Mul returns a * b.
func (a Amount) Mul(b Amount) (Amount, error) {
	var res Amount
	if _, overflow := res.v.MulOverflow(&a.v, &b.v); overflow {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s * %s", a, b)
	}
	return res, nil
}

// Div returns a / b rounded toward zero.
func (a Amount) Div(b Amount) (Amount, error) {
	if b.IsZero() {
		return Amount{}, errors.Wrap(errors.ErrInput, "division by zero")
	}
	var res Amount
	res.v.Div(&a.v, &b.v)
	return res, nil
}

// Cmp returns -1, 0 or 1 when a is lower, equal or greater than b.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// Equals returns true if both amounts are the same.
func (a Amount) Equals(b Amount) bool {
	return a.v.Eq(&b.v)
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// String returns a base 10 representation of atomic units.
func (a Amount) String() string {
	return a.v.Dec()
}

// Human returns the amount as a decimal number of whole coins.
func (a Amount) Human() string {
	return decimal.NewFromBigInt(a.v.ToBig(), -9).String()
}

// Float64 returns the nearest float64 value of the amount of atomic units.
func (a Amount) Float64() float64 {
	f, _ := new(big.Float).SetInt(a.v.ToBig()).Float64()
	return f
}

// MarshalJSON encodes the amount as a string of atomic units, as the value
// does not fit into a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a string or a number of atomic units.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrInput, "amount must be a string or a number")
		}
		s = n.String()
	}
	val, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = val
	return nil
}

var (
	fracUnit      = uint256.NewInt(uint64(FracUnit))
	maxCoinAmount = func() Amount {
		var a Amount
		a.v.Mul(uint256.NewInt(uint64(MaxInt)), fracUnit)
		a.v.Add(&a.v, uint256.NewInt(uint64(MaxFrac)))
		return a
	}()
)

// ToCoin converts the amount of atomic units into a coin of given currency.
func (a Amount) ToCoin(ticker string) (Coin, error) {
	if a.Cmp(maxCoinAmount) > 0 {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "amount %s does not fit a coin", a)
	}
	var whole, frac uint256.Int
	whole.DivMod(&a.v, fracUnit, &frac)
	return NewCoin(int64(whole.Uint64()), int64(frac.Uint64()), ticker), nil
}

// AmountOf converts a non negative coin into an amount of atomic units.
func AmountOf(c Coin) (Amount, error) {
	if !c.IsNonNegative() {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "negative coin %s", c)
	}
	if c.Whole > MaxInt || c.Fractional > MaxFrac {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "coin %s", c)
	}
	var a Amount
	a.v.Mul(uint256.NewInt(uint64(c.Whole)), fracUnit)
	a.v.Add(&a.v, uint256.NewInt(uint64(c.Fractional)))
	return a, nil
}

// MinAmount returns the smaller of two amounts.
func MinAmount(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
