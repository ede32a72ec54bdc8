package coin

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/idatest/assert"
)

func mustHuman(t testing.TB, s string) Amount {
	t.Helper()
	a, err := ParseHumanAmount(s)
	if err != nil {
		t.Fatalf("cannot parse %q: %s", s, err)
	}
	return a
}

func TestParseHumanAmount(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    Amount
		wantErr *errors.Error
	}{
		"zero":           {raw: "0", want: NewAmount(0)},
		"milli":          {raw: "0.001", want: NewAmount(1000000)},
		"whole":          {raw: "100", want: NewAmount(100 * uint64(FracUnit))},
		"smallest unit":  {raw: "0.000000001", want: NewAmount(1)},
		"too precise":    {raw: "0.0000000001", wantErr: errors.ErrAmount},
		"negative":       {raw: "-1", wantErr: errors.ErrAmount},
		"not a number":   {raw: "one", wantErr: errors.ErrInput},
		"beyond 256 bit": {raw: "1e80", wantErr: errors.ErrOverflow},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseHumanAmount(tc.raw)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	max, err := AmountFromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
	assert.Nil(t, err)

	cases := map[string]struct {
		op      func() (Amount, error)
		want    Amount
		wantErr *errors.Error
	}{
		"add":             {op: func() (Amount, error) { return NewAmount(2).Add(NewAmount(3)) }, want: NewAmount(5)},
		"add overflow":    {op: func() (Amount, error) { return max.Add(NewAmount(1)) }, wantErr: errors.ErrOverflow},
		"sub":             {op: func() (Amount, error) { return NewAmount(5).Sub(NewAmount(3)) }, want: NewAmount(2)},
		"sub below zero":  {op: func() (Amount, error) { return NewAmount(3).Sub(NewAmount(5)) }, wantErr: errors.ErrAmount},
		"mul":             {op: func() (Amount, error) { return NewAmount(200).Mul(NewAmount(1000000)) }, want: NewAmount(200000000)},
		"mul overflow":    {op: func() (Amount, error) { return max.Mul(NewAmount(2)) }, wantErr: errors.ErrOverflow},
		"div floors":      {op: func() (Amount, error) { return NewAmount(10).Div(NewAmount(3)) }, want: NewAmount(3)},
		"div by zero":     {op: func() (Amount, error) { return NewAmount(10).Div(NewAmount(0)) }, wantErr: errors.ErrInput},
		"zero div amount": {op: func() (Amount, error) { return NewAmount(0).Div(NewAmount(7)) }, want: NewAmount(0)},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.op()
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil && !tc.want.Equals(got) {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestAmountEncoding(t *testing.T) {
	a := mustHuman(t, "1234.5")
	assert.Equal(t, "1234500000000", a.String())
	assert.Equal(t, "1234.5", a.Human())

	b, err := AmountFromBytes(a.Bytes())
	assert.Nil(t, err)
	assert.Equal(t, true, a.Equals(b))

	zero, err := AmountFromBytes(nil)
	assert.Nil(t, err)
	assert.Equal(t, true, zero.IsZero())

	_, err = AmountFromBytes(make([]byte, 33))
	assert.IsErr(t, errors.ErrInput, err)

	raw, err := json.Marshal(a)
	assert.Nil(t, err)
	assert.Equal(t, `"1234500000000"`, string(raw))

	var fromString, fromNumber Amount
	assert.Nil(t, json.Unmarshal(raw, &fromString))
	assert.Nil(t, json.Unmarshal([]byte(`42`), &fromNumber))
	assert.Equal(t, true, a.Equals(fromString))
	assert.Equal(t, true, NewAmount(42).Equals(fromNumber))
	assert.IsErr(t, errors.ErrInput, json.Unmarshal([]byte(`"-4"`), &fromNumber))
}

func TestAmountCoinConversion(t *testing.T) {
	c, err := mustHuman(t, "12.000000345").ToCoin("IDA")
	assert.Nil(t, err)
	assert.Equal(t, NewCoin(12, 345, "IDA"), c)

	a, err := AmountOf(NewCoin(0, 200000000, "IDA"))
	assert.Nil(t, err)
	assert.Equal(t, true, mustHuman(t, "0.2").Equals(a))

	_, err = AmountOf(NewCoin(-1, 0, "IDA"))
	assert.IsErr(t, errors.ErrAmount, err)

	huge := mustHuman(t, "1000000000000000")
	_, err = huge.ToCoin("IDA")
	assert.IsErr(t, errors.ErrOverflow, err)

	assert.Equal(t, true, MinAmount(NewAmount(3), NewAmount(2)).Equals(NewAmount(2)))
}
