package main

import (
	"context"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/x"
)

type signersKey struct{}

// signerAuth authenticates the conditions attached to the context with
// withSigners. Scenario steps are executed as named accounts, so no
// signatures are verified.
type signerAuth struct{}

var _ x.Authenticator = signerAuth{}

func withSigners(ctx ida.Context, conds ...ida.Condition) ida.Context {
	return context.WithValue(ctx, signersKey{}, conds)
}

func (signerAuth) GetConditions(ctx ida.Context) []ida.Condition {
	conds, _ := ctx.Value(signersKey{}).([]ida.Condition)
	return conds
}

func (a signerAuth) HasAddress(ctx ida.Context, addr ida.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// accountCondition returns the condition a named account signs with.
func accountCondition(name string) ida.Condition {
	return ida.NewCondition("idad", "account", []byte(name))
}

// resolveAccount accepts an encoded address or an account name.
func resolveAccount(s string) (ida.Address, error) {
	if s == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "account")
	}
	if addr, err := ida.ParseAddress(s); err == nil && addr != nil {
		return addr, nil
	}
	return accountCondition(s).Address(), nil
}
