package main

import (
	"context"
	"testing"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/x/distribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{}

func (failingSink) Publish(ida.Context, ...distribution.Event) error {
	return errors.Wrap(errors.ErrNetwork, "unreachable")
}

func TestTeeSink(t *testing.T) {
	first, second := &distribution.EventLog{}, &distribution.EventLog{}
	ev := distribution.Event{Type: distribution.EventIndexCreated, IndexID: 3}

	err := teeSink{first, failingSink{}, second}.Publish(context.Background(), ev)
	assert.True(t, errors.ErrNetwork.Is(err))
	assert.Equal(t, []distribution.Event{ev}, first.Events())
	assert.Equal(t, []distribution.Event{ev}, second.Events(), "a failing sink must not stop the others")
}

func TestDeliverRequiresSigner(t *testing.T) {
	n := newTestNode(t)
	alice := accountCondition("alice").Address()
	msg := &distribution.CreateIndexMsg{Publisher: alice, IndexID: 1}

	_, err := n.deliver(context.Background(), msg, "bob")
	require.Error(t, err)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, int64(0), n.ledger.Height())
}
