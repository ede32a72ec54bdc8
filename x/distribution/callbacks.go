package distribution

import (
	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
)

// AgreementKind identifies this agreement in callback payloads.
const AgreementKind = "ida.v1"

// AgreementAction describes what happens to a subscription.
type AgreementAction string

const (
	ActionCreated    AgreementAction = "created"
	ActionUpdated    AgreementAction = "updated"
	ActionTerminated AgreementAction = "terminated"
)

// SubscriptionState is a snapshot of a subscription passed to callbacks.
type SubscriptionState struct {
	Exists              bool        `json:"exists"`
	Approved            bool        `json:"approved"`
	Units               coin.Amount `json:"units"`
	PendingDistribution coin.Amount `json:"pending_distribution"`
}

func stateOf(sub *Subscription) SubscriptionState {
	if sub == nil || !sub.IsLive() {
		return SubscriptionState{}
	}
	return SubscriptionState{
		Exists:              true,
		Approved:            sub.Approved,
		Units:               sub.Units,
		PendingDistribution: sub.PendingDistribution,
	}
}

// AgreementData is the payload of a callback.
type AgreementData struct {
	Kind       string            `json:"kind"`
	Action     AgreementAction   `json:"action"`
	Publisher  ida.Address       `json:"publisher"`
	IndexID    uint32            `json:"index_id"`
	Subscriber ida.Address       `json:"subscriber"`
	Before     SubscriptionState `json:"before"`
	After      SubscriptionState `json:"after"`
}

// AgreementCallback is implemented by a counterparty that wants to be
// notified about changes of its subscriptions.
//
// BeforeAgreement is called before any state is written. AfterAgreement
// is called once the new state is written, so a call back into the
// controller observes it. Returning an error from either aborts the whole
// operation. Both may return an updated context.
type AgreementCallback interface {
	BeforeAgreement(ctx ida.Context, db ida.KVStore, data AgreementData) (ida.Context, error)
	AfterAgreement(ctx ida.Context, db ida.KVStore, data AgreementData) (ida.Context, error)
}

// CallbackRegistry resolves the callback of an account.
type CallbackRegistry interface {
	// Callback returns nil if the account has no callback.
	Callback(account ida.Address) AgreementCallback
}

// CallbackMap is a CallbackRegistry keyed by the account address.
type CallbackMap map[string]AgreementCallback

var _ CallbackRegistry = CallbackMap(nil)

// Register sets the callback of an account.
func (m CallbackMap) Register(account ida.Address, cb AgreementCallback) {
	m[account.String()] = cb
}

func (m CallbackMap) Callback(account ida.Address) AgreementCallback {
	return m[account.String()]
}

// counterparty returns the account notified about a change made by caller.
// Changes made by the subscriber notify the publisher. Changes made by the
// publisher or a proxy notify the subscriber.
func counterparty(caller, publisher, subscriber ida.Address) ida.Address {
	if caller.Equals(subscriber) {
		return publisher
	}
	return subscriber
}
