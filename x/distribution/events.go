package distribution

import (
	"sync"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/coin"
)

// EventType names a lifecycle event.
type EventType string

const (
	EventIndexCreated             EventType = "IndexCreated"
	EventIndexUpdated             EventType = "IndexUpdated"
	EventSubscriptionApproved     EventType = "SubscriptionApproved"
	EventSubscriptionRevoked      EventType = "SubscriptionRevoked"
	EventSubscriptionUnitsUpdated EventType = "SubscriptionUnitsUpdated"
	EventSubscriptionDeleted      EventType = "SubscriptionDeleted"
	EventClaimed                  EventType = "Claimed"
)

// Event describes a change of an index or a subscription. Subscription
// fields are empty for index events.
type Event struct {
	Type       EventType   `json:"type"`
	Height     int64       `json:"height,omitempty"`
	Publisher  ida.Address `json:"publisher"`
	IndexID    uint32      `json:"index_id"`
	Subscriber ida.Address `json:"subscriber,omitempty"`

	IndexValue         coin.Amount `json:"index_value"`
	TotalUnitsApproved coin.Amount `json:"total_units_approved"`
	TotalUnitsPending  coin.Amount `json:"total_units_pending"`

	Approved            bool        `json:"approved,omitempty"`
	Units               coin.Amount `json:"units"`
	PendingDistribution coin.Amount `json:"pending_distribution"`
	// Amount is the value paid to the subscriber, or paid into the
	// index for IndexUpdated.
	Amount coin.Amount `json:"amount"`
}

func indexEvent(t EventType, idx *Index, amount coin.Amount) Event {
	return Event{
		Type:               t,
		Publisher:          idx.Publisher,
		IndexID:            idx.ID,
		IndexValue:         idx.Value,
		TotalUnitsApproved: idx.TotalUnitsApproved,
		TotalUnitsPending:  idx.TotalUnitsPending,
		Amount:             amount,
	}
}

func subscriptionEvent(t EventType, idx *Index, sub *Subscription, amount coin.Amount) Event {
	ev := indexEvent(t, idx, amount)
	ev.Subscriber = sub.Subscriber
	ev.Approved = sub.Approved
	ev.Units = sub.Units
	ev.PendingDistribution = sub.PendingDistribution
	return ev
}

// EventSink receives events of successfully completed operations.
type EventSink interface {
	Publish(ctx ida.Context, events ...Event) error
}

// NopSink drops all events.
type NopSink struct{}

func (NopSink) Publish(ida.Context, ...Event) error { return nil }

// EventLog keeps all published events in memory.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

var _ EventSink = (*EventLog)(nil)

func (l *EventLog) Publish(ctx ida.Context, events ...Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return nil
}

// Events returns all events published so far.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

// Reset drops all collected events.
func (l *EventLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}
