// Package ddd carries the small amount of plumbing aggregates need to raise domain events.
package ddd

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by an aggregate. Name is the stable type tag used
// when the event is serialized into the outbox.
type DomainEvent interface {
	EventID() uuid.UUID
	Name() string
	OccurredAt() time.Time
}

// EventSource is implemented by aggregates that queue events until they are persisted.
type EventSource interface {
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

// EventRecorder is embedded by aggregates as their pending events list.
type EventRecorder struct {
	events []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

// DomainEvents returns a copy of the pending events in the order they were raised.
func (r *EventRecorder) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *EventRecorder) ClearDomainEvents() {
	r.events = nil
}
