package order

import (
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/ddd"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
)

const StatusChangedEventName = "OrderStatusChanged"

// StatusChangedEvent is raised on every order status transition.
type StatusChangedEvent struct {
	eventID    kernel.UUID
	orderID    kernel.UUID
	courierID  *kernel.UUID
	status     Status
	occurredAt time.Time
}

var _ ddd.DomainEvent = StatusChangedEvent{}

func newStatusChangedEvent(o *Order) StatusChangedEvent {
	return StatusChangedEvent{
		eventID:    kernel.NewUUID(),
		orderID:    o.id,
		courierID:  o.CourierID(),
		status:     o.status,
		occurredAt: time.Now().UTC(),
	}
}

func (e StatusChangedEvent) EventID() uuid.UUID {
	return e.eventID.Value()
}

func (e StatusChangedEvent) Name() string {
	return StatusChangedEventName
}

func (e StatusChangedEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e StatusChangedEvent) OrderID() kernel.UUID {
	return e.orderID
}

func (e StatusChangedEvent) CourierID() *kernel.UUID {
	return e.courierID
}

func (e StatusChangedEvent) Status() Status {
	return e.status
}

type statusChangedPayload struct {
	EventID    kernel.UUID  `json:"eventId"`
	OrderID    kernel.UUID  `json:"orderId"`
	CourierID  *kernel.UUID `json:"courierId,omitempty"`
	Status     string       `json:"status"`
	OccurredAt time.Time    `json:"occurredAt"`
}

func (e StatusChangedEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusChangedPayload{
		EventID:    e.eventID,
		OrderID:    e.orderID,
		CourierID:  e.courierID,
		Status:     e.status.String(),
		OccurredAt: e.occurredAt,
	})
}

// DecodeStatusChangedEvent restores an event written by MarshalJSON.
func DecodeStatusChangedEvent(data []byte) (ddd.DomainEvent, error) {
	var p statusChangedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("payload", err)
	}

	status, err := ParseStatus(p.Status)
	if err != nil {
		return nil, err
	}
	if err := p.OrderID.Validate(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", StatusChangedEventName, err)
	}

	return StatusChangedEvent{
		eventID:    p.EventID,
		orderID:    p.OrderID,
		courierID:  p.CourierID,
		status:     status,
		occurredAt: p.OccurredAt,
	}, nil
}
