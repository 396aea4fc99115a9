package ports

import (
	"context"

	"dispatch/internal/pkg/ddd"
)

// EventPublisher delivers domain events to the message bus. Only the outbox relay calls it.
// A returned error means the event may not have been delivered and will be retried.
type EventPublisher interface {
	Publish(ctx context.Context, event ddd.DomainEvent) error
}
