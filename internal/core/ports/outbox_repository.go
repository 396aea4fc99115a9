package ports

import (
	"context"

	"dispatch/internal/core/domain/model/outbox"
)

type OutboxRepository interface {
	Add(ctx context.Context, messages ...*outbox.Message) error

	// GetUnprocessed returns at most limit unprocessed messages, oldest first.
	GetUnprocessed(ctx context.Context, limit int) ([]*outbox.Message, error)

	// Update persists the processed timestamp of a message.
	Update(ctx context.Context, message *outbox.Message) error
}
