package ports

import (
	"context"
)

type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary.
//
// Commit writes the pending domain events of every aggregate added or updated through
// its repositories to the outbox, in the same transaction as the aggregates themselves.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error

	// Rollback is safe to defer: it is a no-op after a successful Commit.
	Rollback(ctx context.Context) error

	CourierRepository() CourierRepository
	OrderRepository() OrderRepository
	OutboxRepository() OutboxRepository
}
