// Package postgres implements the unit of work over GORM and the outbox
// notification listener.
//
// A unit of work wraps one database transaction. Repositories obtained from it
// share the transaction, and Commit turns the pending domain events of every
// tracked aggregate into outbox rows before committing:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.OrderRepository().Update(ctx, order); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
package postgres

import (
	"context"
	"fmt"
	"slices"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/outboxrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/outbox"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/ddd"

	"gorm.io/gorm"
)

// OutboxChannel is the NOTIFY channel raised by commits that wrote outbox rows.
const OutboxChannel = "outbox_messages"

type EventEncoder interface {
	Encode(event ddd.DomainEvent) ([]byte, error)
}

type GormUnitOfWorkFactory struct {
	db      *gorm.DB
	encoder EventEncoder
}

func NewGormUnitOfWorkFactory(db *gorm.DB, encoder EventEncoder) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{
		db:      db,
		encoder: encoder,
	}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:      f.db,
		encoder: f.encoder,
	}
}

type GormUnitOfWork struct {
	db      *gorm.DB
	tx      *gorm.DB
	encoder EventEncoder
	tracked []ddd.EventSource
}

// Begin is idempotent while a transaction is open.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	uow.tx = tx

	return nil
}

// Commit writes the outbox rows for all pending events and commits. Pending events
// are cleared only after a successful commit, so a failed commit can be retried
// with the same aggregates.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	messages, err := uow.outboxMessages()
	if err != nil {
		return err
	}

	if len(messages) > 0 {
		if err = outboxrepo.NewGormOutboxRepository(uow.tx).Add(ctx, messages...); err != nil {
			return fmt.Errorf("write outbox: %w", err)
		}
		if err = uow.tx.WithContext(ctx).Exec("SELECT pg_notify(?, '')", OutboxChannel).Error; err != nil {
			return fmt.Errorf("notify outbox: %w", err)
		}
	}

	if err = uow.tx.Commit().Error; err != nil {
		uow.tx = nil
		return err
	}
	uow.tx = nil

	for _, source := range uow.tracked {
		source.ClearDomainEvents()
	}
	uow.tracked = nil

	return nil
}

// Rollback is a no-op without an open transaction, which makes it safe to defer.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return nil
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.tracked = nil
	return err
}

func (uow *GormUnitOfWork) CourierRepository() ports.CourierRepository {
	return courierrepo.NewGormCourierRepository(uow.conn())
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

// Track registers an aggregate once per unit of work.
func (uow *GormUnitOfWork) Track(source ddd.EventSource) {
	if slices.Contains(uow.tracked, source) {
		return
	}
	uow.tracked = append(uow.tracked, source)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) outboxMessages() ([]*outbox.Message, error) {
	var events []ddd.DomainEvent
	for _, source := range uow.tracked {
		events = append(events, source.DomainEvents()...)
	}
	slices.SortStableFunc(events, func(a, b ddd.DomainEvent) int {
		return a.OccurredAt().Compare(b.OccurredAt())
	})

	messages := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		content, err := uow.encoder.Encode(event)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", event.Name(), err)
		}

		id, err := kernel.UUIDFromValue(event.EventID())
		if err != nil {
			return nil, err
		}

		message, err := outbox.NewMessage(id, event.OccurredAt(), content)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, nil
}
