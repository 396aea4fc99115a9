package commands_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/outbox"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/ddd"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore keeps aggregates in insertion order and writes the outbox on commit
// the same way the database unit of work does.
type memoryStore struct {
	mu       sync.Mutex
	codec    *outbox.Codec
	orders   []*order.Order
	couriers []*courier.Courier
	messages []*outbox.Message
}

type memoryUoW struct {
	store   *memoryStore
	tracked []ddd.EventSource
}

func (s *memoryStore) Create() *memoryUoW {
	return &memoryUoW{store: s}
}

func (u *memoryUoW) Begin(context.Context) error {
	u.store.mu.Lock()
	return nil
}

func (u *memoryUoW) Commit(context.Context) error {
	var events []ddd.DomainEvent
	for _, source := range u.tracked {
		events = append(events, source.DomainEvents()...)
	}
	slices.SortStableFunc(events, func(a, b ddd.DomainEvent) int {
		return a.OccurredAt().Compare(b.OccurredAt())
	})

	for _, event := range events {
		content, err := u.store.codec.Encode(event)
		if err != nil {
			return err
		}
		msg, err := outbox.NewMessage(kernel.NewUUID(), event.OccurredAt(), content)
		if err != nil {
			return err
		}
		u.store.messages = append(u.store.messages, msg)
	}
	for _, source := range u.tracked {
		source.ClearDomainEvents()
	}

	u.tracked = nil
	u.store.mu.Unlock()
	u.store = nil
	return nil
}

func (u *memoryUoW) Rollback(context.Context) error {
	if u.store != nil {
		u.store.mu.Unlock()
		u.store = nil
	}
	return nil
}

func (u *memoryUoW) CourierRepository() ports.CourierRepository { return memoryCourierRepo{u} }
func (u *memoryUoW) OrderRepository() ports.OrderRepository     { return memoryOrderRepo{u} }
func (u *memoryUoW) OutboxRepository() ports.OutboxRepository   { return memoryOutboxRepo{u} }

type memoryOrderRepo struct{ uow *memoryUoW }

func (r memoryOrderRepo) Add(_ context.Context, o *order.Order) error {
	r.uow.store.orders = append(r.uow.store.orders, o)
	r.uow.tracked = append(r.uow.tracked, o)
	return nil
}

func (r memoryOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.uow.tracked = append(r.uow.tracked, o)
	return nil
}

func (r memoryOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	for _, o := range r.uow.store.orders {
		if o.ID() == id {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("orderID", id)
}

func (r memoryOrderRepo) GetFirstInCreatedStatus(context.Context) (*order.Order, error) {
	for _, o := range r.uow.store.orders {
		if o.Status() == order.Created {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("status", order.Created)
}

func (r memoryOrderRepo) GetAllInAssignedStatus(context.Context) ([]*order.Order, error) {
	var assigned []*order.Order
	for _, o := range r.uow.store.orders {
		if o.Status() == order.Assigned {
			assigned = append(assigned, o)
		}
	}
	return assigned, nil
}

type memoryCourierRepo struct{ uow *memoryUoW }

func (r memoryCourierRepo) Add(_ context.Context, c *courier.Courier) error {
	r.uow.store.couriers = append(r.uow.store.couriers, c)
	return nil
}

func (r memoryCourierRepo) Update(context.Context, *courier.Courier) error {
	return nil
}

func (r memoryCourierRepo) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	for _, c := range r.uow.store.couriers {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("courierID", id)
}

func (r memoryCourierRepo) GetAllFree(context.Context) ([]*courier.Courier, error) {
	var free []*courier.Courier
	for _, c := range r.uow.store.couriers {
		if c.IsFree() {
			free = append(free, c)
		}
	}
	return free, nil
}

type memoryOutboxRepo struct{ uow *memoryUoW }

func (r memoryOutboxRepo) Add(_ context.Context, messages ...*outbox.Message) error {
	r.uow.store.messages = append(r.uow.store.messages, messages...)
	return nil
}

func (r memoryOutboxRepo) GetUnprocessed(_ context.Context, limit int) ([]*outbox.Message, error) {
	var pending []*outbox.Message
	for _, msg := range r.uow.store.messages {
		if !msg.IsProcessed() && len(pending) < limit {
			pending = append(pending, msg)
		}
	}
	return pending, nil
}

func (r memoryOutboxRepo) Update(context.Context, *outbox.Message) error {
	return nil
}

type memoryFactory struct{ store *memoryStore }

func (f memoryFactory) Create() commands.UoW { return f.store.Create() }

type memoryOrderFactory struct{ store *memoryStore }

func (f memoryOrderFactory) Create() commands.OrderUoW { return f.store.Create() }

type memoryCourierFactory struct{ store *memoryStore }

func (f memoryCourierFactory) Create() commands.CourierUoW { return f.store.Create() }

type memoryOutboxFactory struct{ store *memoryStore }

func (f memoryOutboxFactory) Create() commands.OutboxUoW { return f.store.Create() }

type recordingPublisher struct {
	events []ddd.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event ddd.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

type staticGeo struct{ loc kernel.Location }

func (g staticGeo) GetLocation(context.Context, string) (kernel.Location, error) {
	return g.loc, nil
}

func TestDispatchFlow(t *testing.T) {
	t.Run("should deliver an order end to end and drain the outbox in order", func(t *testing.T) {
		ctx := t.Context()
		codec := newTestCodec()
		store := &memoryStore{codec: codec}

		createOrder := commands.NewCreateOrderCommandHandler(
			memoryOrderFactory{store}, staticGeo{mustLocation(t, 1, 1)}, fixedRandom(0))
		createCourier := commands.NewCreateCourierCommandHandler(memoryCourierFactory{store}, fixedRandom(0))
		assign := commands.NewAssignCourierCommandHandler(memoryFactory{store}, services.NewOrderDispatcher())
		move := commands.NewMoveCouriersCommandHandler(memoryFactory{store})
		publisher := &recordingPublisher{}
		relay := commands.NewProcessOutboxMessagesCommandHandler(memoryOutboxFactory{store}, codec, publisher, time.Now)

		orderCmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), "Lenina", 5)
		require.NoError(t, err)
		require.NoError(t, createOrder.Handle(ctx, orderCmd))

		nearLoc, farLoc := mustLocation(t, 2, 2), mustLocation(t, 5, 5)
		nearCmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), "Near", 1, &nearLoc)
		require.NoError(t, err)
		farCmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), "Far", 1, &farLoc)
		require.NoError(t, err)
		require.NoError(t, createCourier.Handle(ctx, farCmd))
		require.NoError(t, createCourier.Handle(ctx, nearCmd))

		require.NoError(t, assign.Handle(ctx, commands.NewAssignCourierCommand()))

		o := store.orders[0]
		require.Equal(t, order.Assigned, o.Status())
		require.NotNil(t, o.CourierID())
		assert.Equal(t, nearCmd.CourierID(), *o.CourierID())

		near := store.couriers[1]
		remaining, err := near.Location().Distance(o.Location())
		require.NoError(t, err)
		require.Equal(t, 2, remaining)

		for o.Status() != order.Completed {
			require.NoError(t, move.Handle(ctx, commands.NewMoveCouriersCommand()))
			next, err := near.Location().Distance(o.Location())
			require.NoError(t, err)
			assert.Equal(t, remaining-1, next)
			remaining = next
		}

		assert.Equal(t, 0, remaining)
		assert.True(t, near.IsFree())
		assert.True(t, store.couriers[0].IsFree())

		// a second assign tick has nothing left to do
		require.NoError(t, assign.Handle(ctx, commands.NewAssignCourierCommand()))

		cmd, err := commands.NewProcessOutboxMessagesCommand(commands.DefaultOutboxBatchSize)
		require.NoError(t, err)
		processed, err := relay.Handle(ctx, cmd)
		require.NoError(t, err)
		assert.Equal(t, 2, processed)

		require.Len(t, publisher.events, 2)
		statuses := make([]order.Status, 0, len(publisher.events))
		for _, event := range publisher.events {
			changed, ok := event.(order.StatusChangedEvent)
			require.True(t, ok)
			assert.Equal(t, o.ID(), changed.OrderID())
			statuses = append(statuses, changed.Status())
		}
		assert.Equal(t, []order.Status{order.Assigned, order.Completed}, statuses)

		processed, err = relay.Handle(ctx, cmd)
		require.NoError(t, err)
		assert.Zero(t, processed)
	})
}
