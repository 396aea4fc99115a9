package commands_test

import (
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/outbox"
	"dispatch/internal/pkg/ddd"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *outbox.Codec {
	codec := outbox.NewCodec()
	codec.Register(order.StatusChangedEventName, order.DecodeStatusChangedEvent)
	return codec
}

// pendingMessages builds one unprocessed message per status change of a fresh order.
func pendingMessages(t *testing.T, codec *outbox.Codec, count int) []*outbox.Message {
	t.Helper()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	messages := make([]*outbox.Message, 0, count)
	for i := range count {
		o, err := order.NewOrder(kernel.NewUUID(), mustLocation(t, 1, 1), 1)
		require.NoError(t, err)
		require.NoError(t, o.Assign(kernel.NewUUID()))

		content, err := codec.Encode(o.DomainEvents()[0])
		require.NoError(t, err)
		msg, err := outbox.NewMessage(kernel.NewUUID(), base.Add(time.Duration(i)*time.Second), content)
		require.NoError(t, err)
		messages = append(messages, msg)
	}
	return messages
}

func eventFor(t *testing.T, codec *outbox.Codec, msg *outbox.Message) ddd.DomainEvent {
	t.Helper()
	event, err := codec.Decode(msg.Content())
	require.NoError(t, err)
	return event
}

func TestProcessOutboxMessagesCommandHandler_Handle(t *testing.T) {
	now := time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	newFixture := func() (*MockOutboxRepository, *MockUoW, *MockOutboxUoWFactory, *MockEventPublisher) {
		repo := new(MockOutboxRepository)
		uow := new(MockUoW)
		factory := new(MockOutboxUoWFactory)
		factory.On("Create").Return(uow).Once()
		uow.On("OutboxRepository").Return(repo).Maybe()
		return repo, uow, factory, new(MockEventPublisher)
	}

	t.Run("should publish in order and mark each message after its publish", func(t *testing.T) {
		ctx := t.Context()
		codec := newTestCodec()
		repo, uow, factory, publisher := newFixture()
		messages := pendingMessages(t, codec, 3)

		calls := []*mock.Call{
			uow.On("Begin", ctx).Return(nil).Once(),
			repo.On("GetUnprocessed", ctx, 100).Return(messages, nil).Once(),
		}
		for _, msg := range messages {
			calls = append(calls,
				publisher.On("Publish", ctx, eventFor(t, codec, msg)).Return(nil).Once(),
				repo.On("Update", ctx, msg).Return(nil).Once(),
			)
		}
		calls = append(calls,
			uow.On("Commit", ctx).Return(nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
		)
		mock.InOrder(calls...)

		cmd, err := commands.NewProcessOutboxMessagesCommand(commands.DefaultOutboxBatchSize)
		require.NoError(t, err)

		handler := commands.NewProcessOutboxMessagesCommandHandler(factory, codec, publisher, clock)
		processed, err := handler.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, 3, processed)
		for _, msg := range messages {
			require.NotNil(t, msg.ProcessedOnUtc())
			assert.Equal(t, now, *msg.ProcessedOnUtc())
		}
		publisher.AssertExpectations(t)
		repo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("should stop at the first failed publish and commit earlier marks", func(t *testing.T) {
		ctx := t.Context()
		codec := newTestCodec()
		repo, uow, factory, publisher := newFixture()
		messages := pendingMessages(t, codec, 3)
		busErr := errors.New("broker unavailable")

		uow.On("Begin", ctx).Return(nil).Once()
		repo.On("GetUnprocessed", ctx, 10).Return(messages, nil).Once()
		publisher.On("Publish", ctx, eventFor(t, codec, messages[0])).Return(nil).Once()
		repo.On("Update", ctx, messages[0]).Return(nil).Once()
		publisher.On("Publish", ctx, eventFor(t, codec, messages[1])).Return(busErr).Once()
		uow.On("Commit", ctx).Return(nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		cmd, err := commands.NewProcessOutboxMessagesCommand(10)
		require.NoError(t, err)

		handler := commands.NewProcessOutboxMessagesCommandHandler(factory, codec, publisher, clock)
		processed, err := handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, busErr)
		assert.Equal(t, 1, processed)
		assert.True(t, messages[0].IsProcessed())
		assert.False(t, messages[1].IsProcessed())
		assert.False(t, messages[2].IsProcessed())
		publisher.AssertNumberOfCalls(t, "Publish", 2)
		repo.AssertNotCalled(t, "Update", ctx, messages[1])
		uow.AssertExpectations(t)
	})

	t.Run("should never mark a message whose first publish fails", func(t *testing.T) {
		ctx := t.Context()
		codec := newTestCodec()
		repo, uow, factory, publisher := newFixture()
		messages := pendingMessages(t, codec, 2)

		uow.On("Begin", ctx).Return(nil).Once()
		repo.On("GetUnprocessed", ctx, 100).Return(messages, nil).Once()
		publisher.On("Publish", ctx, mock.Anything).Return(errors.New("timeout")).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		cmd, err := commands.NewProcessOutboxMessagesCommand(100)
		require.NoError(t, err)

		handler := commands.NewProcessOutboxMessagesCommandHandler(factory, codec, publisher, clock)
		processed, err := handler.Handle(ctx, cmd)

		require.Error(t, err)
		assert.Zero(t, processed)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		uow.AssertNotCalled(t, "Commit", ctx)
	})

	t.Run("should stop on undecodable content without publishing it", func(t *testing.T) {
		ctx := t.Context()
		codec := newTestCodec()
		repo, uow, factory, publisher := newFixture()
		broken, err := outbox.NewMessage(kernel.NewUUID(), now, []byte(`{"type":"unknown","payload":{}}`))
		require.NoError(t, err)

		uow.On("Begin", ctx).Return(nil).Once()
		repo.On("GetUnprocessed", ctx, 100).Return([]*outbox.Message{broken}, nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		cmd, err := commands.NewProcessOutboxMessagesCommand(100)
		require.NoError(t, err)

		handler := commands.NewProcessOutboxMessagesCommandHandler(factory, codec, publisher, clock)
		processed, err := handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrDataIntegrity)
		assert.Zero(t, processed)
		assert.False(t, broken.IsProcessed())
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("should do nothing on an empty outbox", func(t *testing.T) {
		ctx := t.Context()
		repo, uow, factory, publisher := newFixture()

		uow.On("Begin", ctx).Return(nil).Once()
		repo.On("GetUnprocessed", ctx, 100).Return([]*outbox.Message{}, nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		cmd, err := commands.NewProcessOutboxMessagesCommand(100)
		require.NoError(t, err)

		handler := commands.NewProcessOutboxMessagesCommandHandler(factory, newTestCodec(), publisher, clock)
		processed, err := handler.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Zero(t, processed)
		uow.AssertNotCalled(t, "Commit", ctx)
	})
}
