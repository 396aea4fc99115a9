package commands

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/ddd"
	"dispatch/internal/pkg/errs"
)

type EventDecoder interface {
	Decode(content []byte) (ddd.DomainEvent, error)
}

// ProcessOutboxMessagesCommandHandler relays unprocessed outbox messages to the publisher.
//
// Messages are published one by one, oldest first. A message is marked processed only
// after its publish call succeeded. The first failure stops the batch; messages marked
// before it are still committed and the failed one is retried on the next tick.
type ProcessOutboxMessagesCommandHandler struct {
	uowFactory OutboxUoWFactory
	decoder    EventDecoder
	publisher  ports.EventPublisher
	now        func() time.Time
}

func NewProcessOutboxMessagesCommandHandler(
	uowFactory OutboxUoWFactory,
	decoder EventDecoder,
	publisher ports.EventPublisher,
	now func() time.Time,
) ProcessOutboxMessagesCommandHandler {
	if now == nil {
		now = time.Now
	}

	return ProcessOutboxMessagesCommandHandler{
		uowFactory: uowFactory,
		decoder:    decoder,
		publisher:  publisher,
		now:        now,
	}
}

// Handle returns the number of messages marked processed in this tick.
func (h ProcessOutboxMessagesCommandHandler) Handle(ctx context.Context, command ProcessOutboxMessagesCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outboxRepo := uow.OutboxRepository()

	messages, err := outboxRepo.GetUnprocessed(ctx, command.BatchSize())
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	var (
		processed  int
		publishErr error
	)

	for _, message := range messages {
		event, err := h.decoder.Decode(message.Content())
		if err != nil {
			publishErr = errs.NewDataIntegrityError("outbox message", message.ID().String(), err.Error())
			break
		}

		if err = h.publisher.Publish(ctx, event); err != nil {
			publishErr = fmt.Errorf("publish outbox message %s: %w", message.ID(), err)
			break
		}

		if err = message.MarkProcessed(h.now().UTC()); err != nil {
			publishErr = err
			break
		}
		if err = outboxRepo.Update(ctx, message); err != nil {
			return 0, err
		}
		processed++
	}

	if processed > 0 {
		if err = uow.Commit(ctx); err != nil {
			return 0, err
		}
	}

	return processed, publishErr
}
