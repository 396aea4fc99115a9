// Package kafka consumes integration events that start work in the dispatch core.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBasketConfirmedTopic = "basket.confirmed"
	defaultRetryDelay           = time.Second
)

var ErrMalformedMessage = errors.New("malformed message")

// BasketConfirmedMessage is the payload published by the basket service once checkout completes.
type BasketConfirmedMessage struct {
	BasketID string `json:"basketId"`
	Address  struct {
		Street string `json:"street"`
	} `json:"address"`
	Volume int `json:"volume"`
}

type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
}

// BasketConfirmedConsumer turns basket confirmations into orders.
// A message that cannot become a valid command is logged and committed.
// A handler failure ends the session without committing, so the message is read again.
type BasketConfirmedConsumer struct {
	group      sarama.ConsumerGroup
	topic      string
	handler    CreateOrderHandler
	logger     *logrus.Entry
	retryDelay time.Duration

	wg sync.WaitGroup
}

// NewConsumerGroup joins groupID starting from the oldest uncommitted offset.
func NewConsumerGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}
	return group, nil
}

func NewBasketConfirmedConsumer(
	group sarama.ConsumerGroup,
	topic string,
	handler CreateOrderHandler,
	logger *logrus.Entry,
) (*BasketConfirmedConsumer, error) {
	if group == nil {
		return nil, errs.NewValueIsRequiredError("group")
	}
	if handler == nil {
		return nil, errs.NewValueIsRequiredError("handler")
	}
	if topic == "" {
		topic = DefaultBasketConfirmedTopic
	}

	return &BasketConfirmedConsumer{
		group:      group,
		topic:      topic,
		handler:    handler,
		logger:     logger.WithFields(logrus.Fields{"component": "basket_confirmed_consumer", "topic": topic}),
		retryDelay: defaultRetryDelay,
	}, nil
}

// Start consumes in the background until ctx is cancelled or Stop is called.
func (c *BasketConfirmedConsumer) Start(ctx context.Context) {
	c.wg.Add(2)

	go func() {
		defer c.wg.Done()
		for {
			// Consume returns on every rebalance.
			if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.logger.WithError(err).Error("consume session ended")
				select {
				case <-ctx.Done():
				case <-time.After(c.retryDelay):
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.logger.WithError(err).Error("consumer group error")
		}
	}()

	c.logger.Info("basket confirmed consumer started")
}

func (c *BasketConfirmedConsumer) Stop() error {
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("close kafka consumer group: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("basket confirmed consumer stopped")
	return nil
}

func (c *BasketConfirmedConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (c *BasketConfirmedConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (c *BasketConfirmedConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			logger := c.logger.WithFields(logrus.Fields{
				"partition": message.Partition,
				"offset":    message.Offset,
			})

			err := c.handle(session.Context(), message)
			switch {
			case errors.Is(err, ErrMalformedMessage):
				logger.WithError(err).Warn("skipping malformed basket confirmation")
			case err != nil:
				logger.WithError(err).Error("basket confirmation not processed")
				return err
			default:
				logger.Debug("basket confirmation processed")
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *BasketConfirmedConsumer) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	cmd, err := ParseBasketConfirmed(message.Value)
	if err != nil {
		return err
	}
	return c.handler.Handle(ctx, cmd)
}

// ParseBasketConfirmed decodes a payload into a CreateOrderCommand.
// Every failure wraps ErrMalformedMessage.
func ParseBasketConfirmed(payload []byte) (commands.CreateOrderCommand, error) {
	var msg BasketConfirmedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return commands.CreateOrderCommand{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	orderID, err := kernel.UUIDFromString(msg.BasketID)
	if err != nil {
		return commands.CreateOrderCommand{}, fmt.Errorf("%w: basketId: %w", ErrMalformedMessage, err)
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, msg.Address.Street, msg.Volume)
	if err != nil {
		return commands.CreateOrderCommand{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	return cmd, nil
}
