// Package kafka publishes domain events as integration events on Kafka topics.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/outbox"
	"dispatch/internal/pkg/ddd"
	"dispatch/internal/pkg/errs"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	DefaultOrderStatusChangedTopic = "order.status.changed"
	EventTypeHeader                = "event-type"
)

var ErrPublishFailed = errors.New("publish failed")

// OrderStatusChangedMessage is the wire format of the order status integration event.
type OrderStatusChangedMessage struct {
	OrderID     string `json:"orderId"`
	OrderStatus string `json:"orderStatus"`
}

type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// OrderStatusChangedProducer sends order status events through a circuit breaker.
// While the breaker is open Publish fails fast and the outbox keeps the event.
type OrderStatusChangedProducer struct {
	producer sarama.SyncProducer
	topic    string
	breaker  *gobreaker.CircuitBreaker
	logger   *logrus.Entry
}

// NewSyncProducer builds an idempotent producer that waits for all in-sync replicas.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

func NewOrderStatusChangedProducer(
	producer sarama.SyncProducer,
	topic string,
	settings BreakerSettings,
	logger *logrus.Entry,
) (*OrderStatusChangedProducer, error) {
	if producer == nil {
		return nil, errs.NewValueIsRequiredError("producer")
	}
	if topic == "" {
		topic = DefaultOrderStatusChangedTopic
	}

	logger = logger.WithFields(logrus.Fields{"component": "order_status_producer", "topic": topic})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-" + topic,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &OrderStatusChangedProducer{
		producer: producer,
		topic:    topic,
		breaker:  breaker,
		logger:   logger,
	}, nil
}

// Publish accepts order.StatusChangedEvent only. Any returned error is transient
// from the caller's point of view and wraps ErrPublishFailed.
func (p *OrderStatusChangedProducer) Publish(ctx context.Context, event ddd.DomainEvent) error {
	changed, ok := event.(order.StatusChangedEvent)
	if !ok {
		return errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("unsupported event %T", event))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(OrderStatusChangedMessage{
		OrderID:     changed.OrderID().String(),
		OrderStatus: changed.Status().String(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", changed.Name(), err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(changed.OrderID().String()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(EventTypeHeader), Value: []byte(outbox.TypeTag(changed.Name()))},
		},
		Timestamp: changed.OccurredAt(),
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		partition, offset, sendErr := p.producer.SendMessage(msg)
		if sendErr != nil {
			return nil, sendErr
		}
		p.logger.WithFields(logrus.Fields{
			"order_id":  changed.OrderID().String(),
			"status":    changed.Status().String(),
			"partition": partition,
			"offset":    offset,
		}).Debug("order status event sent")
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: order %s: %w", ErrPublishFailed, changed.OrderID(), err)
	}

	return nil
}

func (p *OrderStatusChangedProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
