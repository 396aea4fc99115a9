package kafka_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dispatch/internal/adapters/out/kafka"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/ddd"
	"dispatch/internal/pkg/errs"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assignedEvent(t *testing.T) order.StatusChangedEvent {
	t.Helper()
	location, err := kernel.NewLocation(2, 2)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), location, 1)
	require.NoError(t, err)
	require.NoError(t, o.Assign(kernel.NewUUID()))

	event, ok := o.DomainEvents()[0].(order.StatusChangedEvent)
	require.True(t, ok)
	return event
}

func newProducer(t *testing.T, mock *mocks.SyncProducer, settings kafka.BreakerSettings) *kafka.OrderStatusChangedProducer {
	t.Helper()
	producer, err := kafka.NewOrderStatusChangedProducer(mock, "", settings, logrus.NewEntry(logrus.New()))
	require.NoError(t, err)
	return producer
}

type otherEvent struct{}

func (otherEvent) EventID() uuid.UUID    { return uuid.New() }
func (otherEvent) Name() string          { return "Other" }
func (otherEvent) OccurredAt() time.Time { return time.Now() }

var _ ddd.DomainEvent = otherEvent{}

func TestOrderStatusChangedProducer_Publish(t *testing.T) {
	t.Run("should send keyed message with event type header", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, nil)
		event := assignedEvent(t)

		mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			if msg.Topic != kafka.DefaultOrderStatusChangedTopic {
				return errors.New("unexpected topic " + msg.Topic)
			}
			key, err := msg.Key.Encode()
			if err != nil {
				return err
			}
			if string(key) != event.OrderID().String() {
				return errors.New("unexpected key " + string(key))
			}
			if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "order_status_changed" {
				return errors.New("missing event type header")
			}

			raw, err := msg.Value.Encode()
			if err != nil {
				return err
			}
			var body kafka.OrderStatusChangedMessage
			if err = json.Unmarshal(raw, &body); err != nil {
				return err
			}
			if body.OrderID != event.OrderID().String() || body.OrderStatus != "Assigned" {
				return errors.New("unexpected body " + string(raw))
			}
			return nil
		})

		producer := newProducer(t, mock, kafka.DefaultBreakerSettings())
		require.NoError(t, producer.Publish(t.Context(), event))
		require.NoError(t, producer.Close())
	})

	t.Run("should wrap send failures as publish failures", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, nil)
		mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		producer := newProducer(t, mock, kafka.DefaultBreakerSettings())
		err := producer.Publish(t.Context(), assignedEvent(t))

		require.ErrorIs(t, err, kafka.ErrPublishFailed)
		require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		require.NoError(t, producer.Close())
	})

	t.Run("should fail fast once the breaker opens", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, nil)
		mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
		mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		settings := kafka.DefaultBreakerSettings()
		settings.FailureThreshold = 2
		producer := newProducer(t, mock, settings)

		require.Error(t, producer.Publish(t.Context(), assignedEvent(t)))
		require.Error(t, producer.Publish(t.Context(), assignedEvent(t)))

		err := producer.Publish(t.Context(), assignedEvent(t))
		require.ErrorIs(t, err, gobreaker.ErrOpenState)
		require.ErrorIs(t, err, kafka.ErrPublishFailed)
		require.NoError(t, producer.Close())
	})

	t.Run("should reject events it does not know", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, nil)
		producer := newProducer(t, mock, kafka.DefaultBreakerSettings())

		err := producer.Publish(t.Context(), otherEvent{})

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		require.NoError(t, producer.Close())
	})
}

func TestNewOrderStatusChangedProducer(t *testing.T) {
	t.Run("should require a producer", func(t *testing.T) {
		_, err := kafka.NewOrderStatusChangedProducer(nil, "topic", kafka.DefaultBreakerSettings(),
			logrus.NewEntry(logrus.New()))
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
