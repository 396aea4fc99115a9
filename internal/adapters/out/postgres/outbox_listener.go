package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// OutboxListener wakes the outbox relay as soon as a commit wrote outbox rows,
// instead of waiting for the next scheduled tick.
type OutboxListener struct {
	dsn    string
	logger *logrus.Entry
}

func NewOutboxListener(dsn string, logger *logrus.Entry) *OutboxListener {
	return &OutboxListener{
		dsn:    dsn,
		logger: logger.WithField("component", "outbox_listener"),
	}
}

// Listen blocks until ctx is done, calling wake for every notification.
// After a reconnect wake is called once as well, since notifications may have been lost.
func (l *OutboxListener) Listen(ctx context.Context, wake func()) error {
	listener := pq.NewListener(l.dsn, listenerMinReconnect, listenerMaxReconnect, l.onEvent)
	defer func() {
		_ = listener.Close()
	}()

	if err := listener.Listen(OutboxChannel); err != nil {
		return fmt.Errorf("listen %s: %w", OutboxChannel, err)
	}
	l.logger.WithField("channel", OutboxChannel).Info("listening for outbox notifications")

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-listener.Notify:
			wake()
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				l.logger.WithError(err).Warn("outbox listener ping failed")
			}
		}
	}
}

func (l *OutboxListener) onEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
		l.logger.WithError(err).Warn("outbox listener connection lost")
	case pq.ListenerEventReconnected:
		l.logger.Info("outbox listener reconnected")
	case pq.ListenerEventConnected:
	}
}
