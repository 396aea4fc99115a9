package jobs

import (
	"context"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/sirupsen/logrus"
)

const outboxJobName = "outbox_job"

type ProcessOutboxHandler interface {
	Handle(ctx context.Context, cmd commands.ProcessOutboxMessagesCommand) (int, error)
}

// OutboxJob relays outbox batches until the backlog is drained or a publish fails.
type OutboxJob struct {
	handler  ProcessOutboxHandler
	command  commands.ProcessOutboxMessagesCommand
	schedule *schedule

	running  sync.Mutex
	triggers sync.WaitGroup
}

func NewOutboxJob(
	handler ProcessOutboxHandler,
	interval time.Duration,
	batchSize int,
	logger *logrus.Entry,
) (*OutboxJob, error) {
	command, err := commands.NewProcessOutboxMessagesCommand(batchSize)
	if err != nil {
		return nil, err
	}
	s, err := newSchedule(outboxJobName, interval, logger)
	if err != nil {
		return nil, err
	}
	return &OutboxJob{handler: handler, command: command, schedule: s}, nil
}

func (j *OutboxJob) Start(ctx context.Context) error {
	return j.schedule.start(ctx, func(ctx context.Context) { _ = j.Run(ctx) })
}

func (j *OutboxJob) Stop() {
	j.schedule.stop()
	j.triggers.Wait()
}

// Trigger runs a tick now unless one is in progress. It is a no-op while the job is stopped.
func (j *OutboxJob) Trigger() {
	ctx := j.schedule.runContext()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	j.triggers.Add(1)
	go func() {
		defer j.triggers.Done()
		_ = j.Run(ctx)
	}()
}

// Run processes batches while they come back full. Overlapping calls return immediately.
func (j *OutboxJob) Run(ctx context.Context) error {
	if !j.running.TryLock() {
		return nil
	}
	defer j.running.Unlock()

	started := time.Now()
	total := 0
	for {
		processed, err := j.handler.Handle(ctx, j.command)
		total += processed
		outboxPublished.Add(float64(processed))
		if err != nil {
			j.schedule.logger.WithError(err).WithField("published", total).Error("outbox tick stopped")
			observeTick(outboxJobName, resultFailed, started)
			return err
		}
		if processed < j.command.BatchSize() || ctx.Err() != nil {
			break
		}
	}

	if total == 0 {
		observeTick(outboxJobName, resultIdle, started)
		return nil
	}
	j.schedule.logger.WithField("published", total).Debug("outbox messages published")
	observeTick(outboxJobName, resultOK, started)
	return nil
}
