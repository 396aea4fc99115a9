package jobs

import (
	"context"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/sirupsen/logrus"
)

const movementJobName = "courier_movement_job"

type MoveCouriersHandler interface {
	Handle(ctx context.Context, cmd commands.MoveCouriersCommand) error
}

// CourierMovementJob moves every busy courier one step per tick.
type CourierMovementJob struct {
	handler  MoveCouriersHandler
	schedule *schedule
}

func NewCourierMovementJob(
	handler MoveCouriersHandler,
	interval time.Duration,
	logger *logrus.Entry,
) (*CourierMovementJob, error) {
	s, err := newSchedule(movementJobName, interval, logger)
	if err != nil {
		return nil, err
	}
	return &CourierMovementJob{handler: handler, schedule: s}, nil
}

func (j *CourierMovementJob) Start(ctx context.Context) error {
	return j.schedule.start(ctx, func(ctx context.Context) { _ = j.Run(ctx) })
}

func (j *CourierMovementJob) Stop() {
	j.schedule.stop()
}

func (j *CourierMovementJob) Run(ctx context.Context) error {
	started := time.Now()

	if err := j.handler.Handle(ctx, commands.NewMoveCouriersCommand()); err != nil {
		j.schedule.logger.WithError(err).Error("courier movement tick failed")
		observeTick(movementJobName, resultFailed, started)
		return err
	}

	observeTick(movementJobName, resultOK, started)
	return nil
}
