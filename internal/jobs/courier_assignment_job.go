package jobs

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/sirupsen/logrus"
)

const assignmentJobName = "courier_assignment_job"

type AssignCourierHandler interface {
	Handle(ctx context.Context, cmd commands.AssignCourierCommand) error
}

// CourierAssignmentJob dispatches one created order per tick.
type CourierAssignmentJob struct {
	handler  AssignCourierHandler
	schedule *schedule
}

func NewCourierAssignmentJob(
	handler AssignCourierHandler,
	interval time.Duration,
	logger *logrus.Entry,
) (*CourierAssignmentJob, error) {
	s, err := newSchedule(assignmentJobName, interval, logger)
	if err != nil {
		return nil, err
	}
	return &CourierAssignmentJob{handler: handler, schedule: s}, nil
}

func (j *CourierAssignmentJob) Start(ctx context.Context) error {
	return j.schedule.start(ctx, func(ctx context.Context) { _ = j.Run(ctx) })
}

func (j *CourierAssignmentJob) Stop() {
	j.schedule.stop()
}

// Run performs one tick. Having no free courier is an expected outcome and is not returned.
func (j *CourierAssignmentJob) Run(ctx context.Context) error {
	started := time.Now()

	err := j.handler.Handle(ctx, commands.NewAssignCourierCommand())
	switch {
	case errors.Is(err, commands.ErrNoFreeCouriersFound):
		j.schedule.logger.Debug("no free couriers, order stays created")
		observeTick(assignmentJobName, resultIdle, started)
		return nil
	case err != nil:
		j.schedule.logger.WithError(err).Error("courier assignment tick failed")
		observeTick(assignmentJobName, resultFailed, started)
		return err
	}

	observeTick(assignmentJobName, resultOK, started)
	return nil
}
