package jobs

import (
	"context"
	"fmt"
)

type job interface {
	Start(ctx context.Context) error
	Stop()
}

// JobManager starts and stops the jobs as a group.
type JobManager struct {
	jobs []job
}

// NewJobManager keeps the given order for start and the reverse for stop.
func NewJobManager(
	assignment *CourierAssignmentJob,
	movement *CourierMovementJob,
	outbox *OutboxJob,
) *JobManager {
	return &JobManager{jobs: []job{assignment, movement, outbox}}
}

// StartAll stops the already started jobs if one of them fails to start.
func (jm *JobManager) StartAll(ctx context.Context) error {
	for i, j := range jm.jobs {
		if err := j.Start(ctx); err != nil {
			for k := i - 1; k >= 0; k-- {
				jm.jobs[k].Stop()
			}
			return fmt.Errorf("start jobs: %w", err)
		}
	}
	return nil
}

func (jm *JobManager) StopAll() {
	for i := len(jm.jobs) - 1; i >= 0; i-- {
		jm.jobs[i].Stop()
	}
}
