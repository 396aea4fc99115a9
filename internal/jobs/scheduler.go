package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/pkg/errs"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// schedule owns the cron instance and the context every tick runs with.
type schedule struct {
	name     string
	interval time.Duration
	logger   *logrus.Entry

	mu     sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func newSchedule(name string, interval time.Duration, logger *logrus.Entry) (*schedule, error) {
	if interval <= 0 {
		return nil, errs.NewValueIsInvalidError(name + " interval")
	}
	return &schedule{
		name:     name,
		interval: interval,
		logger:   logger.WithField("component", name),
	}, nil
}

func (s *schedule) start(ctx context.Context, tick func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errs.NewStateConflictError("start "+s.name, "running")
	}

	ctx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(s.logger)),
		cron.SkipIfStillRunning(cron.PrintfLogger(s.logger)),
	))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { tick(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule %s: %w", s.name, err)
	}

	c.Start()
	s.cron = c
	s.ctx = ctx
	s.cancel = cancel
	s.logger.WithField("interval", s.interval.String()).Info("job started")
	return nil
}

// stop cancels the running tick and waits for it to return.
func (s *schedule) stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.ctx, s.cancel = nil, nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}

	cancel()
	<-c.Stop().Done()
	s.logger.Info("job stopped")
}

// runContext is nil unless the schedule is running.
func (s *schedule) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}
