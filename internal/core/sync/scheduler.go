package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler drives periodic full polls through each coordinator. Poll
// failures are logged and retried at the next tick; the last good
// state stays visible to consumers throughout an outage.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	timeout  time.Duration
	logger   *logrus.Logger
}

// NewScheduler creates a scheduler polling every interval, with a
// per-poll timeout.
func NewScheduler(interval, timeout time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Add schedules periodic polls for one coordinator.
func (s *Scheduler) Add(c *Coordinator) error {
	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := c.Poll(ctx); err != nil {
			s.logger.WithError(err).WithField("device_sn", c.DeviceSN()).Warn("Scheduled poll failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule polls for %s: %w", c.DeviceSN(), err)
	}
	return nil
}

// Start begins scheduling.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running poll to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
