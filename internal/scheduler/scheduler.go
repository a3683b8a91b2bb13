package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-region-dashboard/internal/dashboard"
)

// Dispatcher accepts dashboard events.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev dashboard.Event) error
}

// Scheduler periodically re-fetches weather for every region at the current selection.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	dispatcher Dispatcher
	interval   time.Duration
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a new Scheduler. An interval <= 0 disables it.
func New(interval time.Duration, dispatcher Dispatcher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		dispatcher: dispatcher,
		interval:   interval,
		timeout:    2 * time.Minute,
		logger:     logger,
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: started", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) run() {
	s.logger.Debug("scheduler: running region refresh")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.dispatcher.Dispatch(ctx, dashboard.Refresh{}); err != nil {
		s.logger.Warn("scheduler: refresh failed", zap.Error(err))
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
