package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 2 * time.Minute

// Publisher is the job run on every tick.
type Publisher interface {
	Publish(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	publisher Publisher
	logger    *zap.Logger
}

// NewScheduler creates a scheduler that publishes the formulation library on
// the standard 5-field cron spec.
func NewScheduler(spec string, publisher Publisher, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		cron:      cron.New(),
		publisher: publisher,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(spec, s.publish); err != nil {
		return nil, fmt.Errorf("failed to schedule sheets sync %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publish() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.publisher.Publish(ctx)
	if err != nil {
		s.logger.Error("scheduled sheets sync failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled sheets sync done", zap.Int("formulations", n))
}
