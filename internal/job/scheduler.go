// Package job runs periodic background maintenance.
package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on cron schedules. A run that is still in
// progress when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger:  logger,
		timeout: 5 * time.Minute,
	}
}

// Register schedules job with a standard five-field cron spec.
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.execute(job)
	})
	if err != nil {
		return err
	}
	s.logger.Info("job registered", zap.String("job", job.Name()), zap.String("schedule", spec))
	return nil
}

func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Error("job failed", zap.String("job", job.Name()), zap.Error(err))
		return
	}
	s.logger.Info("job finished", zap.String("job", job.Name()), zap.Duration("duration", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}
