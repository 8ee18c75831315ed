package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
	"github.com/riskibarqy/hockey-projections/internal/usecase"
)

type DailyRunner interface {
	Run(ctx context.Context, day time.Time) (usecase.DailyReport, error)
}

// Scheduler fires the daily pipeline once per day at a wall clock time in
// its location. The day passed to the runner is "today" in that location.
type Scheduler struct {
	s        gocron.Scheduler
	runner   DailyRunner
	location *time.Location
	hour     int
	minute   int
	now      func() time.Time
	logger   *logging.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler(runner DailyRunner, location *time.Location, hour, minute int, logger *logging.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("daily runner is required")
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		s:        s,
		runner:   runner,
		location: location,
		hour:     hour,
		minute:   minute,
		now:      time.Now,
		logger:   logger.Named("scheduler"),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(s.hour), uint(s.minute), 0))),
		gocron.NewTask(s.runDaily),
		gocron.WithName("daily-projections"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create daily job: %w", err)
	}

	s.s.Start()
	s.logger.Info("scheduler started", "location", s.location.String(), "at", fmt.Sprintf("%02d:%02d", s.hour, s.minute))
	return nil
}

func (s *Scheduler) Stop() error {
	s.cancel()
	return s.s.Shutdown()
}

// NextRun reports when the daily job fires next.
func (s *Scheduler) NextRun() (time.Time, error) {
	jobs := s.s.Jobs()
	if len(jobs) == 0 {
		return time.Time{}, fmt.Errorf("daily job is not registered")
	}
	return jobs[0].NextRun()
}

func (s *Scheduler) runDaily() {
	day := daykey.Truncate(s.now().In(s.location))
	report, err := s.runner.Run(s.ctx, day)
	if errors.Is(err, usecase.ErrJobInProgress) {
		s.logger.Warn("daily run skipped, previous run still active", "date", daykey.ISO(day))
		return
	}
	if err != nil {
		s.logger.Error("daily run failed", "date", daykey.ISO(day), "error", err)
		return
	}
	s.logger.Info("daily run finished", "date", report.Date, "projected", report.Projected)
}
