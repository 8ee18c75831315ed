package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
)

type statsWriter interface {
	WriteDay(ctx context.Context, day time.Time) (int, error)
	WriteRange(ctx context.Context, start, end time.Time) (RangeReport, error)
	WriteCombined(ctx context.Context, cutoff time.Time) (int, error)
}

type featureWriter interface {
	WriteDay(ctx context.Context, day time.Time, training bool) (int, error)
	WriteRange(ctx context.Context, start, end time.Time, training bool) (RangeReport, error)
	WriteCombined(ctx context.Context, cutoff time.Time) (int, error)
}

type projectionExporter interface {
	Export(ctx context.Context, day time.Time) (projection.Result, error)
}

type DailyReport struct {
	Date      string        `json:"date"`
	Projected int           `json:"projected"`
	Steps     []StepOutcome `json:"steps"`
}

type RebuildReport struct {
	Stats           RangeReport `json:"stats"`
	Features        RangeReport `json:"features"`
	StatsRows       int         `json:"stats_rows"`
	TrainingRows    int         `json:"training_rows"`
	CombinedThrough string      `json:"combined_through"`
}

// DailyService runs the full pipeline for one game day. Runs are serialized;
// a second caller gets ErrJobInProgress instead of waiting.
type DailyService struct {
	stats       statsWriter
	features    featureWriter
	projections projectionExporter
	logger      *logging.Logger
	mu          sync.Mutex
}

func NewDailyService(stats statsWriter, features featureWriter, projections projectionExporter, logger *logging.Logger) *DailyService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DailyService{
		stats:       stats,
		features:    features,
		projections: projections,
		logger:      logger.Named("daily"),
	}
}

// Run backfills the previous day's stats and training features, refreshes
// both combined files and exports projections for day. The two backfill
// steps are best effort; every later step fails the run.
func (s *DailyService) Run(ctx context.Context, day time.Time) (DailyReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DailyService.Run")
	defer span.End()

	if day.IsZero() {
		return DailyReport{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if !s.mu.TryLock() {
		return DailyReport{}, ErrJobInProgress
	}
	defer s.mu.Unlock()

	day = daykey.Truncate(day)
	prev := day.AddDate(0, 0, -1)
	report := DailyReport{Date: daykey.ISO(day)}

	started := time.Now()
	rows, err := s.stats.WriteDay(ctx, prev)
	report.Steps = append(report.Steps, outcomeFor(stepStats, prev, started, rows, err, StepSkipped))
	if err != nil {
		s.logger.WarnContext(ctx, "backfill stats skipped", "date", daykey.ISO(prev), "error", err)
	}

	started = time.Now()
	rows, err = s.stats.WriteCombined(ctx, time.Time{})
	report.Steps = append(report.Steps, outcomeFor(stepStatsCombined, time.Time{}, started, rows, err, StepFailed))
	if err != nil {
		return report, s.fail(ctx, day, err)
	}

	started = time.Now()
	rows, err = s.features.WriteDay(ctx, prev, true)
	report.Steps = append(report.Steps, outcomeFor(stepTraining, prev, started, rows, err, StepSkipped))
	if err != nil {
		s.logger.WarnContext(ctx, "backfill training features skipped", "date", daykey.ISO(prev), "error", err)
	}

	started = time.Now()
	rows, err = s.features.WriteCombined(ctx, prev)
	report.Steps = append(report.Steps, outcomeFor(stepFeaturesCombined, prev, started, rows, err, StepFailed))
	if err != nil {
		return report, s.fail(ctx, day, err)
	}

	started = time.Now()
	rows, err = s.features.WriteDay(ctx, day, false)
	report.Steps = append(report.Steps, outcomeFor(stepFeatures, day, started, rows, err, StepFailed))
	if err != nil {
		return report, s.fail(ctx, day, err)
	}

	started = time.Now()
	result, err := s.projections.Export(ctx, day)
	report.Steps = append(report.Steps, outcomeFor(stepProjections, day, started, len(result.Rows), err, StepFailed))
	if err != nil {
		return report, s.fail(ctx, day, err)
	}
	report.Projected = len(result.Rows)

	s.logger.InfoContext(ctx, "daily run done", "date", report.Date, "projected", report.Projected)
	return report, nil
}

func (s *DailyService) fail(ctx context.Context, day time.Time, err error) error {
	s.logger.ErrorContext(ctx, "daily run failed", "date", daykey.ISO(day), "error", err)
	return err
}

// Rebuild rewrites stats and training features for every date in
// [start, end] and refreshes both combined files through end.
func (s *DailyService) Rebuild(ctx context.Context, start, end time.Time) (RebuildReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DailyService.Rebuild")
	defer span.End()

	if err := validateRange(start, end); err != nil {
		return RebuildReport{}, err
	}
	if !s.mu.TryLock() {
		return RebuildReport{}, ErrJobInProgress
	}
	defer s.mu.Unlock()

	start, end = daykey.Truncate(start), daykey.Truncate(end)
	report := RebuildReport{CombinedThrough: daykey.ISO(end)}

	var err error
	if report.Stats, err = s.stats.WriteRange(ctx, start, end); err != nil {
		return report, err
	}
	if report.StatsRows, err = s.stats.WriteCombined(ctx, time.Time{}); err != nil {
		return report, err
	}
	if report.Features, err = s.features.WriteRange(ctx, start, end, true); err != nil {
		return report, err
	}
	if report.TrainingRows, err = s.features.WriteCombined(ctx, end); err != nil {
		return report, err
	}

	s.logger.InfoContext(ctx, "rebuild done",
		"start", daykey.ISO(start),
		"end", daykey.ISO(end),
		"stats_written", report.Stats.WrittenCount,
		"stats_skipped", report.Stats.SkippedCount,
		"features_written", report.Features.WrittenCount,
		"features_skipped", report.Features.SkippedCount,
	)
	return report, nil
}
