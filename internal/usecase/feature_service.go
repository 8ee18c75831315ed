package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// FeatureService writes per-day feature snapshots from the combined stats
// history and the day's player pool.
type FeatureService struct {
	stats    gamestat.SnapshotRepository
	pools    roster.Repository
	features feature.Repository
	builder  *feature.Builder
	logger   *logging.Logger
}

func NewFeatureService(
	stats gamestat.SnapshotRepository,
	pools roster.Repository,
	features feature.Repository,
	builder *feature.Builder,
	logger *logging.Logger,
) *FeatureService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FeatureService{
		stats:    stats,
		pools:    pools,
		features: features,
		builder:  builder,
		logger:   logger.Named(stepFeatures),
	}
}

// BuildDay builds feature rows for day. Training rows carry the realized
// outcome of day and exist only for players who played.
func (s *FeatureService) BuildDay(ctx context.Context, day time.Time, training bool) ([]feature.Row, error) {
	history, err := s.stats.ReadCombined(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stats history: %w", err)
	}
	return s.buildDay(ctx, day, history, training)
}

func (s *FeatureService) buildDay(ctx context.Context, day time.Time, history []gamestat.PlayerDayStat, training bool) ([]feature.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.BuildDay")
	defer span.End()

	entries, err := s.pools.ReadPool(ctx, day)
	if err != nil {
		return nil, err
	}
	pool := roster.NewPool(day, entries)

	rows, err := s.builder.Build(feature.BuildInput{
		Day:      day,
		Pool:     pool,
		History:  history,
		Training: training,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("features.pool", len(pool.Entries)),
		attribute.Int("features.rows", len(rows)),
		attribute.Bool("features.training", training),
	)
	return rows, nil
}

// WriteDay builds and overwrites the feature snapshot for day.
func (s *FeatureService) WriteDay(ctx context.Context, day time.Time, training bool) (int, error) {
	history, err := s.stats.ReadCombined(ctx)
	if err != nil {
		return 0, fmt.Errorf("read stats history: %w", err)
	}
	return s.writeDay(ctx, day, history, training)
}

func (s *FeatureService) writeDay(ctx context.Context, day time.Time, history []gamestat.PlayerDayStat, training bool) (int, error) {
	rows, err := s.buildDay(ctx, day, history, training)
	if err != nil {
		return 0, fmt.Errorf("build features for %s: %w", daykey.ISO(day), err)
	}
	if err := s.features.WriteDay(ctx, day, rows); err != nil {
		return 0, fmt.Errorf("write features for %s: %w", daykey.ISO(day), err)
	}
	s.logger.InfoContext(ctx, "feature snapshot written", "date", daykey.ISO(day), "rows", len(rows), "training", training)
	return len(rows), nil
}

// WriteRange writes a feature snapshot for every date in [start, end],
// reading the stats history once. Dates without a pool or with no usable
// league reference are skipped and reported.
func (s *FeatureService) WriteRange(ctx context.Context, start, end time.Time, training bool) (RangeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.WriteRange")
	defer span.End()

	if err := validateRange(start, end); err != nil {
		return RangeReport{}, err
	}
	history, err := s.stats.ReadCombined(ctx)
	if err != nil {
		return RangeReport{}, fmt.Errorf("read stats history: %w", err)
	}

	report := newRangeReport(stepFeatures, start, end)
	for _, day := range daykey.Range(start, end) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		started := time.Now()
		rows, err := s.writeDay(ctx, day, history, training)
		if err != nil {
			s.logger.WarnContext(ctx, "skip feature date", "date", daykey.ISO(day), "error", err)
		}
		report.add(outcomeFor(stepFeatures, day, started, rows, err, StepSkipped))
	}

	s.logger.InfoContext(ctx, "feature range done",
		"start", report.Start,
		"end", report.End,
		"written", report.WrittenCount,
		"skipped", report.SkippedCount,
	)
	return report, nil
}

// WriteCombined concatenates feature snapshots dated on or before cutoff into
// the training file. A zero cutoff keeps every date. Prediction-input
// snapshots left behind by a missed backfill are skipped.
func (s *FeatureService) WriteCombined(ctx context.Context, cutoff time.Time) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.WriteCombined")
	defer span.End()

	rows, err := s.features.ReadAllDays(ctx)
	if err != nil {
		return 0, fmt.Errorf("read feature snapshots: %w", err)
	}
	if !cutoff.IsZero() {
		rows = feature.Filter(rows, cutoff)
	}
	training := feature.TrainingOnly(rows)
	if skipped := len(rows) - len(training); skipped > 0 {
		s.logger.WarnContext(ctx, "prediction-input feature rows skipped", "rows", skipped)
	}
	rows = training
	if err := s.features.WriteCombined(ctx, rows); err != nil {
		return 0, fmt.Errorf("write training features: %w", err)
	}
	s.logger.InfoContext(ctx, "training features written", "rows", len(rows))
	return len(rows), nil
}

// Get returns the stored feature snapshot for day.
func (s *FeatureService) Get(ctx context.Context, day time.Time) ([]feature.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.Get")
	defer span.End()

	rows, err := s.features.ReadDay(ctx, day)
	if err != nil {
		if isSourceMissing(err) {
			return nil, fmt.Errorf("%w: no feature snapshot for %s", ErrNotFound, daykey.ISO(day))
		}
		return nil, fmt.Errorf("read features for %s: %w", daykey.ISO(day), err)
	}
	return rows, nil
}
