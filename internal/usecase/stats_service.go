package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// StatsService turns raw situation exports into per-day stat snapshots.
type StatsService struct {
	sources   gamestat.SourceRepository
	snapshots gamestat.SnapshotRepository
	rules     gamestat.ScoringRules
	logger    *logging.Logger
}

func NewStatsService(
	sources gamestat.SourceRepository,
	snapshots gamestat.SnapshotRepository,
	rules gamestat.ScoringRules,
	logger *logging.Logger,
) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{
		sources:   sources,
		snapshots: snapshots,
		rules:     rules,
		logger:    logger.Named(stepStats),
	}
}

// BuildDay merges every export for day into scored stat rows.
func (s *StatsService) BuildDay(ctx context.Context, day time.Time) ([]gamestat.PlayerDayStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.BuildDay")
	defer span.End()

	input := gamestat.DayInput{Day: day}
	var err error
	if input.Even, err = s.sources.ReadSituation(ctx, gamestat.SituationEven, day); err != nil {
		return nil, err
	}
	if input.PowerPlay, err = s.sources.ReadSituation(ctx, gamestat.SituationPowerPlay, day); err != nil {
		return nil, err
	}
	if input.PenaltyKill, err = s.sources.ReadSituation(ctx, gamestat.SituationPenaltyKill, day); err != nil {
		return nil, err
	}
	if input.Goalies, err = s.sources.ReadGoalies(ctx, day); err != nil {
		return nil, err
	}
	if len(input.Goalies) > 0 {
		if input.Results, err = s.readResults(ctx, day); err != nil {
			return nil, err
		}
	}

	rows, err := gamestat.Merge(input, s.rules)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("stats.rows", len(rows)))
	return rows, nil
}

func (s *StatsService) readResults(ctx context.Context, day time.Time) ([]gamestat.GameResult, error) {
	aliases, err := s.sources.ReadTeamAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("read team aliases: %w", err)
	}
	teams := gamestat.NewTeamDirectory(aliases)

	var lines []gamestat.ResultLine
	for _, side := range []gamestat.ResultSide{gamestat.ResultSideHome, gamestat.ResultSideAway} {
		items, err := s.sources.ReadResults(ctx, side, day)
		if err != nil {
			return nil, err
		}
		lines = append(lines, items...)
	}
	return gamestat.ParseResults(lines, teams)
}

// WriteDay builds and overwrites the snapshot for day.
func (s *StatsService) WriteDay(ctx context.Context, day time.Time) (int, error) {
	rows, err := s.BuildDay(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("build stats for %s: %w", daykey.ISO(day), err)
	}
	if err := s.snapshots.WriteDay(ctx, day, rows); err != nil {
		return 0, fmt.Errorf("write stats for %s: %w", daykey.ISO(day), err)
	}
	s.logger.InfoContext(ctx, "stats snapshot written", "date", daykey.ISO(day), "rows", len(rows))
	return len(rows), nil
}

// WriteRange writes one snapshot per date in [start, end]. A date whose
// sources are missing or malformed is skipped and reported, never returned
// as an error.
func (s *StatsService) WriteRange(ctx context.Context, start, end time.Time) (RangeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.WriteRange")
	defer span.End()

	if err := validateRange(start, end); err != nil {
		return RangeReport{}, err
	}

	report := newRangeReport(stepStats, start, end)
	for _, day := range daykey.Range(start, end) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		started := time.Now()
		rows, err := s.WriteDay(ctx, day)
		if err != nil {
			s.logger.WarnContext(ctx, "skip stats date", "date", daykey.ISO(day), "error", err)
		}
		report.add(outcomeFor(stepStats, day, started, rows, err, StepSkipped))
	}

	s.logger.InfoContext(ctx, "stats range done",
		"start", report.Start,
		"end", report.End,
		"written", report.WrittenCount,
		"skipped", report.SkippedCount,
	)
	return report, nil
}

// WriteCombined concatenates every snapshot dated on or before cutoff into
// the combined stats file. A zero cutoff keeps every date.
func (s *StatsService) WriteCombined(ctx context.Context, cutoff time.Time) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.WriteCombined")
	defer span.End()

	rows, err := s.snapshots.ReadAllDays(ctx)
	if err != nil {
		return 0, fmt.Errorf("read stats snapshots: %w", err)
	}
	if !cutoff.IsZero() {
		rows = gamestat.Filter(rows, cutoff)
	}
	if err := s.snapshots.WriteCombined(ctx, rows); err != nil {
		return 0, fmt.Errorf("write combined stats: %w", err)
	}
	s.logger.InfoContext(ctx, "combined stats written", "rows", len(rows))
	return len(rows), nil
}
