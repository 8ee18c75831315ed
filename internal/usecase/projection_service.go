package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// ProjectionService fits the skater models on the training file and
// projects one day's feature snapshot.
type ProjectionService struct {
	features    feature.Repository
	projections projection.Repository
	archive     projection.Archive
	cfg         projection.Config
	logger      *logging.Logger
}

// NewProjectionService wires the service. archive may be nil.
func NewProjectionService(
	features feature.Repository,
	projections projection.Repository,
	archive projection.Archive,
	cfg projection.Config,
	logger *logging.Logger,
) *ProjectionService {
	if logger == nil {
		logger = logging.Default()
	}
	if len(cfg.ForwardFeatures) == 0 {
		cfg.ForwardFeatures = projection.DefaultForwardFeatures
	}
	if len(cfg.DefenseFeatures) == 0 {
		cfg.DefenseFeatures = projection.DefaultDefenseFeatures
	}
	return &ProjectionService{
		features:    features,
		projections: projections,
		archive:     archive,
		cfg:         cfg,
		logger:      logger.Named(stepProjections),
	}
}

// Project computes projections for day without writing them.
func (s *ProjectionService) Project(ctx context.Context, day time.Time) (projection.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.Project")
	defer span.End()

	training, err := s.features.ReadCombined(ctx)
	if err != nil {
		return projection.Result{}, fmt.Errorf("read training features: %w", err)
	}
	today, err := s.features.ReadDay(ctx, day)
	if err != nil {
		return projection.Result{}, fmt.Errorf("read features for %s: %w", daykey.ISO(day), err)
	}

	result, err := projection.Project(training, today, s.cfg)
	if err != nil {
		return projection.Result{}, fmt.Errorf("project %s: %w", daykey.ISO(day), err)
	}
	span.SetAttributes(
		attribute.Int("projection.training_rows", len(training)),
		attribute.Int("projection.rows", len(result.Rows)),
	)
	s.logger.InfoContext(ctx, "models fitted",
		"date", daykey.ISO(day),
		"kind", string(s.cfg.Kind),
		"forward_samples", result.Forward.Samples,
		"forward_r2", result.Forward.RSquared,
		"defense_samples", result.Defense.Samples,
		"defense_r2", result.Defense.RSquared,
	)
	return result, nil
}

// Export projects day and overwrites its projection file. When an archive
// is configured the day's archived rows are replaced as well.
func (s *ProjectionService) Export(ctx context.Context, day time.Time) (projection.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.Export")
	defer span.End()

	result, err := s.Project(ctx, day)
	if err != nil {
		return projection.Result{}, err
	}
	if err := s.projections.WriteDay(ctx, day, result.Rows); err != nil {
		return projection.Result{}, fmt.Errorf("write projections for %s: %w", daykey.ISO(day), err)
	}
	if s.archive != nil {
		if err := s.archive.ReplaceForDate(ctx, day, result.Rows); err != nil {
			return projection.Result{}, fmt.Errorf("%w: archive projections for %s: %v", ErrDependencyUnavailable, daykey.ISO(day), err)
		}
	}
	s.logger.InfoContext(ctx, "projections written", "date", daykey.ISO(day), "rows", len(result.Rows), "archived", s.archive != nil)
	return result, nil
}

// Get returns stored projections for day, best first.
func (s *ProjectionService) Get(ctx context.Context, day time.Time) ([]projection.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.Get")
	defer span.End()

	rows, err := s.projections.ReadDay(ctx, day)
	if err == nil {
		return rows, nil
	}
	if !isSourceMissing(err) {
		return nil, fmt.Errorf("read projections for %s: %w", daykey.ISO(day), err)
	}
	if s.archive != nil {
		archived, archiveErr := s.archive.ListByDate(ctx, day)
		if archiveErr != nil {
			return nil, fmt.Errorf("%w: read archived projections for %s: %v", ErrDependencyUnavailable, daykey.ISO(day), archiveErr)
		}
		if len(archived) > 0 {
			return archived, nil
		}
	}
	return nil, fmt.Errorf("%w: no projections for %s", ErrNotFound, daykey.ISO(day))
}
