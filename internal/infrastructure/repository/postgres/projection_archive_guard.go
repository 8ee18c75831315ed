package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
	"github.com/riskibarqy/hockey-projections/internal/platform/resilience"
)

// GuardedProjectionArchive fails fast while the archive database keeps
// erroring, so the daily job does not stall on every export.
type GuardedProjectionArchive struct {
	next    projection.Archive
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewGuardedProjectionArchive(next projection.Archive, cfg resilience.CircuitBreakerConfig, logger *logging.Logger) projection.Archive {
	if !cfg.Enabled {
		return next
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GuardedProjectionArchive{
		next:    next,
		breaker: resilience.NewCircuitBreaker(cfg),
		logger:  logger,
	}
}

func (g *GuardedProjectionArchive) ReplaceForDate(ctx context.Context, day time.Time, rows []projection.Row) error {
	return g.do(ctx, "replace", func(ctx context.Context) error {
		return g.next.ReplaceForDate(ctx, day, rows)
	})
}

func (g *GuardedProjectionArchive) ListByDate(ctx context.Context, day time.Time) ([]projection.Row, error) {
	var out []projection.Row
	err := g.do(ctx, "list", func(ctx context.Context) error {
		rows, err := g.next.ListByDate(ctx, day)
		out = rows
		return err
	})
	return out, err
}

func (g *GuardedProjectionArchive) do(ctx context.Context, op string, fn func(context.Context) error) error {
	err := g.breaker.Do(ctx, fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		g.logger.WarnContext(ctx, "projection archive circuit open", "op", op, "state", g.breaker.State())
		return fmt.Errorf("projection archive is temporarily unavailable: %w", err)
	}
	return err
}
