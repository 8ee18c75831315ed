package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	projectionmock "github.com/riskibarqy/hockey-projections/internal/mocks/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
	"github.com/riskibarqy/hockey-projections/internal/platform/resilience"
	"github.com/stretchr/testify/mock"
)

func TestGuardedProjectionArchive_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection refused")
	next := projectionmock.NewArchive(t)
	next.On("ReplaceForDate", mock.Anything, mock.Anything, mock.Anything).Return(dbErr).Times(2)

	guarded := NewGuardedProjectionArchive(next, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	}, logging.NewNop())

	for i := 0; i < 2; i++ {
		if err := guarded.ReplaceForDate(context.Background(), archiveDay(), nil); !errors.Is(err, dbErr) {
			t.Fatalf("call %d: expected db error, got %v", i, err)
		}
	}

	err := guarded.ReplaceForDate(context.Background(), archiveDay(), nil)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestGuardedProjectionArchive_ListPassesRows(t *testing.T) {
	t.Parallel()

	next := projectionmock.NewArchive(t)
	next.On("ListByDate", mock.Anything, archiveDay()).Return([]projection.Row{{ProjFP: 3}}, nil).Once()

	guarded := NewGuardedProjectionArchive(next, resilience.DefaultCircuitBreakerConfig(), nil)
	rows, err := guarded.ListByDate(context.Background(), archiveDay())
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(rows) != 1 || rows[0].ProjFP != 3 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestGuardedProjectionArchive_DisabledReturnsNext(t *testing.T) {
	t.Parallel()

	next := projectionmock.NewArchive(t)
	if got := NewGuardedProjectionArchive(next, resilience.CircuitBreakerConfig{}, nil); got != projection.Archive(next) {
		t.Fatalf("expected disabled guard to return the wrapped archive")
	}
}
