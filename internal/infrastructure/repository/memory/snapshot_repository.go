package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
)

type snapshotStore[T any] struct {
	mu          sync.RWMutex
	days        map[string][]T
	combined    []T
	hasCombined bool
	less        func(a, b T) bool
}

func newSnapshotStore[T any](less func(a, b T) bool) *snapshotStore[T] {
	return &snapshotStore[T]{days: make(map[string][]T), less: less}
}

func (s *snapshotStore[T]) WriteDay(_ context.Context, day time.Time, rows []T) error {
	out := append([]T(nil), rows...)
	if s.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.less(out[i], out[j]) })
	}

	s.mu.Lock()
	s.days[daykey.Format(day)] = out
	s.mu.Unlock()
	return nil
}

func (s *snapshotStore[T]) ReadDay(_ context.Context, day time.Time) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.days[daykey.Format(day)]
	if !ok {
		return nil, fmt.Errorf("%w: no snapshot for %s", gamestat.ErrSourceMissing, daykey.Format(day))
	}
	return append([]T(nil), rows...), nil
}

func (s *snapshotStore[T]) ListDays(_ context.Context) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]time.Time, 0, len(s.days))
	for token := range s.days {
		day, err := daykey.Parse(token)
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (s *snapshotStore[T]) ReadAllDays(ctx context.Context) ([]T, error) {
	days, err := s.ListDays(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, day := range days {
		out = append(out, s.days[daykey.Format(day)]...)
	}
	if s.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.less(out[i], out[j]) })
	}
	return out, nil
}

func (s *snapshotStore[T]) WriteCombined(_ context.Context, rows []T) error {
	s.mu.Lock()
	s.combined = append([]T(nil), rows...)
	s.hasCombined = true
	s.mu.Unlock()
	return nil
}

func (s *snapshotStore[T]) ReadCombined(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasCombined {
		return nil, fmt.Errorf("%w: combined file not written", gamestat.ErrSourceMissing)
	}
	return append([]T(nil), s.combined...), nil
}

// StatsRepository keeps stat snapshots in memory.
type StatsRepository struct {
	*snapshotStore[gamestat.PlayerDayStat]
}

func NewStatsRepository() *StatsRepository {
	return &StatsRepository{snapshotStore: newSnapshotStore(gamestat.Less)}
}

// FeatureRepository keeps feature snapshots in memory.
type FeatureRepository struct {
	*snapshotStore[feature.Row]
}

func NewFeatureRepository() *FeatureRepository {
	return &FeatureRepository{snapshotStore: newSnapshotStore(feature.Less)}
}

// ProjectionRepository keeps projection files in memory, in rank order.
type ProjectionRepository struct {
	*snapshotStore[projection.Row]
}

func NewProjectionRepository() *ProjectionRepository {
	return &ProjectionRepository{snapshotStore: newSnapshotStore[projection.Row](nil)}
}

// ProjectionArchive is an in-memory projection.Archive.
type ProjectionArchive struct {
	*snapshotStore[projection.Row]
}

func NewProjectionArchive() *ProjectionArchive {
	return &ProjectionArchive{snapshotStore: newSnapshotStore[projection.Row](nil)}
}

func (a *ProjectionArchive) ReplaceForDate(ctx context.Context, day time.Time, rows []projection.Row) error {
	return a.WriteDay(ctx, day, rows)
}

func (a *ProjectionArchive) ListByDate(ctx context.Context, day time.Time) ([]projection.Row, error) {
	rows, err := a.ReadDay(ctx, day)
	if err != nil {
		return nil, nil
	}
	return rows, nil
}
