// Package cache wraps snapshot repositories with an in-process read cache.
// Writes go to the wrapped repository first and then drop the affected keys.
package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	basecache "github.com/riskibarqy/hockey-projections/internal/platform/cache"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
)

const combinedKey = "combined"

func dayKey(day time.Time) string {
	return "day:" + daykey.Format(day)
}

// load reads through the store and hands every caller its own copy.
func load[T any](ctx context.Context, store *basecache.Store[[]T], key string, loader func(context.Context) ([]T, error)) ([]T, error) {
	items, err := store.GetOrLoad(ctx, key, func(ctx context.Context) ([]T, error) {
		items, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return append([]T(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]T(nil), items...), nil
}

type StatsRepository struct {
	gamestat.SnapshotRepository
	cache *basecache.Store[[]gamestat.PlayerDayStat]
}

func NewStatsRepository(next gamestat.SnapshotRepository, ttl time.Duration) *StatsRepository {
	return &StatsRepository{
		SnapshotRepository: next,
		cache:              basecache.NewStore[[]gamestat.PlayerDayStat](ttl),
	}
}

func (r *StatsRepository) ReadDay(ctx context.Context, day time.Time) ([]gamestat.PlayerDayStat, error) {
	return load(ctx, r.cache, dayKey(day), func(ctx context.Context) ([]gamestat.PlayerDayStat, error) {
		return r.SnapshotRepository.ReadDay(ctx, day)
	})
}

func (r *StatsRepository) WriteDay(ctx context.Context, day time.Time, rows []gamestat.PlayerDayStat) error {
	if err := r.SnapshotRepository.WriteDay(ctx, day, rows); err != nil {
		return err
	}
	r.cache.Delete(ctx, dayKey(day))
	return nil
}

func (r *StatsRepository) ReadCombined(ctx context.Context) ([]gamestat.PlayerDayStat, error) {
	return load(ctx, r.cache, combinedKey, r.SnapshotRepository.ReadCombined)
}

func (r *StatsRepository) WriteCombined(ctx context.Context, rows []gamestat.PlayerDayStat) error {
	if err := r.SnapshotRepository.WriteCombined(ctx, rows); err != nil {
		return err
	}
	r.cache.Delete(ctx, combinedKey)
	return nil
}

type FeatureRepository struct {
	feature.Repository
	cache *basecache.Store[[]feature.Row]
}

func NewFeatureRepository(next feature.Repository, ttl time.Duration) *FeatureRepository {
	return &FeatureRepository{
		Repository: next,
		cache:      basecache.NewStore[[]feature.Row](ttl),
	}
}

func (r *FeatureRepository) ReadDay(ctx context.Context, day time.Time) ([]feature.Row, error) {
	return load(ctx, r.cache, dayKey(day), func(ctx context.Context) ([]feature.Row, error) {
		return r.Repository.ReadDay(ctx, day)
	})
}

func (r *FeatureRepository) WriteDay(ctx context.Context, day time.Time, rows []feature.Row) error {
	if err := r.Repository.WriteDay(ctx, day, rows); err != nil {
		return err
	}
	r.cache.Delete(ctx, dayKey(day))
	return nil
}

func (r *FeatureRepository) ReadCombined(ctx context.Context) ([]feature.Row, error) {
	return load(ctx, r.cache, combinedKey, r.Repository.ReadCombined)
}

func (r *FeatureRepository) WriteCombined(ctx context.Context, rows []feature.Row) error {
	if err := r.Repository.WriteCombined(ctx, rows); err != nil {
		return err
	}
	r.cache.Delete(ctx, combinedKey)
	return nil
}

type ProjectionRepository struct {
	next  projection.Repository
	cache *basecache.Store[[]projection.Row]
}

func NewProjectionRepository(next projection.Repository, ttl time.Duration) *ProjectionRepository {
	return &ProjectionRepository{next: next, cache: basecache.NewStore[[]projection.Row](ttl)}
}

func (r *ProjectionRepository) ReadDay(ctx context.Context, day time.Time) ([]projection.Row, error) {
	return load(ctx, r.cache, dayKey(day), func(ctx context.Context) ([]projection.Row, error) {
		return r.next.ReadDay(ctx, day)
	})
}

func (r *ProjectionRepository) WriteDay(ctx context.Context, day time.Time, rows []projection.Row) error {
	if err := r.next.WriteDay(ctx, day, rows); err != nil {
		return err
	}
	r.cache.Delete(ctx, dayKey(day))
	return nil
}

var (
	_ gamestat.SnapshotRepository = (*StatsRepository)(nil)
	_ feature.Repository          = (*FeatureRepository)(nil)
	_ projection.Repository       = (*ProjectionRepository)(nil)
)
