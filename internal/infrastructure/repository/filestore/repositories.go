package filestore

import (
	"context"
	"path/filepath"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
)

type StatsRepository struct {
	snapshotStore[gamestat.PlayerDayStat]
}

func NewStatsRepository(dir, combinedFile string, readWorkers int) *StatsRepository {
	return &StatsRepository{snapshotStore[gamestat.PlayerDayStat]{
		dir:          dir,
		combinedFile: combinedFile,
		readWorkers:  readWorkers,
		less:         gamestat.Less,
	}}
}

type FeatureRepository struct {
	snapshotStore[feature.Row]
}

func NewFeatureRepository(dir, combinedFile string, readWorkers int) *FeatureRepository {
	return &FeatureRepository{snapshotStore[feature.Row]{
		dir:          dir,
		combinedFile: combinedFile,
		readWorkers:  readWorkers,
		less:         feature.Less,
	}}
}

// ProjectionRepository writes one ranked projection file per day. Row order is
// kept as given.
type ProjectionRepository struct {
	store snapshotStore[projection.Row]
}

func NewProjectionRepository(dir string) *ProjectionRepository {
	return &ProjectionRepository{store: snapshotStore[projection.Row]{dir: dir}}
}

func (r *ProjectionRepository) WriteDay(ctx context.Context, day time.Time, rows []projection.Row) error {
	return r.store.WriteDay(ctx, day, rows)
}

func (r *ProjectionRepository) ReadDay(ctx context.Context, day time.Time) ([]projection.Row, error) {
	return r.store.ReadDay(ctx, day)
}

// PoolRepository reads DFF_NHL_cheatsheet_YYYY-MM-DD.csv files.
type PoolRepository struct {
	dir string
}

func NewPoolRepository(dir string) *PoolRepository {
	return &PoolRepository{dir: dir}
}

func (r *PoolRepository) ReadPool(ctx context.Context, day time.Time) ([]roster.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readCSV[roster.Entry](filepath.Join(r.dir, "DFF_NHL_cheatsheet_"+daykey.ISO(day)+".csv"))
}
