package gamestat

import (
	"context"
	"time"
)

// SourceRepository reads the raw third-party exports for a day.
// Missing files are reported with an error matching ErrSourceMissing.
type SourceRepository interface {
	ReadSituation(ctx context.Context, situation Situation, day time.Time) ([]SituationLine, error)
	ReadGoalies(ctx context.Context, day time.Time) ([]GoalieLine, error)
	ReadResults(ctx context.Context, side ResultSide, day time.Time) ([]ResultLine, error)
	ReadTeamAliases(ctx context.Context) ([]TeamAlias, error)
}

type SnapshotRepository interface {
	WriteDay(ctx context.Context, day time.Time, rows []PlayerDayStat) error
	ReadDay(ctx context.Context, day time.Time) ([]PlayerDayStat, error)
	ListDays(ctx context.Context) ([]time.Time, error)
	ReadAllDays(ctx context.Context) ([]PlayerDayStat, error)
	WriteCombined(ctx context.Context, rows []PlayerDayStat) error
	ReadCombined(ctx context.Context) ([]PlayerDayStat, error)
}
