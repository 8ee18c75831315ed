package filestore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
)

// SourceDirs locates the raw exports. Empty goalie or result dirs disable
// those inputs.
type SourceDirs struct {
	Even        string
	PowerPlay   string
	PenaltyKill string
	Goalie      string
	ResultsHome string
	ResultsAway string
	TeamMapFile string
}

type SourceRepository struct {
	dirs SourceDirs
}

func NewSourceRepository(dirs SourceDirs) *SourceRepository {
	return &SourceRepository{dirs: dirs}
}

func (r *SourceRepository) ReadSituation(ctx context.Context, situation gamestat.Situation, day time.Time) ([]gamestat.SituationLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var dir string
	switch situation {
	case gamestat.SituationEven:
		dir = r.dirs.Even
	case gamestat.SituationPowerPlay:
		dir = r.dirs.PowerPlay
	case gamestat.SituationPenaltyKill:
		dir = r.dirs.PenaltyKill
	default:
		return nil, fmt.Errorf("unknown situation %q", situation)
	}
	return readCSV[gamestat.SituationLine](dayFile(dir, day))
}

func (r *SourceRepository) ReadGoalies(ctx context.Context, day time.Time) ([]gamestat.GoalieLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.dirs.Goalie == "" {
		return nil, nil
	}
	return readCSV[gamestat.GoalieLine](dayFile(r.dirs.Goalie, day))
}

func (r *SourceRepository) ReadResults(ctx context.Context, side gamestat.ResultSide, day time.Time) ([]gamestat.ResultLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := r.dirs.ResultsHome
	if side == gamestat.ResultSideAway {
		dir = r.dirs.ResultsAway
	}
	if dir == "" {
		return nil, nil
	}
	return readCSV[gamestat.ResultLine](dayFile(dir, day))
}

func (r *SourceRepository) ReadTeamAliases(ctx context.Context) ([]gamestat.TeamAlias, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.dirs.TeamMapFile == "" {
		return nil, nil
	}
	return readCSV[gamestat.TeamAlias](r.dirs.TeamMapFile)
}

func dayFile(dir string, day time.Time) string {
	return filepath.Join(dir, daykey.Format(day)+".csv")
}
