package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
)

// DayExports holds the raw exports of one date.
type DayExports struct {
	Even        []gamestat.SituationLine
	PowerPlay   []gamestat.SituationLine
	PenaltyKill []gamestat.SituationLine
	Goalies     []gamestat.GoalieLine
	Home        []gamestat.ResultLine
	Away        []gamestat.ResultLine
}

// SourceRepository serves raw exports from memory. Dates never added read
// as missing sources.
type SourceRepository struct {
	mu      sync.RWMutex
	days    map[string]DayExports
	aliases []gamestat.TeamAlias
}

func NewSourceRepository(aliases []gamestat.TeamAlias) *SourceRepository {
	return &SourceRepository{
		days:    make(map[string]DayExports),
		aliases: append([]gamestat.TeamAlias(nil), aliases...),
	}
}

func (r *SourceRepository) Put(day time.Time, exports DayExports) {
	r.mu.Lock()
	r.days[daykey.Format(day)] = exports
	r.mu.Unlock()
}

func (r *SourceRepository) day(day time.Time) (DayExports, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exports, ok := r.days[daykey.Format(day)]
	if !ok {
		return DayExports{}, fmt.Errorf("%w: no exports for %s", gamestat.ErrSourceMissing, daykey.Format(day))
	}
	return exports, nil
}

func (r *SourceRepository) ReadSituation(_ context.Context, situation gamestat.Situation, day time.Time) ([]gamestat.SituationLine, error) {
	exports, err := r.day(day)
	if err != nil {
		return nil, err
	}
	switch situation {
	case gamestat.SituationPowerPlay:
		return exports.PowerPlay, nil
	case gamestat.SituationPenaltyKill:
		return exports.PenaltyKill, nil
	default:
		return exports.Even, nil
	}
}

func (r *SourceRepository) ReadGoalies(_ context.Context, day time.Time) ([]gamestat.GoalieLine, error) {
	exports, err := r.day(day)
	if err != nil {
		return nil, err
	}
	return exports.Goalies, nil
}

func (r *SourceRepository) ReadResults(_ context.Context, side gamestat.ResultSide, day time.Time) ([]gamestat.ResultLine, error) {
	exports, err := r.day(day)
	if err != nil {
		return nil, err
	}
	if side == gamestat.ResultSideAway {
		return exports.Away, nil
	}
	return exports.Home, nil
}

func (r *SourceRepository) ReadTeamAliases(_ context.Context) ([]gamestat.TeamAlias, error) {
	return append([]gamestat.TeamAlias(nil), r.aliases...), nil
}

// PoolRepository serves player pools from memory.
type PoolRepository struct {
	mu    sync.RWMutex
	pools map[string][]roster.Entry
}

func NewPoolRepository() *PoolRepository {
	return &PoolRepository{pools: make(map[string][]roster.Entry)}
}

func (r *PoolRepository) Put(day time.Time, entries []roster.Entry) {
	r.mu.Lock()
	r.pools[daykey.Format(day)] = append([]roster.Entry(nil), entries...)
	r.mu.Unlock()
}

func (r *PoolRepository) ReadPool(_ context.Context, day time.Time) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, ok := r.pools[daykey.Format(day)]
	if !ok {
		return nil, fmt.Errorf("%w: no player pool for %s", gamestat.ErrSourceMissing, daykey.ISO(day))
	}
	return append([]roster.Entry(nil), entries...), nil
}
