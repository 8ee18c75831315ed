package feature

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
)

// winExponent is the pythagorean exponent used to turn implied scores into a
// win probability.
const winExponent = 1.8

// ImpliedWinProb converts an implied team score and game total into a win
// probability. Degenerate inputs yield 0.
func ImpliedWinProb(implied, overUnder float64) float64 {
	opp := overUnder - implied
	if implied <= 0 || opp <= 0 {
		return 0
	}
	r := math.Pow(implied/opp, winExponent)
	return r / (1 + r)
}

// Builder assembles feature rows for one day from stat history and the pool.
type Builder struct {
	estimator          Estimator
	nameMatchThreshold float64
}

func NewBuilder(estimator Estimator, nameMatchThreshold float64) *Builder {
	return &Builder{estimator: estimator, nameMatchThreshold: nameMatchThreshold}
}

// BuildInput is everything needed to build one day's features.
type BuildInput struct {
	Day     time.Time
	Pool    roster.Pool
	History []gamestat.PlayerDayStat
	// Training attaches the realized stat line of Day; players who did not
	// play that day are dropped.
	Training bool
}

type poolPlayer struct {
	name  string
	entry roster.Entry
	group roster.Group
}

func (b *Builder) Build(in BuildInput) ([]Row, error) {
	date := in.Day.Format("06_01_02")
	players := b.resolvePool(in)

	want := map[roster.Group]map[string]struct{}{
		roster.GroupForward: {},
		roster.GroupDefense: {},
		roster.GroupGoalie:  {},
	}
	members := make([]Member, 0, len(players))
	for _, p := range players {
		want[p.group][p.name] = struct{}{}
		if p.group != roster.GroupGoalie {
			members = append(members, Member{
				Name:    p.name,
				Team:    p.entry.Team,
				Group:   p.group,
				RegLine: p.entry.RegLine,
				PPLine:  p.entry.PPLine,
			})
		}
	}

	rates := make(map[roster.Group]map[string]RegressedRate, 3)
	for _, group := range []roster.Group{roster.GroupForward, roster.GroupDefense} {
		groupRates, err := b.estimator.Estimate(in.History, in.Day, group, want[group])
		if err != nil {
			return nil, fmt.Errorf("estimate %s rates: %w", group, err)
		}
		rates[group] = groupRates
	}
	// Goalies share nothing with skaters, so a goalie without a league
	// reference only drops goalie rows.
	goalieRates, err := b.estimator.Estimate(in.History, in.Day, roster.GroupGoalie, want[roster.GroupGoalie])
	switch {
	case errors.Is(err, ErrNoLeagueReference):
		goalieRates = nil
	case err != nil:
		return nil, fmt.Errorf("estimate %s rates: %w", roster.GroupGoalie, err)
	}
	rates[roster.GroupGoalie] = goalieRates

	skaterRates := make(map[string]RegressedRate, len(rates[roster.GroupForward])+len(rates[roster.GroupDefense]))
	for name, rate := range rates[roster.GroupForward] {
		skaterRates[name] = rate
	}
	for name, rate := range rates[roster.GroupDefense] {
		skaterRates[name] = rate
	}

	neighbors := NewNeighbors(members)
	lineMates := make(map[string]map[string]LineMateStat, len(SkaterRateColumns))
	for _, column := range SkaterRateColumns {
		lineMates[column] = LineMates(members, neighbors, skaterRates, column)
	}

	var realized map[string]gamestat.PlayerDayStat
	if in.Training {
		realized = make(map[string]gamestat.PlayerDayStat)
		for _, row := range in.History {
			if row.Date == date {
				realized[row.Name+"|"+string(roster.GroupOf(row.Position))] = row
			}
		}
	}

	out := make([]Row, 0, len(players))
	for _, p := range players {
		rate, ok := rates[p.group][p.name]
		if !ok {
			continue
		}

		row := Row{
			Date:             date,
			Name:             p.name,
			Position:         p.entry.Position,
			Team:             p.entry.Team,
			Opponent:         p.entry.Opponent,
			GP:               rate.GP,
			MeanEvTOI:        rate.MeanEvTOI,
			MeanTOI:          rate.MeanTOI,
			RegLine:          p.entry.RegLine,
			PPLine:           p.entry.PPLine,
			ImpliedTeamScore: float64(p.entry.ImpliedTeamScore),
			OverUnder:        float64(p.entry.OverUnder),
			PPGProjection:    float64(p.entry.PPGProjection),
			Salary:           float64(p.entry.Salary),
		}
		if row.OverUnder > 0 {
			row.ImpliedOppScore = row.OverUnder - row.ImpliedTeamScore
		}
		row.ImpliedWinProb = ImpliedWinProb(row.ImpliedTeamScore, row.OverUnder)

		for column, value := range rate.Rates {
			row.setColumn(column, value)
		}
		if p.group != roster.GroupGoalie {
			for _, column := range SkaterRateColumns {
				stat := lineMates[column][p.name]
				row.setColumn(LinePrefix+column, stat.Line)
				row.setColumn(PowerPlayPrefix+column, stat.PowerPlay)
			}
		}

		if in.Training {
			actual, ok := realized[p.name+"|"+string(p.group)]
			if !ok {
				continue
			}
			row.Training = true
			row.FPPer60 = actual.FPPer60
			row.FP = actual.FP
			row.TOI = actual.TOI
			if row.Salary > 0 {
				row.Value = row.FP / row.Salary * 1000
			}
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out, nil
}

// resolvePool maps pool names onto stat-history spellings when name matching
// is enabled.
func (b *Builder) resolvePool(in BuildInput) []poolPlayer {
	teamByName := make(map[string]string)
	limit := in.Day.Format("06_01_02")
	for _, row := range in.History {
		if row.Date <= limit {
			teamByName[row.Name] = row.Team
		}
	}
	resolver := roster.NewNameResolver(b.nameMatchThreshold, teamByName)

	taken := make(map[string]struct{}, len(in.Pool.Entries))
	out := make([]poolPlayer, 0, len(in.Pool.Entries))
	for _, entry := range in.Pool.Entries {
		name := resolver.Resolve(entry.Name(), entry.Team)
		if _, dup := taken[name]; dup {
			name = entry.Name()
		}
		taken[name] = struct{}{}
		out = append(out, poolPlayer{name: name, entry: entry, group: entry.Group()})
	}
	return out
}
