package feature

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
)

const (
	DefaultSampleSize       = 30
	DefaultRegressionScalar = 0.75
)

// Shrink pulls an observed value toward a league reference:
//
//	(gp*own + scalar*(n-gp)*league) / n
func Shrink(own, league float64, gp, sampleSize int, scalar float64) float64 {
	if sampleSize <= 0 {
		return own
	}
	if gp >= sampleSize {
		return own
	}
	n := float64(sampleSize)
	return (float64(gp)*own + scalar*(n-float64(gp))*league) / n
}

// Estimator computes regressed rates from rolling stat windows.
type Estimator struct {
	SampleSize       int
	RegressionScalar float64
}

func NewEstimator(sampleSize int, scalar float64) Estimator {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return Estimator{SampleSize: sampleSize, RegressionScalar: scalar}
}

type sampler struct {
	columns []string
	values  func(gamestat.PlayerDayStat) []float64
	base    func(gamestat.PlayerDayStat) float64
}

var skaterSampler = sampler{
	columns: SkaterRateColumns,
	values: func(s gamestat.PlayerDayStat) []float64 {
		return []float64{s.EvG, s.EvA, s.EvSH, s.EvBkS, s.EvIxG}
	},
	base: func(s gamestat.PlayerDayStat) float64 { return s.EvTOI },
}

var goalieSampler = sampler{
	columns: GoalieRateColumns,
	values: func(s gamestat.PlayerDayStat) []float64 {
		return []float64{s.SA, s.SV, s.GA, s.XGA, s.GSAA}
	},
	base: func(s gamestat.PlayerDayStat) float64 { return s.TOI },
}

func samplerFor(group roster.Group) sampler {
	if group == roster.GroupGoalie {
		return goalieSampler
	}
	return skaterSampler
}

// observation holds the unshrunk window summary of one player. The last two
// entries of values are mean base TOI and mean total TOI.
type observation struct {
	name     string
	position string
	gp       int
	zeroTOI  bool
	values   []float64
}

// Estimate returns regressed rates as of asOf for every name in want that has
// history in group. The window is the last SampleSize rows dated on or before
// asOf. The league reference is the GP-weighted mean of every other player in
// the group with non-zero ice time.
func (e Estimator) Estimate(history []gamestat.PlayerDayStat, asOf time.Time, group roster.Group, want map[string]struct{}) (map[string]RegressedRate, error) {
	smp := samplerFor(group)
	observations := e.observe(history, asOf, group, smp)
	width := len(smp.columns)

	// Accumulate the GP-weighted league totals once, then remove each player.
	weightedSum := make([]float64, width)
	var totalWeight float64
	for _, obs := range observations {
		if obs.zeroTOI {
			continue
		}
		w := float64(obs.gp)
		for i, v := range obs.values[:width] {
			weightedSum[i] += w * v
		}
		totalWeight += w
	}

	out := make(map[string]RegressedRate, len(want))
	for _, obs := range observations {
		if _, ok := want[obs.name]; !ok {
			continue
		}

		league := make([]float64, width)
		if obs.gp < e.SampleSize {
			weight := totalWeight
			if !obs.zeroTOI {
				weight -= float64(obs.gp)
			}
			if weight <= 0 {
				return nil, fmt.Errorf("%w: group=%s player=%s date=%s", ErrNoLeagueReference, group, obs.name, asOf.Format("06_01_02"))
			}
			for i := range league {
				sum := weightedSum[i]
				if !obs.zeroTOI {
					sum -= float64(obs.gp) * obs.values[i]
				}
				league[i] = sum / weight
			}
		}

		rate := RegressedRate{
			Name:     obs.name,
			Position: obs.position,
			Group:    group,
			GP:       obs.gp,
			ZeroTOI:  obs.zeroTOI,
			Rates:    make(map[string]float64, len(smp.columns)),
		}
		for i, column := range smp.columns {
			rate.Rates[column] = Shrink(obs.values[i], league[i], obs.gp, e.SampleSize, e.RegressionScalar)
		}
		// Ice time stays the raw window mean; only rates are shrunk.
		rate.MeanEvTOI = obs.values[width]
		rate.MeanTOI = obs.values[width+1]
		out[obs.name] = rate
	}
	return out, nil
}

func (e Estimator) observe(history []gamestat.PlayerDayStat, asOf time.Time, group roster.Group, smp sampler) []observation {
	limit := asOf.Format("06_01_02")
	byName := make(map[string][]gamestat.PlayerDayStat)
	for _, row := range history {
		if row.Date > limit || roster.GroupOf(row.Position) != group {
			continue
		}
		byName[row.Name] = append(byName[row.Name], row)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]observation, 0, len(names))
	for _, name := range names {
		rows := byName[name]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
		if len(rows) > e.SampleSize {
			rows = rows[len(rows)-e.SampleSize:]
		}

		width := len(smp.columns)
		series := make([][]float64, width)
		base := make([]float64, len(rows))
		total := make([]float64, len(rows))
		for i := range series {
			series[i] = make([]float64, len(rows))
		}
		for j, row := range rows {
			for i, v := range smp.values(row) {
				series[i][j] = v
			}
			base[j] = smp.base(row)
			total[j] = row.TOI
		}

		meanBase := stat.Mean(base, nil)
		obs := observation{
			name:     name,
			position: rows[len(rows)-1].Position,
			gp:       len(rows),
			zeroTOI:  meanBase <= 0,
			values:   make([]float64, width+2),
		}
		for i := range series {
			obs.values[i] = gamestat.PerSixty(stat.Mean(series[i], nil), meanBase)
		}
		obs.values[width] = meanBase
		obs.values[width+1] = stat.Mean(total, nil)
		out = append(out, obs)
	}
	return out
}
