package usecase

import (
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
	"github.com/riskibarqy/hockey-projections/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
)

func marchDay(d int) time.Time {
	return time.Date(2021, time.March, d, 0, 0, 0, 0, time.UTC)
}

type skaterSpec struct {
	first, last string
	team, opp   string
	position    string
	regLine     int
	ppLine      int
	evTOI       float64
	shots       float64
	ixG         float64
	salary      float64
}

var fixtureSkaters = []skaterSpec{
	{"Alex", "Ovechkin", "WSH", "BOS", "L", 1, 1, 16, 4, 0.6, 8000},
	{"Nicklas", "Backstrom", "WSH", "BOS", "C", 1, 1, 17, 2, 0.3, 6200},
	{"Tom", "Wilson", "WSH", "BOS", "R", 1, 1, 15, 2, 0.35, 5600},
	{"Lars", "Eller", "WSH", "BOS", "C", 2, 0, 13, 1, 0.15, 4000},
	{"John", "Carlson", "WSH", "BOS", "D", 1, 1, 21, 3, 0.2, 6500},
	{"Dmitry", "Orlov", "WSH", "BOS", "D", 1, 0, 20, 1, 0.1, 4300},
	{"Brad", "Marchand", "BOS", "WSH", "L", 1, 1, 16, 3, 0.5, 7800},
	{"Patrice", "Bergeron", "BOS", "WSH", "C", 1, 1, 17, 3, 0.45, 7000},
	{"Charlie", "McAvoy", "BOS", "WSH", "D", 1, 1, 22, 2, 0.15, 5900},
	{"Matt", "Grzelcyk", "BOS", "WSH", "D", 1, 0, 19, 1, 0.08, 4100},
}

// exportsFor produces deterministic but day-varying exports for the fixture
// roster. Every third skater sits out on odd days.
func exportsFor(day time.Time) memory.DayExports {
	d := float64(day.Day())
	var exports memory.DayExports
	for i, s := range fixtureSkaters {
		if day.Day()%2 == 1 && i%3 == 2 {
			continue
		}
		swing := float64((i+day.Day())%3) - 1
		name := s.first + " " + s.last
		exports.Even = append(exports.Even, gamestat.SituationLine{
			Player:   name,
			Team:     s.team,
			Position: s.position,
			TOI:      gamestat.Count(s.evTOI + swing),
			Goals:    gamestat.Count((i + day.Day()) % 2),
			Assists:  gamestat.Count((i + 2*day.Day()) % 3 / 2),
			Shots:    gamestat.Count(s.shots + swing + 1),
			Blocks:   gamestat.Count(float64(i%2) + d/10),
			IxG:      gamestat.Count(s.ixG * (1 + swing/4)),
		})
		if s.ppLine > 0 {
			exports.PowerPlay = append(exports.PowerPlay, gamestat.SituationLine{
				Player:   name,
				Team:     s.team,
				Position: s.position,
				TOI:      gamestat.Count(2 + swing/2),
				Shots:    gamestat.Count(1),
				IxG:      gamestat.Count(s.ixG / 2),
			})
		}
	}
	return exports
}

func poolFor(day time.Time) []roster.Entry {
	out := make([]roster.Entry, 0, len(fixtureSkaters))
	for _, s := range fixtureSkaters {
		entry := roster.Entry{
			FirstName:        s.first,
			LastName:         s.last,
			Team:             s.team,
			Opponent:         s.opp,
			Position:         s.position,
			RegLine:          roster.Line{Number: s.regLine, Valid: true},
			ImpliedTeamScore: 3.1,
			OverUnder:        6,
			Salary:           roster.Amount(s.salary),
		}
		if s.team == "BOS" {
			entry.ImpliedTeamScore = 2.9
		}
		if s.ppLine > 0 {
			entry.PPLine = roster.Line{Number: s.ppLine, Valid: true}
		}
		out = append(out, entry)
	}
	return out
}

type pipeline struct {
	sources     *memory.SourceRepository
	pools       *memory.PoolRepository
	stats       *memory.StatsRepository
	features    *memory.FeatureRepository
	projections *memory.ProjectionRepository
	archive     *memory.ProjectionArchive

	statsSvc      *StatsService
	featureSvc    *FeatureService
	projectionSvc *ProjectionService
	daily         *DailyService
}

// newPipeline seeds exports for days [first, last] and pools for
// [first, last+1].
func newPipeline(first, last int, skip ...int) *pipeline {
	p := &pipeline{
		sources:     memory.NewSourceRepository(nil),
		pools:       memory.NewPoolRepository(),
		stats:       memory.NewStatsRepository(),
		features:    memory.NewFeatureRepository(),
		projections: memory.NewProjectionRepository(),
		archive:     memory.NewProjectionArchive(),
	}
	skipped := make(map[int]struct{}, len(skip))
	for _, d := range skip {
		skipped[d] = struct{}{}
	}
	for d := first; d <= last; d++ {
		if _, ok := skipped[d]; ok {
			continue
		}
		p.sources.Put(marchDay(d), exportsFor(marchDay(d)))
	}
	for d := first; d <= last+1; d++ {
		p.pools.Put(marchDay(d), poolFor(marchDay(d)))
	}

	logger := logging.NewNop()
	p.statsSvc = NewStatsService(p.sources, p.stats, gamestat.DefaultScoringRules(), logger)
	p.featureSvc = NewFeatureService(p.stats, p.pools, p.features, feature.NewBuilder(feature.NewEstimator(30, 0.75), 0), logger)
	p.projectionSvc = NewProjectionService(p.features, p.projections, p.archive, projection.Config{
		Kind:  projection.KindRidge,
		Alpha: projection.DefaultRidgeAlpha,
	}, logger)
	p.daily = NewDailyService(p.statsSvc, p.featureSvc, p.projectionSvc, logger)
	return p
}
