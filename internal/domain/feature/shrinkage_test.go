package feature

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
)

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func skaterDays(name, position string, start time.Time, games int, evTOI, ixG float64) []gamestat.PlayerDayStat {
	out := make([]gamestat.PlayerDayStat, 0, games)
	for i := 0; i < games; i++ {
		day := start.AddDate(0, 0, i)
		out = append(out, gamestat.PlayerDayStat{
			Date:     day.Format("06_01_02"),
			Team:     "WSH",
			Name:     name,
			Position: position,
			EvTOI:    evTOI,
			EvIxG:    ixG,
			EvSH:     2,
			TOI:      evTOI + 2,
		})
	}
	return out
}

func TestShrinkProperties(t *testing.T) {
	t.Parallel()

	const n = 30
	own, league, scalar := 3.0, 1.0, 0.75

	if got := Shrink(own, league, n, n, scalar); got != own {
		t.Fatalf("GP==N should return raw rate, got %v", got)
	}
	if got := Shrink(own, league, 0, n, scalar); !closeTo(got, scalar*league) {
		t.Fatalf("GP==0 should return scalar*league, got %v", got)
	}

	prevDistance := math.Inf(1)
	for gp := 0; gp <= n; gp++ {
		distance := math.Abs(Shrink(own, league, gp, n, scalar) - own)
		if distance > prevDistance+1e-12 {
			t.Fatalf("distance to raw rate increased at gp=%d", gp)
		}
		prevDistance = distance
	}
}

func TestEstimateFullWindowMatchesRawRate(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	history := append(skaterDays("Veteran", "C", start, 40, 15, 0.5), skaterDays("Other", "L", start, 10, 12, 0.2)...)
	asOf := start.AddDate(0, 0, 39)

	rates, err := NewEstimator(30, 0.75).Estimate(history, asOf, roster.GroupForward, map[string]struct{}{"Veteran": {}})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	vet, ok := rates["Veteran"]
	if !ok {
		t.Fatalf("expected veteran rate")
	}
	if vet.GP != 30 {
		t.Fatalf("window should truncate to 30 games, got %d", vet.GP)
	}
	if got := vet.Rates[ColEvIxG]; !closeTo(got, 0.5/15*60) {
		t.Fatalf("unexpected evixG/60: %v", got)
	}
	if _, ok := rates["Other"]; ok {
		t.Fatalf("players outside the pool must not be returned")
	}
}

func TestEstimateLeagueReferenceExcludesSelf(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	var history []gamestat.PlayerDayStat
	history = append(history, skaterDays("Rookie", "C", start, 10, 15, 1.5)...)
	history = append(history, skaterDays("A", "C", start, 20, 15, 0.25)...)
	history = append(history, skaterDays("B", "R", start, 10, 15, 0.5)...)
	history = append(history, skaterDays("Dman", "D", start, 30, 20, 5)...)
	asOf := start.AddDate(0, 0, 30)

	rates, err := NewEstimator(30, 0.75).Estimate(history, asOf, roster.GroupForward, map[string]struct{}{"Rookie": {}})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	own := 1.5 / 15 * 60
	league := (20*(0.25/15*60) + 10*(0.5/15*60)) / 30
	want := (10*own + 0.75*20*league) / 30
	if got := rates["Rookie"].Rates[ColEvIxG]; !closeTo(got, want) {
		t.Fatalf("unexpected regressed rate: got=%v want=%v", got, want)
	}
}

func TestEstimateKeepsRawMeanTimeOnIce(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	var history []gamestat.PlayerDayStat
	history = append(history, skaterDays("Rookie", "C", start.AddDate(0, 0, 9), 1, 18, 0.5)...)
	history = append(history, skaterDays("Vet", "C", start, 10, 18, 0.3)...)
	history = append(history, skaterDays("Grinder", "L", start, 10, 18, 0.1)...)

	rates, err := NewEstimator(30, 0.75).Estimate(history, start.AddDate(0, 0, 10), roster.GroupForward, map[string]struct{}{"Rookie": {}})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	rookie := rates["Rookie"]
	if rookie.GP != 1 {
		t.Fatalf("expected one game, got %d", rookie.GP)
	}
	if rookie.MeanEvTOI != 18 || rookie.MeanTOI != 20 {
		t.Fatalf("ice time should not be shrunk: evTOI=%v TOI=%v", rookie.MeanEvTOI, rookie.MeanTOI)
	}
	if rookie.Rates[ColEvIxG] >= 0.5/18*60 {
		t.Fatalf("rates should still be shrunk, got %v", rookie.Rates[ColEvIxG])
	}
}

func TestEstimateWindowIncludesAsOfDay(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	history := append(skaterDays("P", "C", start, 3, 10, 1), skaterDays("Q", "C", start, 3, 10, 1)...)

	rates, err := NewEstimator(30, 0.75).Estimate(history, start.AddDate(0, 0, 1), roster.GroupForward, map[string]struct{}{"P": {}})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if rates["P"].GP != 2 {
		t.Fatalf("expected 2 games on or before as-of day, got %d", rates["P"].GP)
	}
}

func TestEstimateEmptyLeagueReference(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	history := skaterDays("Lonely", "C", start, 5, 15, 1)

	_, err := NewEstimator(30, 0.75).Estimate(history, start.AddDate(0, 0, 10), roster.GroupForward, map[string]struct{}{"Lonely": {}})
	if !errors.Is(err, ErrNoLeagueReference) {
		t.Fatalf("expected ErrNoLeagueReference, got %v", err)
	}
}

func TestEstimateZeroTimeOnIceIsFlaggedAndExcluded(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	var history []gamestat.PlayerDayStat
	history = append(history, skaterDays("Ghost", "C", start, 10, 0, 0)...)
	history = append(history, skaterDays("Real", "C", start, 10, 15, 1)...)
	history = append(history, skaterDays("Rookie", "C", start, 10, 15, 1)...)
	want := map[string]struct{}{"Ghost": {}, "Rookie": {}}

	rates, err := NewEstimator(30, 0.75).Estimate(history, start.AddDate(0, 0, 20), roster.GroupForward, want)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	ghost := rates["Ghost"]
	if !ghost.ZeroTOI {
		t.Fatalf("expected zero TOI flag")
	}
	for _, v := range ghost.Rates {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("zero TOI produced non-finite rate: %v", ghost.Rates)
		}
	}

	// Ghost contributes nothing, so Rookie's league reference is Real's rate.
	raw := 1.0 / 15 * 60
	expected := (10*raw + 0.75*20*raw) / 30
	if got := rates["Rookie"].Rates[ColEvIxG]; !closeTo(got, expected) {
		t.Fatalf("zero TOI player leaked into league reference: got=%v want=%v", got, expected)
	}
}

func TestEstimateGoalies(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	var history []gamestat.PlayerDayStat
	for i, name := range []string{"Starter", "Backup"} {
		for d := 0; d < 5; d++ {
			history = append(history, gamestat.PlayerDayStat{
				Date: start.AddDate(0, 0, d).Format("06_01_02"), Team: "WSH", Name: name,
				Position: gamestat.PositionGoalie, TOI: 60, SA: float64(30 + i), SV: float64(28 + i),
			})
		}
	}

	rates, err := NewEstimator(30, 0.75).Estimate(history, start.AddDate(0, 0, 5), roster.GroupGoalie, map[string]struct{}{"Starter": {}})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	starter := rates["Starter"]
	want := (5*30.0 + 0.75*25*31.0) / 30
	if got := starter.Rates[ColSA]; !closeTo(got, want) {
		t.Fatalf("unexpected SA/60: got=%v want=%v", got, want)
	}
	if _, ok := starter.Rates[ColEvIxG]; ok {
		t.Fatalf("goalie rates should not carry skater columns")
	}
	if starter.Group != roster.GroupGoalie {
		t.Fatalf("unexpected group %s", starter.Group)
	}
}
