package roster

import (
	"context"
	"strconv"
	"strings"
	"time"
)

type Group string

const (
	GroupForward Group = "F"
	GroupDefense Group = "D"
	GroupGoalie  Group = "G"
)

// GroupOf maps a pool or stat-export position to its position group.
func GroupOf(position string) Group {
	switch strings.ToUpper(strings.TrimSpace(position)) {
	case "D", "LD", "RD":
		return GroupDefense
	case "G":
		return GroupGoalie
	default:
		return GroupForward
	}
}

// Line is a nullable line or unit number.
type Line struct {
	Number int
	Valid  bool
}

func (l *Line) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "nan", "null", "-":
		*l = Line{}
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	*l = Line{Number: int(parsed), Valid: true}
	return nil
}

func (l Line) MarshalCSV() (string, error) {
	if !l.Valid {
		return "", nil
	}
	return strconv.Itoa(l.Number), nil
}

// Amount is a numeric pool cell where blanks read as zero.
type Amount float64

func (a *Amount) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "nan", "null", "-":
		*a = 0
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimPrefix(value, "$"), 64)
	if err != nil {
		return err
	}
	*a = Amount(parsed)
	return nil
}

// Entry is one row of the daily player pool export.
type Entry struct {
	FirstName        string `csv:"first_name"`
	LastName         string `csv:"last_name"`
	Team             string `csv:"team"`
	Opponent         string `csv:"opp"`
	Position         string `csv:"position"`
	InjuryStatus     string `csv:"injury_status"`
	RegLine          Line   `csv:"reg_line"`
	PPLine           Line   `csv:"pp_line"`
	ImpliedTeamScore Amount `csv:"implied_team_score"`
	OverUnder        Amount `csv:"over_under"`
	PPGProjection    Amount `csv:"ppg_projection"`
	Salary           Amount `csv:"salary"`
}

func (e Entry) Name() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}

func (e Entry) Group() Group {
	return GroupOf(e.Position)
}

// IsOut reports whether the entry is ruled out for the day.
func (e Entry) IsOut() bool {
	status := strings.ToUpper(strings.TrimSpace(e.InjuryStatus))
	return status == "O" || status == "OUT"
}

// Pool is one day's player pool with ruled-out players removed.
type Pool struct {
	Day     time.Time
	Entries []Entry
}

// NewPool drops ruled-out entries and keeps the first entry per name.
func NewPool(day time.Time, entries []Entry) Pool {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsOut() {
			continue
		}
		name := entry.Name()
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, entry)
	}
	return Pool{Day: day, Entries: out}
}

type Repository interface {
	ReadPool(ctx context.Context, day time.Time) ([]Entry, error)
}
