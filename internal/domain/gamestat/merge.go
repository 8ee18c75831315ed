package gamestat

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DayInput holds every raw export for one game day.
type DayInput struct {
	Day         time.Time
	Even        []SituationLine
	PowerPlay   []SituationLine
	PenaltyKill []SituationLine
	Goalies     []GoalieLine
	Results     []GameResult
}

// Merge outer-joins the situation exports on player name, fills absent
// situations with zero and derives fantasy points. Goalie rows are joined to
// game results by (date, team) for win and shutout flags.
func Merge(input DayInput, rules ScoringRules) ([]PlayerDayStat, error) {
	date := input.Day.Format("06_01_02")
	rows := make(map[string]*PlayerDayStat)
	order := make([]string, 0, len(input.Even))

	for _, situation := range Situations {
		lines := input.lines(situation)
		seen := make(map[string]struct{}, len(lines))
		for _, line := range lines {
			name := strings.TrimSpace(line.Player)
			if name == "" {
				return nil, fmt.Errorf("%w: %s row without player on %s", ErrMalformedRow, situation, date)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: duplicate %s row for %s on %s", ErrMalformedRow, situation, name, date)
			}
			seen[name] = struct{}{}

			row, ok := rows[name]
			if !ok {
				row = &PlayerDayStat{Date: date, Name: name}
				rows[name] = row
				order = append(order, name)
			}
			if row.Team == "" {
				row.Team = strings.TrimSpace(line.Team)
			}
			if row.Position == "" {
				row.Position = strings.TrimSpace(line.Position)
			}
			applySituation(row, situation, line)
		}
	}

	results := make(map[string]GameResult, len(input.Results))
	for _, result := range input.Results {
		if result.Date.Format("06_01_02") != date {
			continue
		}
		results[result.Team] = result
	}

	goalies := make([]*PlayerDayStat, 0, len(input.Goalies))
	for _, line := range input.Goalies {
		name := strings.TrimSpace(line.Player)
		if name == "" {
			return nil, fmt.Errorf("%w: goalie row without player on %s", ErrMalformedRow, date)
		}
		if _, dup := rows[name]; dup {
			return nil, fmt.Errorf("%w: duplicate goalie row for %s on %s", ErrMalformedRow, name, date)
		}
		row := &PlayerDayStat{
			Date:     date,
			Team:     strings.TrimSpace(line.Team),
			Name:     name,
			Position: PositionGoalie,
			TOI:      float64(line.TOI),
			SA:       float64(line.ShotsAgainst),
			SV:       float64(line.Saves),
			GA:       float64(line.GoalsAgainst),
			SavePct:  float64(line.SavePct),
			GSAA:     float64(line.GSAA),
			XGA:      float64(line.XGA),
		}
		if result, ok := results[row.Team]; ok {
			if result.Win() {
				row.W = 1
			}
			if result.Shutout() {
				row.SO = 1
			}
		}
		rows[name] = row
		goalies = append(goalies, row)
	}

	out := make([]PlayerDayStat, 0, len(order)+len(goalies))
	for _, name := range order {
		row := rows[name]
		rules.Score(row)
		out = append(out, *row)
	}
	for _, row := range goalies {
		rules.Score(row)
		out = append(out, *row)
	}

	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out, nil
}

func (in DayInput) lines(situation Situation) []SituationLine {
	switch situation {
	case SituationPowerPlay:
		return in.PowerPlay
	case SituationPenaltyKill:
		return in.PenaltyKill
	default:
		return in.Even
	}
}

func applySituation(row *PlayerDayStat, situation Situation, line SituationLine) {
	toi, g, a := float64(line.TOI), float64(line.Goals), float64(line.Assists)
	sh, bks, ixg := float64(line.Shots), float64(line.Blocks), float64(line.IxG)
	switch situation {
	case SituationPowerPlay:
		row.PpTOI, row.PpG, row.PpA, row.PpSH, row.PpBkS, row.PpIxG = toi, g, a, sh, bks, ixg
	case SituationPenaltyKill:
		row.PkTOI, row.PkG, row.PkA, row.PkSH, row.PkBkS, row.PkIxG = toi, g, a, sh, bks, ixg
	default:
		row.EvTOI, row.EvG, row.EvA, row.EvSH, row.EvBkS, row.EvIxG = toi, g, a, sh, bks, ixg
	}
}

// Filter returns rows dated on or before cutoff.
func Filter(rows []PlayerDayStat, cutoff time.Time) []PlayerDayStat {
	limit := cutoff.Format("06_01_02")
	out := make([]PlayerDayStat, 0, len(rows))
	for _, row := range rows {
		if row.Date <= limit {
			out = append(out, row)
		}
	}
	return out
}
