package feature

import (
	"sort"

	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
)

// Member is one skater's line assignment for the day.
type Member struct {
	Name    string
	Team    string
	Group   roster.Group
	RegLine roster.Line
	PPLine  roster.Line
}

type unitKey struct {
	group roster.Group
	team  string
	line  int
}

// Neighbors holds each skater's line mates (forward line or defense pair)
// and power play unit mates. A player never appears in their own lists.
type Neighbors struct {
	line      map[string][]string
	powerPlay map[string][]string
}

// NewNeighbors groups forwards and defensemen by (team, line) and all skaters
// by (team, power play unit). Players without a line number get no neighbors.
func NewNeighbors(members []Member) Neighbors {
	lines := make(map[unitKey][]string)
	units := make(map[unitKey][]string)
	for _, m := range members {
		if m.Group == roster.GroupGoalie {
			continue
		}
		if m.RegLine.Valid {
			k := unitKey{group: m.Group, team: m.Team, line: m.RegLine.Number}
			lines[k] = append(lines[k], m.Name)
		}
		if m.PPLine.Valid {
			k := unitKey{team: m.Team, line: m.PPLine.Number}
			units[k] = append(units[k], m.Name)
		}
	}

	n := Neighbors{
		line:      make(map[string][]string, len(members)),
		powerPlay: make(map[string][]string, len(members)),
	}
	for _, m := range members {
		if m.Group == roster.GroupGoalie {
			continue
		}
		if m.RegLine.Valid {
			n.line[m.Name] = without(lines[unitKey{group: m.Group, team: m.Team, line: m.RegLine.Number}], m.Name)
		}
		if m.PPLine.Valid {
			n.powerPlay[m.Name] = without(units[unitKey{team: m.Team, line: m.PPLine.Number}], m.Name)
		}
	}
	return n
}

func (n Neighbors) Line(name string) []string {
	return n.line[name]
}

func (n Neighbors) PowerPlay(name string) []string {
	return n.powerPlay[name]
}

// without removes one occurrence of name.
func without(names []string, name string) []string {
	out := make([]string, 0, len(names))
	removed := false
	for _, candidate := range names {
		if !removed && candidate == name {
			removed = true
			continue
		}
		out = append(out, candidate)
	}
	sort.Strings(out)
	return out
}

// Average returns the mean of column over the neighbors present in rates.
// Neighbors missing from rates are skipped; no usable neighbor yields 0.
func Average(neighbors []string, rates map[string]RegressedRate, column string) float64 {
	var sum float64
	var count int
	for _, name := range neighbors {
		rate, ok := rates[name]
		if !ok {
			continue
		}
		v, ok := rate.Rate(column)
		if !ok {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// LineMates computes the line and power play neighbor averages of column for
// every skater in members.
func LineMates(members []Member, neighbors Neighbors, rates map[string]RegressedRate, column string) map[string]LineMateStat {
	out := make(map[string]LineMateStat, len(members))
	for _, m := range members {
		if m.Group == roster.GroupGoalie {
			continue
		}
		out[m.Name] = LineMateStat{
			Line:      Average(neighbors.Line(m.Name), rates, column),
			PowerPlay: Average(neighbors.PowerPlay(m.Name), rates, column),
		}
	}
	return out
}
