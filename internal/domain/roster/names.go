package roster

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// NameResolver reconciles pool names with the spelling used in stat history
// ("Mitch Marner" vs "Mitchell Marner"). A zero threshold disables matching.
type NameResolver struct {
	threshold float64
	byTeam    map[string][]string
	known     map[string]struct{}
}

// NewNameResolver indexes historical names by team. Threshold is the minimum
// similarity in [0,1], computed as 1 - distance/len(longer name).
func NewNameResolver(threshold float64, teamByName map[string]string) *NameResolver {
	byTeam := make(map[string][]string)
	known := make(map[string]struct{}, len(teamByName))
	for name, team := range teamByName {
		known[name] = struct{}{}
		byTeam[team] = append(byTeam[team], name)
	}
	return &NameResolver{threshold: threshold, byTeam: byTeam, known: known}
}

// Resolve returns the historical name matching poolName on team, or poolName
// unchanged when no candidate clears the threshold.
func (r *NameResolver) Resolve(poolName, team string) string {
	if r == nil || r.threshold <= 0 {
		return poolName
	}
	if _, ok := r.known[poolName]; ok {
		return poolName
	}

	best, bestScore := poolName, 0.0
	target := strings.ToLower(poolName)
	for _, candidate := range r.byTeam[team] {
		score := similarity(target, strings.ToLower(candidate))
		if score > bestScore || (score == bestScore && candidate < best) {
			best, bestScore = candidate, score
		}
	}
	if bestScore < r.threshold {
		return poolName
	}
	return best
}

func similarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(longest)
}
