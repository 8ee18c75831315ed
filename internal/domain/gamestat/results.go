package gamestat

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	ErrSourceMissing = errors.New("stat source missing")
	ErrMalformedRow  = errors.New("malformed stat row")
	ErrUnknownTeam   = errors.New("unknown team")
)

// GameResult is one team's view of a finished game.
type GameResult struct {
	Date         time.Time
	Team         string
	GoalsFor     int
	Opponent     string
	GoalsAgainst int
}

func (r GameResult) Win() bool {
	return r.GoalsFor > r.GoalsAgainst
}

func (r GameResult) Shutout() bool {
	return r.Win() && r.GoalsAgainst == 0
}

// Accepts "2021-03-04 - Capitals 3, Bruins 2" and "2021-03-04 Capitals 3 - Bruins 2".
var gamePattern = regexp.MustCompile(`^\s*(\d{4}-\d{2}-\d{2})\s*-?\s*(.+?)\s+(\d+)\s*[-,]\s*(.+?)\s+(\d+)\s*$`)

var defaultTeamAliases = map[string]string{
	"ducks":            "ANA",
	"coyotes":          "ARI",
	"bruins":           "BOS",
	"sabres":           "BUF",
	"flames":           "CGY",
	"hurricanes":       "CAR",
	"blackhawks":       "CHI",
	"avalanche":        "COL",
	"blue jackets":     "CBJ",
	"stars":            "DAL",
	"red wings":        "DET",
	"oilers":           "EDM",
	"panthers":         "FLA",
	"kings":            "L.A",
	"wild":             "MIN",
	"canadiens":        "MTL",
	"predators":        "NSH",
	"devils":           "N.J",
	"islanders":        "NYI",
	"rangers":          "NYR",
	"senators":         "OTT",
	"flyers":           "PHI",
	"penguins":         "PIT",
	"sharks":           "S.J",
	"kraken":           "SEA",
	"blues":            "STL",
	"lightning":        "T.B",
	"maple leafs":      "TOR",
	"canucks":          "VAN",
	"golden knights":   "VGK",
	"capitals":         "WSH",
	"jets":             "WPG",
	"utah hockey club": "UTA",
}

// TeamDirectory resolves mascot names to stat-export abbreviations.
type TeamDirectory struct {
	byMascot map[string]string
	mascots  []string
}

// NewTeamDirectory builds a directory from aliases, falling back to the
// built-in league table when aliases is empty.
func NewTeamDirectory(aliases []TeamAlias) *TeamDirectory {
	byMascot := make(map[string]string, len(defaultTeamAliases))
	if len(aliases) == 0 {
		for mascot, abbr := range defaultTeamAliases {
			byMascot[mascot] = abbr
		}
	}
	for _, alias := range aliases {
		mascot := strings.ToLower(strings.TrimSpace(alias.Mascot))
		abbr := strings.TrimSpace(alias.Abbreviation)
		if mascot == "" || abbr == "" {
			continue
		}
		byMascot[mascot] = abbr
	}

	mascots := make([]string, 0, len(byMascot))
	for mascot := range byMascot {
		mascots = append(mascots, mascot)
	}
	sort.Strings(mascots)

	return &TeamDirectory{byMascot: byMascot, mascots: mascots}
}

func (d *TeamDirectory) Abbreviation(mascot string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(mascot))
	if key == "" {
		return "", fmt.Errorf("%w: empty mascot", ErrUnknownTeam)
	}
	if abbr, ok := d.byMascot[key]; ok {
		return abbr, nil
	}

	ranks := fuzzy.RankFindNormalizedFold(key, d.mascots)
	if len(ranks) == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownTeam, mascot)
	}
	sort.Sort(ranks)
	return d.byMascot[ranks[0].Target], nil
}

// ParseGame splits one encoded game into both teams' perspectives.
func ParseGame(line string, teams *TeamDirectory) ([]GameResult, error) {
	match := gamePattern.FindStringSubmatch(line)
	if match == nil {
		return nil, fmt.Errorf("%w: game %q", ErrMalformedRow, line)
	}

	date, err := time.ParseInLocation("2006-01-02", match[1], time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: game date %q", ErrMalformedRow, match[1])
	}
	first, err := teams.Abbreviation(match[2])
	if err != nil {
		return nil, err
	}
	second, err := teams.Abbreviation(match[4])
	if err != nil {
		return nil, err
	}
	firstGoals, err := strconv.Atoi(match[3])
	if err != nil {
		return nil, fmt.Errorf("%w: goals %q", ErrMalformedRow, match[3])
	}
	secondGoals, err := strconv.Atoi(match[5])
	if err != nil {
		return nil, fmt.Errorf("%w: goals %q", ErrMalformedRow, match[5])
	}

	return []GameResult{
		{Date: date, Team: first, GoalsFor: firstGoals, Opponent: second, GoalsAgainst: secondGoals},
		{Date: date, Team: second, GoalsFor: secondGoals, Opponent: first, GoalsAgainst: firstGoals},
	}, nil
}

// ParseResults decodes home and away result lines. A game listed in both
// exports yields one result per team.
func ParseResults(lines []ResultLine, teams *TeamDirectory) ([]GameResult, error) {
	type key struct {
		date string
		team string
	}

	seen := make(map[key]struct{}, len(lines)*2)
	out := make([]GameResult, 0, len(lines)*2)
	for _, line := range lines {
		if strings.TrimSpace(line.Game) == "" {
			continue
		}
		results, err := ParseGame(line.Game, teams)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			k := key{date: result.Date.Format("2006-01-02"), team: result.Team}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, result)
		}
	}
	return out, nil
}
