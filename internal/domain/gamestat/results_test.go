package gamestat

import (
	"errors"
	"testing"
)

func TestParseGameFormats(t *testing.T) {
	t.Parallel()

	teams := NewTeamDirectory(nil)
	for _, line := range []string{
		"2021-03-04 - Capitals 3, Bruins 2",
		"2021-03-04 Capitals 3 - Bruins 2",
	} {
		results, err := ParseGame(line, teams)
		if err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}
		if len(results) != 2 {
			t.Fatalf("expected two perspectives, got %d", len(results))
		}
		home, away := results[0], results[1]
		if home.Team != "WSH" || home.Opponent != "BOS" || home.GoalsFor != 3 || home.GoalsAgainst != 2 {
			t.Fatalf("unexpected first perspective: %+v", home)
		}
		if away.Team != "BOS" || away.GoalsFor != 2 || away.GoalsAgainst != 3 {
			t.Fatalf("unexpected second perspective: %+v", away)
		}
		if !home.Win() || away.Win() || home.Shutout() {
			t.Fatalf("unexpected win flags")
		}
	}
}

func TestParseGameMultiWordMascots(t *testing.T) {
	t.Parallel()

	results, err := ParseGame("2021-03-04 - Maple Leafs 4, Golden Knights 0", NewTeamDirectory(nil))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if results[0].Team != "TOR" || results[1].Team != "VGK" || !results[0].Shutout() {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestParseGameMalformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseGame("Capitals beat Bruins", NewTeamDirectory(nil)); !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
}

func TestTeamDirectoryOverridesAndFuzzyLookup(t *testing.T) {
	t.Parallel()

	custom := NewTeamDirectory([]TeamAlias{{Mascot: "Capitals", Abbreviation: "WAS"}})
	abbr, err := custom.Abbreviation("capitals")
	if err != nil || abbr != "WAS" {
		t.Fatalf("expected override WAS, got %q err=%v", abbr, err)
	}
	if _, err := custom.Abbreviation("Zamboni Drivers"); !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("expected ErrUnknownTeam, got %v", err)
	}

	abbr, err = NewTeamDirectory(nil).Abbreviation("Leafs")
	if err != nil || abbr != "TOR" {
		t.Fatalf("expected fuzzy match TOR, got %q err=%v", abbr, err)
	}
}

func TestParseResultsDeduplicatesSharedGames(t *testing.T) {
	t.Parallel()

	lines := []ResultLine{
		{Game: "2021-03-04 - Capitals 3, Bruins 2"},
		{Game: "2021-03-04 Capitals 3 - Bruins 2"},
		{Game: ""},
	}
	results, err := ParseResults(lines, NewTeamDirectory(nil))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}
