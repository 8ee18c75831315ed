package gamestat

import (
	"strconv"
	"strings"
	"time"
)

type Situation string

const (
	SituationEven        Situation = "ev"
	SituationPowerPlay   Situation = "pp"
	SituationPenaltyKill Situation = "pk"
)

var Situations = []Situation{SituationEven, SituationPowerPlay, SituationPenaltyKill}

type ResultSide string

const (
	ResultSideHome ResultSide = "home"
	ResultSideAway ResultSide = "away"
)

const PositionGoalie = "G"

// Count is a numeric export cell. Blank, "-" and "nan" cells read as zero.
type Count float64

func (c *Count) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "-", "nan", "null":
		*c = 0
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
	if err != nil {
		return err
	}
	*c = Count(parsed)
	return nil
}

// SituationLine is one row of an even strength, power play or penalty kill skater export.
type SituationLine struct {
	Player   string `csv:"Player"`
	Team     string `csv:"Team"`
	Position string `csv:"Position"`
	TOI      Count  `csv:"TOI"`
	Goals    Count  `csv:"Goals"`
	Assists  Count  `csv:"Total Assists"`
	Shots    Count  `csv:"Shots"`
	Blocks   Count  `csv:"Shots Blocked"`
	IxG      Count  `csv:"ixG"`
}

// GoalieLine is one row of the goalie export.
type GoalieLine struct {
	Player       string `csv:"Player"`
	Team         string `csv:"Team"`
	TOI          Count  `csv:"TOI"`
	ShotsAgainst Count  `csv:"Shots Against"`
	Saves        Count  `csv:"Saves"`
	GoalsAgainst Count  `csv:"Goals Against"`
	SavePct      Count  `csv:"SV%"`
	GSAA         Count  `csv:"GSAA"`
	XGA          Count  `csv:"xG Against"`
}

// ResultLine carries one encoded game from a home or away results export.
type ResultLine struct {
	Game string `csv:"Game"`
}

// TeamAlias maps a mascot name to the abbreviation used by the stat exports.
type TeamAlias struct {
	Mascot       string `csv:"mascot"`
	Abbreviation string `csv:"abbreviation"`
}

// PlayerDayStat is one player's line for one game day.
type PlayerDayStat struct {
	Date     string `csv:"date"`
	Team     string `csv:"team"`
	Name     string `csv:"name"`
	Position string `csv:"position"`

	EvTOI float64 `csv:"evTOI"`
	EvG   float64 `csv:"evG"`
	EvA   float64 `csv:"evA"`
	EvSH  float64 `csv:"evSH"`
	EvBkS float64 `csv:"evBkS"`
	EvIxG float64 `csv:"evixG"`

	PpTOI float64 `csv:"ppTOI"`
	PpG   float64 `csv:"ppG"`
	PpA   float64 `csv:"ppA"`
	PpSH  float64 `csv:"ppSH"`
	PpBkS float64 `csv:"ppBkS"`
	PpIxG float64 `csv:"ppixG"`

	PkTOI float64 `csv:"pkTOI"`
	PkG   float64 `csv:"pkG"`
	PkA   float64 `csv:"pkA"`
	PkSH  float64 `csv:"pkSH"`
	PkBkS float64 `csv:"pkBkS"`
	PkIxG float64 `csv:"pkixG"`

	SA      float64 `csv:"SA"`
	SV      float64 `csv:"SV"`
	GA      float64 `csv:"GA"`
	SavePct float64 `csv:"SV%"`
	GSAA    float64 `csv:"GSAA"`
	XGA     float64 `csv:"xGA"`
	W       int     `csv:"W"`
	SO      int     `csv:"SO"`

	EvFP    float64 `csv:"evFP"`
	PpFP    float64 `csv:"ppFP"`
	PkFP    float64 `csv:"pkFP"`
	TOI     float64 `csv:"TOI"`
	FP      float64 `csv:"FP"`
	FPPer60 float64 `csv:"FP/60"`
}

func (s PlayerDayStat) IsGoalie() bool {
	return s.Position == PositionGoalie
}

// Day parses the row's date token.
func (s PlayerDayStat) Day() (time.Time, error) {
	return time.ParseInLocation("06_01_02", s.Date, time.UTC)
}

// Less orders rows by (date, team, name, position).
func Less(a, b PlayerDayStat) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.Team != b.Team {
		return a.Team < b.Team
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Position < b.Position
}
