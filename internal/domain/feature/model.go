package feature

import (
	"context"
	"errors"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
)

var (
	ErrNoLeagueReference = errors.New("league reference undefined")
	ErrUnknownColumn     = errors.New("unknown feature column")
)

// Skater rate columns, per 60 minutes of even strength ice time.
const (
	ColEvG   = "evG/60"
	ColEvA   = "evA/60"
	ColEvSH  = "evSH/60"
	ColEvBkS = "evBkS/60"
	ColEvIxG = "evixG/60"
)

// Goalie rate columns, per 60 minutes of total ice time.
const (
	ColSA   = "SA/60"
	ColSV   = "SV/60"
	ColGA   = "GA/60"
	ColXGA  = "xGA/60"
	ColGSAA = "GSAA/60"
)

const (
	LinePrefix      = "lm"
	PowerPlayPrefix = "pplm"
)

var SkaterRateColumns = []string{ColEvG, ColEvA, ColEvSH, ColEvBkS, ColEvIxG}

var GoalieRateColumns = []string{ColSA, ColSV, ColGA, ColXGA, ColGSAA}

// RegressedRate is a player's shrunk rate line as of one day.
type RegressedRate struct {
	Name     string
	Position string
	Group    roster.Group
	GP       int

	// ZeroTOI marks a player whose window carried no ice time; own rates are 0.
	ZeroTOI bool

	Rates     map[string]float64
	MeanEvTOI float64
	MeanTOI   float64
}

func (r RegressedRate) Rate(column string) (float64, bool) {
	v, ok := r.Rates[column]
	return v, ok
}

// LineMateStat is the neighbor average of one rate for one player.
type LineMateStat struct {
	Line      float64
	PowerPlay float64
}

// Row is one feature table row keyed by (date, name, position).
type Row struct {
	Date     string `csv:"date"`
	Name     string `csv:"name"`
	Position string `csv:"position"`
	Team     string `csv:"team"`
	Opponent string `csv:"opponent"`

	GP    int     `csv:"GP"`
	EvG   float64 `csv:"evG/60"`
	EvA   float64 `csv:"evA/60"`
	EvSH  float64 `csv:"evSH/60"`
	EvBkS float64 `csv:"evBkS/60"`
	EvIxG float64 `csv:"evixG/60"`

	SA   float64 `csv:"SA/60"`
	SV   float64 `csv:"SV/60"`
	GA   float64 `csv:"GA/60"`
	XGA  float64 `csv:"xGA/60"`
	GSAA float64 `csv:"GSAA/60"`

	MeanEvTOI float64 `csv:"mean_evTOI"`
	MeanTOI   float64 `csv:"mean_TOI"`

	LmEvG     float64 `csv:"lmevG/60"`
	LmEvA     float64 `csv:"lmevA/60"`
	LmEvSH    float64 `csv:"lmevSH/60"`
	LmEvBkS   float64 `csv:"lmevBkS/60"`
	LmEvIxG   float64 `csv:"lmevixG/60"`
	PplmEvG   float64 `csv:"pplmevG/60"`
	PplmEvA   float64 `csv:"pplmevA/60"`
	PplmEvSH  float64 `csv:"pplmevSH/60"`
	PplmEvBkS float64 `csv:"pplmevBkS/60"`
	PplmEvIxG float64 `csv:"pplmevixG/60"`

	RegLine          roster.Line `csv:"reg_line"`
	PPLine           roster.Line `csv:"pp_line"`
	ImpliedTeamScore float64     `csv:"implied_team_score"`
	OverUnder        float64     `csv:"over_under"`
	ImpliedOppScore  float64     `csv:"implied_opp_score"`
	ImpliedWinProb   float64     `csv:"implied_win_prob"`
	PPGProjection    float64     `csv:"ppg_projection"`
	Salary           float64     `csv:"salary"`

	FPPer60 float64 `csv:"FP/60"`
	FP      float64 `csv:"FP"`
	TOI     float64 `csv:"TOI"`
	Value   float64 `csv:"value"`

	// Training marks rows carrying a realized stat line. Prediction-input
	// rows leave it false and never reach the training file.
	Training bool `csv:"training"`
}

func (r Row) Group() roster.Group {
	return roster.GroupOf(r.Position)
}

var columns = map[string]func(*Row) *float64{
	ColEvG:                     func(r *Row) *float64 { return &r.EvG },
	ColEvA:                     func(r *Row) *float64 { return &r.EvA },
	ColEvSH:                    func(r *Row) *float64 { return &r.EvSH },
	ColEvBkS:                   func(r *Row) *float64 { return &r.EvBkS },
	ColEvIxG:                   func(r *Row) *float64 { return &r.EvIxG },
	ColSA:                      func(r *Row) *float64 { return &r.SA },
	ColSV:                      func(r *Row) *float64 { return &r.SV },
	ColGA:                      func(r *Row) *float64 { return &r.GA },
	ColXGA:                     func(r *Row) *float64 { return &r.XGA },
	ColGSAA:                    func(r *Row) *float64 { return &r.GSAA },
	"mean_evTOI":               func(r *Row) *float64 { return &r.MeanEvTOI },
	"mean_TOI":                 func(r *Row) *float64 { return &r.MeanTOI },
	LinePrefix + ColEvG:        func(r *Row) *float64 { return &r.LmEvG },
	LinePrefix + ColEvA:        func(r *Row) *float64 { return &r.LmEvA },
	LinePrefix + ColEvSH:       func(r *Row) *float64 { return &r.LmEvSH },
	LinePrefix + ColEvBkS:      func(r *Row) *float64 { return &r.LmEvBkS },
	LinePrefix + ColEvIxG:      func(r *Row) *float64 { return &r.LmEvIxG },
	PowerPlayPrefix + ColEvG:   func(r *Row) *float64 { return &r.PplmEvG },
	PowerPlayPrefix + ColEvA:   func(r *Row) *float64 { return &r.PplmEvA },
	PowerPlayPrefix + ColEvSH:  func(r *Row) *float64 { return &r.PplmEvSH },
	PowerPlayPrefix + ColEvBkS: func(r *Row) *float64 { return &r.PplmEvBkS },
	PowerPlayPrefix + ColEvIxG: func(r *Row) *float64 { return &r.PplmEvIxG },
	"implied_team_score":       func(r *Row) *float64 { return &r.ImpliedTeamScore },
	"over_under":               func(r *Row) *float64 { return &r.OverUnder },
	"implied_opp_score":        func(r *Row) *float64 { return &r.ImpliedOppScore },
	"implied_win_prob":         func(r *Row) *float64 { return &r.ImpliedWinProb },
	"ppg_projection":           func(r *Row) *float64 { return &r.PPGProjection },
	"salary":                   func(r *Row) *float64 { return &r.Salary },
	"FP/60":                    func(r *Row) *float64 { return &r.FPPer60 },
	"FP":                       func(r *Row) *float64 { return &r.FP },
	"TOI":                      func(r *Row) *float64 { return &r.TOI },
	"value":                    func(r *Row) *float64 { return &r.Value },
}

// Column returns the named numeric column of the row.
func (r Row) Column(name string) (float64, error) {
	if name == "GP" {
		return float64(r.GP), nil
	}
	field, ok := columns[name]
	if !ok {
		return 0, ErrUnknownColumn
	}
	return *field(&r), nil
}

// HasColumn reports whether name is a numeric feature column.
func HasColumn(name string) bool {
	if name == "GP" {
		return true
	}
	_, ok := columns[name]
	return ok
}

func (r *Row) setColumn(name string, value float64) {
	if field, ok := columns[name]; ok {
		*field(r) = value
	}
}

// Less orders rows by (date, name, position).
func Less(a, b Row) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Position < b.Position
}

// Filter returns rows dated on or before cutoff.
func Filter(rows []Row, cutoff time.Time) []Row {
	limit := cutoff.Format("06_01_02")
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Date <= limit {
			out = append(out, row)
		}
	}
	return out
}

// TrainingOnly drops prediction-input rows.
func TrainingOnly(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Training {
			out = append(out, row)
		}
	}
	return out
}

type Repository interface {
	WriteDay(ctx context.Context, day time.Time, rows []Row) error
	ReadDay(ctx context.Context, day time.Time) ([]Row, error)
	ListDays(ctx context.Context) ([]time.Time, error)
	ReadAllDays(ctx context.Context) ([]Row, error)
	WriteCombined(ctx context.Context, rows []Row) error
	ReadCombined(ctx context.Context) ([]Row, error)
}
