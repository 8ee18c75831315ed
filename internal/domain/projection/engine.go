package projection

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
)

// Default feature lists for the daily run.
var (
	DefaultForwardFeatures = []string{"evSH/60", "evBkS/60", "evixG/60", "lmevixG/60", "pplmevixG/60", "implied_team_score"}
	DefaultDefenseFeatures = []string{"evSH/60", "evixG/60", "pplmevixG/60", "implied_team_score"}
)

// Row is a feature row with its projection appended.
type Row struct {
	feature.Row
	ProjFPPer60 float64 `csv:"proj_FP/60"`
	ProjFP      float64 `csv:"proj_FP"`
	ProjValue   float64 `csv:"proj_value"`
}

// Config is the per-run model setup.
type Config struct {
	Kind            Kind
	Alpha           float64
	ForwardFeatures []string
	DefenseFeatures []string
}

// Result carries projected rows and the models behind them.
type Result struct {
	Rows    []Row
	Forward Model
	Defense Model
}

// Project fits one model per skater group on training rows and projects the
// day's rows, sorted by projected fantasy points descending. Goalie rows are
// not projected.
func Project(training, today []feature.Row, cfg Config) (Result, error) {
	forward, err := Fit(training, FitConfig{Kind: cfg.Kind, Group: roster.GroupForward, Features: cfg.ForwardFeatures, Alpha: cfg.Alpha})
	if err != nil {
		return Result{}, fmt.Errorf("fit forward model: %w", err)
	}
	defense, err := Fit(training, FitConfig{Kind: cfg.Kind, Group: roster.GroupDefense, Features: cfg.DefenseFeatures, Alpha: cfg.Alpha})
	if err != nil {
		return Result{}, fmt.Errorf("fit defense model: %w", err)
	}

	out := make([]Row, 0, len(today))
	for _, row := range today {
		var model Model
		switch row.Group() {
		case roster.GroupForward:
			model = forward
		case roster.GroupDefense:
			model = defense
		default:
			continue
		}

		perSixty, err := model.Predict(row)
		if err != nil {
			return Result{}, fmt.Errorf("predict %s: %w", row.Name, err)
		}
		out = append(out, finalize(row, perSixty))
	}

	Sort(out)
	return Result{Rows: out, Forward: forward, Defense: defense}, nil
}

func finalize(row feature.Row, perSixty float64) Row {
	projected := Row{Row: row, ProjFPPer60: perSixty}
	projected.ProjFP = perSixty * row.MeanTOI / 60
	if row.Salary > 0 {
		projected.ProjValue = projected.ProjFP / row.Salary * 1000
	}
	return projected
}

// Sort orders projections by proj_FP descending, then by name.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProjFP != rows[j].ProjFP {
			return rows[i].ProjFP > rows[j].ProjFP
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Position < rows[j].Position
	})
}

type Repository interface {
	WriteDay(ctx context.Context, day time.Time, rows []Row) error
	ReadDay(ctx context.Context, day time.Time) ([]Row, error)
}

// Archive stores projection history outside the snapshot files.
type Archive interface {
	ReplaceForDate(ctx context.Context, day time.Time, rows []Row) error
	ListByDate(ctx context.Context, day time.Time) ([]Row, error)
}
