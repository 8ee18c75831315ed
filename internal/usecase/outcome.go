package usecase

import (
	"fmt"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
)

// StepStatus is the result of one pipeline step for one date.
type StepStatus string

const (
	StepWritten StepStatus = "written"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

const (
	stepStats            = "stats"
	stepStatsCombined    = "stats_combined"
	stepFeatures         = "features"
	stepTraining         = "training_features"
	stepFeaturesCombined = "features_combined"
	stepProjections      = "projections"
)

type StepOutcome struct {
	Step       string     `json:"step"`
	Date       string     `json:"date,omitempty"`
	Status     StepStatus `json:"status"`
	Rows       int        `json:"rows"`
	DurationMs int64      `json:"duration_ms"`
	Reason     string     `json:"reason,omitempty"`
}

// RangeReport lists per-date outcomes of a range write. Dates that could not
// be built are recorded as skipped; the range itself never fails on them.
type RangeReport struct {
	Step         string        `json:"step"`
	Start        string        `json:"start"`
	End          string        `json:"end"`
	WrittenCount int           `json:"written_count"`
	SkippedCount int           `json:"skipped_count"`
	Outcomes     []StepOutcome `json:"outcomes"`
}

func (r *RangeReport) add(outcome StepOutcome) {
	switch outcome.Status {
	case StepWritten:
		r.WrittenCount++
	default:
		r.SkippedCount++
	}
	r.Outcomes = append(r.Outcomes, outcome)
}

// Written returns the dates that produced a file.
func (r RangeReport) Written() []string {
	out := make([]string, 0, r.WrittenCount)
	for _, outcome := range r.Outcomes {
		if outcome.Status == StepWritten {
			out = append(out, outcome.Date)
		}
	}
	return out
}

func newRangeReport(step string, start, end time.Time) RangeReport {
	return RangeReport{
		Step:  step,
		Start: daykey.ISO(start),
		End:   daykey.ISO(end),
	}
}

func outcomeFor(step string, day time.Time, started time.Time, rows int, err error, failed StepStatus) StepOutcome {
	outcome := StepOutcome{
		Step:       step,
		Status:     StepWritten,
		Rows:       rows,
		DurationMs: time.Since(started).Milliseconds(),
	}
	if !day.IsZero() {
		outcome.Date = daykey.ISO(day)
	}
	if err != nil {
		outcome.Status = failed
		outcome.Rows = 0
		outcome.Reason = err.Error()
	}
	return outcome
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidInput, daykey.ISO(end), daykey.ISO(start))
	}
	return nil
}
