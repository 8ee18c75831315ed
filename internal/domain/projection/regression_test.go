package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
)

func linearRows(position string, n int, f func(x1, x2 float64) float64) []feature.Row {
	rows := make([]feature.Row, 0, n)
	for i := 0; i < n; i++ {
		x1 := float64(i)
		x2 := float64((i * 7) % 5)
		rows = append(rows, feature.Row{
			Name:             position + string(rune('a'+i)),
			Position:         position,
			EvIxG:            x1,
			ImpliedTeamScore: x2,
			FPPer60:          f(x1, x2),
		})
	}
	return rows
}

func TestFitOLSRecoversExactRelation(t *testing.T) {
	t.Parallel()

	rows := linearRows("C", 12, func(x1, x2 float64) float64 { return 4 + 2*x1 - 0.5*x2 })
	rows = append(rows, linearRows("D", 5, func(x1, x2 float64) float64 { return 100 })...)

	model, err := Fit(rows, FitConfig{Kind: KindOLS, Group: roster.GroupForward, Features: []string{"evixG/60", "implied_team_score"}})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if model.Samples != 12 {
		t.Fatalf("expected only forward rows, got %d", model.Samples)
	}
	if math.Abs(model.Intercept-4) > 1e-8 || math.Abs(model.Coefficients[0]-2) > 1e-8 || math.Abs(model.Coefficients[1]+0.5) > 1e-8 {
		t.Fatalf("unexpected OLS fit: %+v", model)
	}
	if math.Abs(model.RSquared-1) > 1e-9 {
		t.Fatalf("expected perfect fit, got r2=%v", model.RSquared)
	}

	got, err := model.Predict(feature.Row{EvIxG: 10, ImpliedTeamScore: 2})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got-23) > 1e-8 {
		t.Fatalf("unexpected prediction: %v", got)
	}
}

func TestFitRidgeShrinksCoefficients(t *testing.T) {
	t.Parallel()

	rows := linearRows("W", 8, func(x1, _ float64) float64 { return 1 + 3*x1 })
	features := []string{"evixG/60"}

	ols, err := Fit(rows, FitConfig{Kind: KindOLS, Group: roster.GroupForward, Features: features})
	if err != nil {
		t.Fatalf("fit ols: %v", err)
	}
	ridge, err := Fit(rows, FitConfig{Kind: KindRidge, Group: roster.GroupForward, Features: features})
	if err != nil {
		t.Fatalf("fit ridge: %v", err)
	}

	// Single centered feature: beta = Sxy / (Sxx + alpha).
	sxx := 0.0
	for i := 0; i < 8; i++ {
		d := float64(i) - 3.5
		sxx += d * d
	}
	want := 3 * sxx / (sxx + 1)
	if math.Abs(ridge.Coefficients[0]-want) > 1e-9 {
		t.Fatalf("unexpected ridge coefficient: got=%v want=%v", ridge.Coefficients[0], want)
	}
	if !(math.Abs(ridge.Coefficients[0]) < math.Abs(ols.Coefficients[0])) {
		t.Fatalf("ridge should shrink toward zero: ridge=%v ols=%v", ridge.Coefficients[0], ols.Coefficients[0])
	}
	// Intercept is unpenalized: the fit passes through the means.
	if math.Abs(ridge.Intercept+ridge.Coefficients[0]*3.5-(1+3*3.5)) > 1e-9 {
		t.Fatalf("ridge fit should pass through the centroid: %+v", ridge)
	}
}

func TestFitOLSHandlesConstantFeature(t *testing.T) {
	t.Parallel()

	rows := linearRows("C", 6, func(x1, _ float64) float64 { return 2 * x1 })
	for i := range rows {
		rows[i].Salary = 5000
	}
	model, err := Fit(rows, FitConfig{Kind: KindOLS, Group: roster.GroupForward, Features: []string{"evixG/60", "salary"}})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if math.Abs(model.Coefficients[0]-2) > 1e-8 || math.Abs(model.Coefficients[1]) > 1e-8 {
		t.Fatalf("expected minimum norm solution, got %+v", model)
	}
}

func TestFitErrors(t *testing.T) {
	t.Parallel()

	rows := linearRows("C", 5, func(x1, _ float64) float64 { return x1 })

	if _, err := Fit(rows, FitConfig{Kind: KindRidge, Group: roster.GroupForward, Features: []string{"nope"}}); !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("expected ErrUnknownFeature, got %v", err)
	}
	if _, err := Fit(rows, FitConfig{Kind: KindRidge, Group: roster.GroupDefense, Features: []string{"evixG/60"}}); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := Fit(rows, FitConfig{Kind: "lasso", Group: roster.GroupForward, Features: []string{"evixG/60"}}); !errors.Is(err, ErrUnknownModelKind) {
		t.Fatalf("expected ErrUnknownModelKind, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	if kind, err := ParseKind("OLS"); err != nil || kind != KindOLS {
		t.Fatalf("unexpected kind: %v %v", kind, err)
	}
	if kind, err := ParseKind(""); err != nil || kind != KindRidge {
		t.Fatalf("empty kind should default to ridge: %v %v", kind, err)
	}
	if _, err := ParseKind("lasso"); !errors.Is(err, ErrUnknownModelKind) {
		t.Fatalf("expected ErrUnknownModelKind, got %v", err)
	}
}
