package projection

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
)

var (
	ErrUnknownFeature   = errors.New("unknown feature column")
	ErrInsufficientData = errors.New("insufficient training rows")
	ErrUnknownModelKind = errors.New("unknown model kind")
	ErrSingularDesign   = errors.New("singular design matrix")
)

type Kind string

const (
	KindOLS   Kind = "ols"
	KindRidge Kind = "ridge"
)

// DefaultRidgeAlpha matches the usual library default L2 strength.
const DefaultRidgeAlpha = 1.0

func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindOLS:
		return KindOLS, nil
	case KindRidge, "":
		return KindRidge, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownModelKind, value)
	}
}

// Model is a fitted linear model for one position group. It is never
// persisted; every projection run refits.
type Model struct {
	Kind         Kind
	Group        roster.Group
	Features     []string
	Intercept    float64
	Coefficients []float64
	RSquared     float64
	Samples      int
}

// FitConfig selects the estimator and the caller's feature list.
type FitConfig struct {
	Kind     Kind
	Group    roster.Group
	Features []string
	Alpha    float64
}

// Fit regresses FP/60 on cfg.Features over training rows of cfg.Group.
// The intercept is never penalized: both estimators work on centered data.
func Fit(rows []feature.Row, cfg FitConfig) (Model, error) {
	if len(cfg.Features) == 0 {
		return Model{}, fmt.Errorf("%w: empty feature list", ErrUnknownFeature)
	}
	for _, name := range cfg.Features {
		if !feature.HasColumn(name) {
			return Model{}, fmt.Errorf("%w: %s", ErrUnknownFeature, name)
		}
	}
	alpha := cfg.Alpha
	if cfg.Kind == KindRidge && alpha <= 0 {
		alpha = DefaultRidgeAlpha
	}

	x, y := designMatrix(rows, cfg.Group, cfg.Features)
	m, p := len(y), len(cfg.Features)
	if m < 2 {
		return Model{}, fmt.Errorf("%w: group=%s rows=%d", ErrInsufficientData, cfg.Group, m)
	}

	xMean := make([]float64, p)
	for j := range xMean {
		xMean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	yMean := stat.Mean(y, nil)

	xc := mat.NewDense(m, p, nil)
	yc := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < p; j++ {
			xc.Set(i, j, x.At(i, j)-xMean[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	var beta mat.VecDense
	var err error
	switch cfg.Kind {
	case KindOLS:
		err = solveLeastSquares(&beta, xc, yc)
	case KindRidge:
		err = solveRidge(&beta, xc, yc, alpha)
	default:
		return Model{}, fmt.Errorf("%w: %s", ErrUnknownModelKind, cfg.Kind)
	}
	if err != nil {
		return Model{}, err
	}

	model := Model{
		Kind:         cfg.Kind,
		Group:        cfg.Group,
		Features:     append([]string(nil), cfg.Features...),
		Coefficients: make([]float64, p),
		Samples:      m,
	}
	model.Intercept = yMean
	for j := 0; j < p; j++ {
		model.Coefficients[j] = beta.AtVec(j)
		model.Intercept -= xMean[j] * model.Coefficients[j]
	}

	estimates := make([]float64, m)
	for i := 0; i < m; i++ {
		estimates[i] = model.predictVector(x.RawRowView(i))
	}
	model.RSquared = stat.RSquaredFrom(estimates, y, nil)
	return model, nil
}

// solveLeastSquares finds the minimum norm solution through a thin SVD,
// truncating singular values the way LAPACK gelsd does.
func solveLeastSquares(dst *mat.VecDense, x *mat.Dense, y *mat.VecDense) error {
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return ErrSingularDesign
	}
	m, n := x.Dims()
	rcond := math.Nextafter(1, 2) - 1
	rank := svd.Rank(rcond * float64(max(m, n)))
	if rank == 0 {
		dst.ReuseAsVec(n)
		dst.Zero()
		return nil
	}
	svd.SolveVecTo(dst, y, rank)
	return nil
}

// solveRidge solves (XᵀX + αI)β = Xᵀy.
func solveRidge(dst *mat.VecDense, x *mat.Dense, y *mat.VecDense, alpha float64) error {
	_, n := x.Dims()
	gram := mat.NewSymDense(n, nil)
	gram.SymOuterK(1, x.T())
	for j := 0; j < n; j++ {
		gram.SetSym(j, j, gram.At(j, j)+alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(x.T(), y)

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return ErrSingularDesign
	}
	if err := chol.SolveVecTo(dst, &rhs); err != nil {
		return fmt.Errorf("%w: %v", ErrSingularDesign, err)
	}
	return nil
}

func designMatrix(rows []feature.Row, group roster.Group, features []string) (*mat.Dense, []float64) {
	data := make([]float64, 0, len(rows)*len(features))
	y := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.Group() != group {
			continue
		}
		for _, name := range features {
			v, _ := row.Column(name)
			data = append(data, v)
		}
		y = append(y, row.FPPer60)
	}
	if len(y) == 0 {
		return nil, nil
	}
	return mat.NewDense(len(y), len(features), data), y
}

// Predict returns the modeled FP/60 for row.
func (m Model) Predict(row feature.Row) (float64, error) {
	values := make([]float64, len(m.Features))
	for i, name := range m.Features {
		v, err := row.Column(name)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrUnknownFeature, name)
		}
		values[i] = v
	}
	return m.predictVector(values), nil
}

func (m Model) predictVector(values []float64) float64 {
	out := m.Intercept
	for i, coef := range m.Coefficients {
		out += coef * values[i]
	}
	return out
}
