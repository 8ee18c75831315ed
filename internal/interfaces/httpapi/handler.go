package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
	"github.com/riskibarqy/hockey-projections/internal/usecase"
)

const maxRequestBodyBytes = 64 << 10

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

type ProjectionReader interface {
	Get(ctx context.Context, day time.Time) ([]projection.Row, error)
}

type FeatureReader interface {
	Get(ctx context.Context, day time.Time) ([]feature.Row, error)
}

type JobRunner interface {
	Run(ctx context.Context, day time.Time) (usecase.DailyReport, error)
	Rebuild(ctx context.Context, start, end time.Time) (usecase.RebuildReport, error)
}

type Handler struct {
	projections ProjectionReader
	features    FeatureReader
	jobs        JobRunner
	location    *time.Location
	now         func() time.Time
	logger      *logging.Logger
	validator   *validator.Validate
}

// NewHandler wires the read and job endpoints. location decides what "today"
// means when a daily job request omits the date.
func NewHandler(
	projections ProjectionReader,
	features FeatureReader,
	jobs JobRunner,
	location *time.Location,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}

	return &Handler{
		projections: projections,
		features:    features,
		jobs:        jobs,
		location:    location,
		now:         time.Now,
		logger:      logger.Named("httpapi"),
		validator:   validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeJSON reads an optional JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(body) > maxRequestBodyBytes {
		return fmt.Errorf("%w: request body too large", usecase.ErrInvalidInput)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := strictJSON.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseDay(value string) (time.Time, error) {
	day, err := daykey.Parse(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return day, nil
}

func (h *Handler) today() time.Time {
	return daykey.Truncate(h.now().In(h.location))
}
