package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	"github.com/riskibarqy/hockey-projections/internal/usecase"
)

type dailyJobRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type rebuildJobRequest struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) RunDailyJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDailyJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job runner is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req dailyJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	day := h.today()
	if req.Date != "" {
		parsed, err := parseDay(req.Date)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		day = parsed
	}

	report, err := h.jobs.Run(ctx, day)
	if err != nil {
		h.logger.WarnContext(ctx, "run daily job failed", "date", daykey.ISO(day), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RunRebuildJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRebuildJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job runner is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req rebuildJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	start, err := parseDay(req.Start)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	end, err := parseDay(req.End)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.jobs.Rebuild(ctx, start, end)
	if err != nil {
		h.logger.WarnContext(ctx, "run rebuild job failed", "start", req.Start, "end", req.End, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}
