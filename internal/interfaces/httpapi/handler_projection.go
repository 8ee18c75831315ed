package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/domain/roster"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	"github.com/riskibarqy/hockey-projections/internal/usecase"
)

type listQuery struct {
	Group string `validate:"omitempty,oneof=F D G"`
	Limit int    `validate:"min=0,max=2000"`
}

func parseListQuery(r *http.Request) (listQuery, error) {
	q := listQuery{Group: strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("group")))}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return listQuery{}, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput)
		}
		q.Limit = limit
	}
	return q, nil
}

func (q listQuery) keep(position string) bool {
	return q.Group == "" || roster.GroupOf(position) == roster.Group(q.Group)
}

type projectionListDTO struct {
	Date        string          `json:"date"`
	Count       int             `json:"count"`
	Projections []projectionDTO `json:"projections"`
}

type projectionDTO struct {
	Rank             int     `json:"rank"`
	Name             string  `json:"name"`
	Position         string  `json:"position"`
	Team             string  `json:"team"`
	Opponent         string  `json:"opponent"`
	Salary           float64 `json:"salary"`
	MeanTOI          float64 `json:"mean_toi"`
	RegLine          *int    `json:"reg_line,omitempty"`
	PPLine           *int    `json:"pp_line,omitempty"`
	ImpliedTeamScore float64 `json:"implied_team_score"`
	ProjFPPer60      float64 `json:"proj_fp_per60"`
	ProjFP           float64 `json:"proj_fp"`
	ProjValue        float64 `json:"proj_value"`
}

type featureListDTO struct {
	Date     string       `json:"date"`
	Count    int          `json:"count"`
	Features []featureDTO `json:"features"`
}

type featureDTO struct {
	Name             string             `json:"name"`
	Position         string             `json:"position"`
	Team             string             `json:"team"`
	Opponent         string             `json:"opponent"`
	GP               int                `json:"gp"`
	Rates            map[string]float64 `json:"rates"`
	MeanEvTOI        float64            `json:"mean_ev_toi"`
	MeanTOI          float64            `json:"mean_toi"`
	RegLine          *int               `json:"reg_line,omitempty"`
	PPLine           *int               `json:"pp_line,omitempty"`
	ImpliedTeamScore float64            `json:"implied_team_score"`
	OverUnder        float64            `json:"over_under"`
	ImpliedWinProb   float64            `json:"implied_win_prob"`
	Salary           float64            `json:"salary"`
}

func (h *Handler) GetProjections(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProjections")
	defer span.End()

	day, err := parseDay(r.PathValue("date"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query, err := parseListQuery(r)
	if err == nil {
		err = h.validateRequest(ctx, query)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.projections.Get(ctx, day)
	if err != nil {
		h.logger.WarnContext(ctx, "get projections failed", "date", daykey.ISO(day), "error", err)
		writeError(ctx, w, err)
		return
	}

	out := projectionListDTO{Date: daykey.ISO(day), Projections: make([]projectionDTO, 0, len(rows))}
	for i, row := range rows {
		if !query.keep(row.Position) {
			continue
		}
		out.Projections = append(out.Projections, projectionToDTO(i+1, row))
		if query.Limit > 0 && len(out.Projections) == query.Limit {
			break
		}
	}
	out.Count = len(out.Projections)

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFeatures")
	defer span.End()

	day, err := parseDay(r.PathValue("date"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query, err := parseListQuery(r)
	if err == nil {
		err = h.validateRequest(ctx, query)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.features.Get(ctx, day)
	if err != nil {
		h.logger.WarnContext(ctx, "get features failed", "date", daykey.ISO(day), "error", err)
		writeError(ctx, w, err)
		return
	}

	out := featureListDTO{Date: daykey.ISO(day), Features: make([]featureDTO, 0, len(rows))}
	for _, row := range rows {
		if !query.keep(row.Position) {
			continue
		}
		out.Features = append(out.Features, featureToDTO(row))
		if query.Limit > 0 && len(out.Features) == query.Limit {
			break
		}
	}
	out.Count = len(out.Features)

	writeSuccess(ctx, w, http.StatusOK, out)
}

func projectionToDTO(rank int, row projection.Row) projectionDTO {
	return projectionDTO{
		Rank:             rank,
		Name:             row.Name,
		Position:         row.Position,
		Team:             row.Team,
		Opponent:         row.Opponent,
		Salary:           row.Salary,
		MeanTOI:          row.MeanTOI,
		RegLine:          lineNumber(row.RegLine),
		PPLine:           lineNumber(row.PPLine),
		ImpliedTeamScore: row.ImpliedTeamScore,
		ProjFPPer60:      row.ProjFPPer60,
		ProjFP:           row.ProjFP,
		ProjValue:        row.ProjValue,
	}
}

func featureToDTO(row feature.Row) featureDTO {
	columns := feature.GoalieRateColumns
	if row.Group() != roster.GroupGoalie {
		columns = make([]string, 0, 3*len(feature.SkaterRateColumns))
		for _, column := range feature.SkaterRateColumns {
			columns = append(columns, column, feature.LinePrefix+column, feature.PowerPlayPrefix+column)
		}
	}
	rates := make(map[string]float64, len(columns))
	for _, column := range columns {
		if v, err := row.Column(column); err == nil {
			rates[column] = v
		}
	}

	return featureDTO{
		Name:             row.Name,
		Position:         row.Position,
		Team:             row.Team,
		Opponent:         row.Opponent,
		GP:               row.GP,
		Rates:            rates,
		MeanEvTOI:        row.MeanEvTOI,
		MeanTOI:          row.MeanTOI,
		RegLine:          lineNumber(row.RegLine),
		PPLine:           lineNumber(row.PPLine),
		ImpliedTeamScore: row.ImpliedTeamScore,
		OverUnder:        row.OverUnder,
		ImpliedWinProb:   row.ImpliedWinProb,
		Salary:           row.Salary,
	}
}

func lineNumber(line roster.Line) *int {
	if !line.Valid {
		return nil
	}
	n := line.Number
	return &n
}
