package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	qb "github.com/riskibarqy/hockey-projections/internal/platform/querybuilder"
)

const projectionArchiveTable = "projection_archive"

var projectionArchiveColumns = []string{
	"id", "game_date", "rank", "name", "position", "team", "opponent", "salary",
	"mean_toi", "proj_fp_per60", "proj_fp", "proj_value", "features",
	"created_at", "updated_at", "deleted_at",
}

// ProjectionArchiveRepository keeps every day's projections in Postgres. A
// replace soft-deletes the live rows for the date before inserting the new set.
type ProjectionArchiveRepository struct {
	db *sqlx.DB
}

func NewProjectionArchiveRepository(db *sqlx.DB) *ProjectionArchiveRepository {
	return &ProjectionArchiveRepository{db: db}
}

var _ projection.Archive = (*ProjectionArchiveRepository)(nil)

func (r *ProjectionArchiveRepository) ReplaceForDate(ctx context.Context, day time.Time, rows []projection.Row) error {
	gameDate := daykey.ISO(day)

	models := make([]any, 0, len(rows))
	for i, row := range rows {
		features, err := sonic.Marshal(row.Row)
		if err != nil {
			return fmt.Errorf("encode features name=%s: %w", row.Name, err)
		}
		models = append(models, projectionArchiveInsertModel{
			GameDate:    gameDate,
			Rank:        i + 1,
			Name:        row.Name,
			Position:    row.Position,
			Team:        row.Team,
			Opponent:    row.Opponent,
			Salary:      row.Salary,
			MeanTOI:     row.MeanTOI,
			ProjFPPer60: row.ProjFPPer60,
			ProjFP:      row.ProjFP,
			ProjValue:   row.ProjValue,
			Features:    string(features),
		})
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace projection archive: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.Update(projectionArchiveTable).
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("game_date", gameDate),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear projection archive query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear projection archive date=%s: %w", gameDate, err)
	}

	if len(models) > 0 {
		query, args, err := qb.InsertModels(projectionArchiveTable, models, `ON CONFLICT (game_date, name, position) WHERE deleted_at IS NULL
DO UPDATE SET
    rank = EXCLUDED.rank,
    team = EXCLUDED.team,
    opponent = EXCLUDED.opponent,
    salary = EXCLUDED.salary,
    mean_toi = EXCLUDED.mean_toi,
    proj_fp_per60 = EXCLUDED.proj_fp_per60,
    proj_fp = EXCLUDED.proj_fp,
    proj_value = EXCLUDED.proj_value,
    features = EXCLUDED.features,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build insert projection archive query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert projection archive date=%s rows=%d: %w", gameDate, len(models), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace projection archive tx: %w", err)
	}
	return nil
}

func (r *ProjectionArchiveRepository) ListByDate(ctx context.Context, day time.Time) ([]projection.Row, error) {
	query, args, err := qb.Select(projectionArchiveColumns...).From(projectionArchiveTable).
		Where(
			qb.Eq("game_date", daykey.ISO(day)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("rank", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list projection archive query: %w", err)
	}

	var rows []projectionArchiveTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list projection archive: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]projection.Row, 0, len(rows))
	for _, row := range rows {
		var base feature.Row
		if len(row.Features) > 0 {
			if err := sonic.Unmarshal(row.Features, &base); err != nil {
				return nil, fmt.Errorf("decode features id=%d: %w", row.ID, err)
			}
		}
		base.Date = daykey.Format(row.GameDate)
		base.Name = row.Name
		base.Position = row.Position
		base.Team = row.Team
		base.Opponent = row.Opponent
		base.Salary = row.Salary
		base.MeanTOI = row.MeanTOI

		out = append(out, projection.Row{
			Row:         base,
			ProjFPPer60: row.ProjFPPer60,
			ProjFP:      row.ProjFP,
			ProjValue:   row.ProjValue,
		})
	}
	return out, nil
}
