package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/hockey-projections/internal/domain/feature"
	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

func archiveDay() time.Time {
	return time.Date(2021, time.March, 6, 0, 0, 0, 0, time.UTC)
}

func TestProjectionArchiveRepository_ReplaceForDate(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewProjectionArchiveRepository(db)

	rows := []projection.Row{
		{Row: feature.Row{Date: "21_03_06", Name: "Alex Ovechkin", Position: "L", Team: "WSH", Opponent: "BOS", Salary: 8000, MeanTOI: 19.5}, ProjFPPer60: 30, ProjFP: 9.75, ProjValue: 1.21875},
		{Row: feature.Row{Date: "21_03_06", Name: "Charlie McAvoy", Position: "D", Team: "BOS", Opponent: "WSH", Salary: 6000, MeanTOI: 24}, ProjFPPer60: 20, ProjFP: 8, ProjValue: 1.3333},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE projection_archive SET deleted_at = NOW() WHERE game_date = $1 AND deleted_at IS NULL")).
		WithArgs("2021-03-06").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO projection_archive (game_date, rank, name, position, team, opponent, salary, mean_toi, proj_fp_per60, proj_fp, proj_value, features) VALUES")).
		WithArgs(
			"2021-03-06", 1, "Alex Ovechkin", "L", "WSH", "BOS", 8000.0, 19.5, 30.0, 9.75, 1.21875, sqlmock.AnyArg(),
			"2021-03-06", 2, "Charlie McAvoy", "D", "BOS", "WSH", 6000.0, 24.0, 20.0, 8.0, 1.3333, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := repo.ReplaceForDate(context.Background(), archiveDay(), rows); err != nil {
		t.Fatalf("replace for date: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectionArchiveRepository_ReplaceForDate_EmptyClearsOnly(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewProjectionArchiveRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE projection_archive SET deleted_at = NOW()")).
		WithArgs("2021-03-06").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.ReplaceForDate(context.Background(), archiveDay(), nil); err != nil {
		t.Fatalf("replace for date: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectionArchiveRepository_ReplaceForDate_RollsBackOnInsertFailure(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewProjectionArchiveRepository(db)
	insertErr := errors.New("unique violation")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE projection_archive SET deleted_at = NOW()")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO projection_archive")).
		WillReturnError(insertErr)
	mock.ExpectRollback()

	rows := []projection.Row{{Row: feature.Row{Name: "Alex Ovechkin", Position: "L"}}}
	err := repo.ReplaceForDate(context.Background(), archiveDay(), rows)
	if !errors.Is(err, insertErr) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectionArchiveRepository_ListByDate(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewProjectionArchiveRepository(db)
	created := time.Date(2021, time.March, 6, 15, 0, 0, 0, time.UTC)

	result := sqlmock.NewRows(projectionArchiveColumns).
		AddRow(int64(11), archiveDay(), 1, "Alex Ovechkin", "L", "WSH", "BOS", 8000.0, 19.5, 30.0, 9.75, 1.21875,
			[]byte(`{"GP":30,"EvSH":11.2,"ImpliedTeamScore":3.1}`), created, created, nil).
		AddRow(int64(12), archiveDay(), 2, "Charlie McAvoy", "D", "BOS", "WSH", 6000.0, 24.0, 20.0, 8.0, 1.3333,
			[]byte(nil), created, created, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM projection_archive WHERE game_date = $1 AND deleted_at IS NULL ORDER BY rank, id")).
		WithArgs("2021-03-06").
		WillReturnRows(result)

	got, err := repo.ListByDate(context.Background(), archiveDay())
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Name != "Alex Ovechkin" || got[0].Date != "21_03_06" || got[0].ProjFP != 9.75 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[0].GP != 30 || got[0].EvSH != 11.2 || got[0].ImpliedTeamScore != 3.1 {
		t.Fatalf("features were not decoded: %+v", got[0].Row)
	}
	if got[1].Position != "D" || got[1].MeanTOI != 24 {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectionArchiveRepository_ListByDate_Empty(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewProjectionArchiveRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM projection_archive")).
		WillReturnRows(sqlmock.NewRows(projectionArchiveColumns))

	got, err := repo.ListByDate(context.Background(), archiveDay())
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil rows, got %+v", got)
	}
}
