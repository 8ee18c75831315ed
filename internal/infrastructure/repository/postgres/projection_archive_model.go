package postgres

import "time"

type projectionArchiveTableModel struct {
	ID          int64      `db:"id"`
	GameDate    time.Time  `db:"game_date"`
	Rank        int        `db:"rank"`
	Name        string     `db:"name"`
	Position    string     `db:"position"`
	Team        string     `db:"team"`
	Opponent    string     `db:"opponent"`
	Salary      float64    `db:"salary"`
	MeanTOI     float64    `db:"mean_toi"`
	ProjFPPer60 float64    `db:"proj_fp_per60"`
	ProjFP      float64    `db:"proj_fp"`
	ProjValue   float64    `db:"proj_value"`
	Features    []byte     `db:"features"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type projectionArchiveInsertModel struct {
	GameDate    string  `db:"game_date"`
	Rank        int     `db:"rank"`
	Name        string  `db:"name"`
	Position    string  `db:"position"`
	Team        string  `db:"team"`
	Opponent    string  `db:"opponent"`
	Salary      float64 `db:"salary"`
	MeanTOI     float64 `db:"mean_toi"`
	ProjFPPer60 float64 `db:"proj_fp_per60"`
	ProjFP      float64 `db:"proj_fp"`
	ProjValue   float64 `db:"proj_value"`
	Features    string  `db:"features"`
}
