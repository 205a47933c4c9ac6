package tracker

import (
	"database/sql"
	"math"

	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/synthtrain/model"
)

const schema = `CREATE TABLE IF NOT EXISTS scalars (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	section TEXT NOT NULL,
	step    INTEGER NOT NULL,
	key     TEXT NOT NULL,
	value   REAL
)`

/*
SQLite appends records into the scalars table, one row per scalar
*/
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, model.Failure(model.ErrIOFailure, err, "open %v", path)
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, model.Failure(model.ErrIOFailure, err, "create scalars table in %v", path)
	}
	return &SQLite{db}, nil
}

func (q *SQLite) Close() error {
	return q.db.Close()
}

func (q *SQLite) Log(section string, step int, scalars map[string]float64) (err error) {
	tx, err := q.db.Begin()
	if err != nil {
		return model.Failure(model.ErrIOFailure, err, "log %v", section)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	for _, k := range keys(scalars) {
		if _, err = tx.Exec(`INSERT INTO scalars(section, step, key, value) VALUES (?, ?, ?, ?)`,
			section, step, k, nullable(scalars[k])); err != nil {
			return model.Failure(model.ErrIOFailure, err, "log %v", section)
		}
	}
	if err = tx.Commit(); err != nil {
		return model.Failure(model.ErrIOFailure, err, "log %v", section)
	}
	return nil
}

// NaN is stored as NULL
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

// Series returns values of the key logged under section ordered by logging
func (q *SQLite) Series(section, key string) (steps []int, values []float64, err error) {
	rows, err := q.db.Query(`SELECT step, value FROM scalars WHERE section = ? AND key = ? ORDER BY id`, section, key)
	if err != nil {
		return nil, nil, model.Failure(model.ErrIOFailure, err, "query %v/%v", section, key)
	}
	defer rows.Close()
	for rows.Next() {
		var s int
		var v sql.NullFloat64
		if err = rows.Scan(&s, &v); err != nil {
			return nil, nil, model.Failure(model.ErrIOFailure, err, "query %v/%v", section, key)
		}
		steps = append(steps, s)
		if v.Valid {
			values = append(values, v.Float64)
		} else {
			values = append(values, math.NaN())
		}
	}
	if err = rows.Err(); err != nil {
		return nil, nil, model.Failure(model.ErrIOFailure, err, "query %v/%v", section, key)
	}
	return
}
