package checkpoint

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/synthtrain/model"
	"golang.org/x/xerrors"
)

const schema = `CREATE TABLE IF NOT EXISTS checkpoints (
	milestone TEXT PRIMARY KEY,
	step      INTEGER NOT NULL,
	model     BLOB NOT NULL,
	optimizer BLOB NOT NULL
)`

/*
SQLite keeps checkpoints as rows of the checkpoints table, one row per milestone
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
		return nil, model.Failure(model.ErrIOFailure, err, "create checkpoints table in %v", path)
	}
	return &SQLite{db}, nil
}

func (q *SQLite) Close() error {
	return q.db.Close()
}

func (q *SQLite) Save(m Milestone, s State) error {
	mb, err := encode(s.Model)
	if err != nil {
		return model.Failure(model.ErrIOFailure, err, "encode model of %v", m)
	}
	ob, err := encode(s.Optimizer)
	if err != nil {
		return model.Failure(model.ErrIOFailure, err, "encode optimizer of %v", m)
	}
	_, err = q.db.Exec(
		`INSERT OR REPLACE INTO checkpoints(milestone, step, model, optimizer) VALUES (?, ?, ?, ?)`,
		m.String(), s.Step, mb, ob)
	if err != nil {
		return model.Failure(model.ErrIOFailure, err, "save checkpoint %v", m)
	}
	return nil
}

func (q *SQLite) Load(m Milestone) (s State, err error) {
	var mb, ob []byte
	err = q.db.QueryRow(
		`SELECT step, model, optimizer FROM checkpoints WHERE milestone = ?`, m.String()).
		Scan(&s.Step, &mb, &ob)
	if err == sql.ErrNoRows {
		return s, xerrors.Errorf("milestone %v: %w", m, ErrNotFound)
	}
	if err != nil {
		return s, model.Failure(model.ErrIOFailure, err, "load checkpoint %v", m)
	}
	if err = decode(mb, &s.Model); err != nil {
		return s, model.Failure(model.ErrIOFailure, err, "decode model of %v", m)
	}
	if err = decode(ob, &s.Optimizer); err != nil {
		return s, model.Failure(model.ErrIOFailure, err, "decode optimizer of %v", m)
	}
	return s, nil
}

// Milestones lists stored milestones, periodic ones ascending and final last
func (q *SQLite) Milestones() ([]Milestone, error) {
	rows, err := q.db.Query(`SELECT milestone FROM checkpoints ORDER BY milestone = 'final', step`)
	if err != nil {
		return nil, model.Failure(model.ErrIOFailure, err, "list checkpoints")
	}
	defer rows.Close()
	r := []Milestone{}
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, model.Failure(model.ErrIOFailure, err, "list checkpoints")
		}
		m, err := ParseMilestone(name)
		if err != nil {
			return nil, err
		}
		r = append(r, m)
	}
	if err = rows.Err(); err != nil {
		return nil, model.Failure(model.ErrIOFailure, err, "list checkpoints")
	}
	return r, nil
}
