// Package store persists the run ledger: one row per pipeline stage
// invocation, kept locally so past batches stay auditable next to their CSV
// checkpoints.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/eligibility-cli/internal/model"
)

// timeLayout is RFC 3339 with fixed-width fractional seconds, so stored
// timestamps sort chronologically under SQLite's text collation.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Ledger records stage runs in a local SQLite database.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at path and configures WAL
// mode.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open ledger")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Ledger{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS stage_runs (
	id           TEXT PRIMARY KEY,
	stage        TEXT NOT NULL,
	inputs       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	rows_in      INTEGER NOT NULL DEFAULT 0,
	rows_out     INTEGER NOT NULL DEFAULT 0,
	rows_skipped INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE INDEX IF NOT EXISTS idx_stage_runs_stage ON stage_runs(stage);
CREATE INDEX IF NOT EXISTS idx_stage_runs_started_at ON stage_runs(started_at);
`

// Migrate applies the ledger schema.
func (l *Ledger) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Begin inserts a running ledger entry for a stage and returns it.
func (l *Ledger) Begin(ctx context.Context, stage model.Stage, inputs []string) (*model.StageRun, error) {
	run := &model.StageRun{
		ID:        uuid.New().String(),
		Stage:     stage,
		Inputs:    inputs,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal inputs")
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO stage_runs (id, stage, inputs, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(stage), string(inputsJSON), string(run.Status),
		run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: insert stage run")
	}
	return run, nil
}

// Finish marks a run succeeded or failed and records its row counts.
func (l *Ledger) Finish(ctx context.Context, run *model.StageRun, runErr error) error {
	run.FinishedAt = time.Now().UTC()
	run.Status = model.RunStatusSucceeded
	if runErr != nil {
		run.Status = model.RunStatusFailed
		run.Error = runErr.Error()
	}

	res, err := l.db.ExecContext(ctx,
		`UPDATE stage_runs
		 SET status = ?, rows_in = ?, rows_out = ?, rows_skipped = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		string(run.Status), run.RowsIn, run.RowsOut, run.RowsSkipped,
		nullable(run.Error), run.FinishedAt.Format(timeLayout), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "store: finish run %s", run.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Errorf("store: run %s not found", run.ID)
	}
	return nil
}

// List returns the most recent runs, newest first, optionally filtered by
// stage. A non-positive limit returns everything.
func (l *Ledger) List(ctx context.Context, stage model.Stage, limit int) ([]model.StageRun, error) {
	query := `SELECT id, stage, inputs, status, rows_in, rows_out, rows_skipped,
	                 error, started_at, finished_at
	          FROM stage_runs`
	var args []any
	if stage != "" {
		query += ` WHERE stage = ?`
		args = append(args, string(stage))
	}
	query += ` ORDER BY started_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var runs []model.StageRun
	for rows.Next() {
		var (
			run        model.StageRun
			inputsJSON string
			runError   sql.NullString
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(
			&run.ID, &run.Stage, &inputsJSON, &run.Status,
			&run.RowsIn, &run.RowsOut, &run.RowsSkipped,
			&runError, &startedAt, &finishedAt,
		); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		run.Error = runError.String
		if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, eris.Wrapf(err, "store: parse started_at for run %s", run.ID)
		}
		if finishedAt.Valid {
			if run.FinishedAt, err = time.Parse(timeLayout, finishedAt.String); err != nil {
				return nil, eris.Wrapf(err, "store: parse finished_at for run %s", run.ID)
			}
		}
		if err := json.Unmarshal([]byte(inputsJSON), &run.Inputs); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal inputs for run %s", run.ID)
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "store: iterate runs")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
