package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/orbits/internal/loader"
	"github.com/banshee-data/orbits/internal/trajectory"
)

var (
	_ loader.Loader = (*DB)(nil)
	_ loader.Lister = (*DB)(nil)
)

// Run records one simulation that produced stored trajectories.
type Run struct {
	RunID           string  `json:"run_id"`
	TimestepSeconds float64 `json:"timestep_seconds"`
	Steps           int     `json:"steps"`
	Note            string  `json:"note"`
	CreatedAt       string  `json:"created_at"`
}

// RecordRun inserts a run and returns its generated id.
func (db *DB) RecordRun(ctx context.Context, timestep time.Duration, steps int, note string) (string, error) {
	runID := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO runs (run_id, timestep_seconds, steps, note) VALUES (?, ?, ?, ?)`,
		runID, timestep.Seconds(), steps, note,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return runID, nil
}

// Runs returns recorded runs, newest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT run_id, timestep_seconds, steps, note, created_at FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.TimestepSeconds, &r.Steps, &r.Note, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveTrajectory stores t under its body name, replacing any samples already
// stored for that body. runID may be empty for imported data.
func (db *DB) SaveTrajectory(ctx context.Context, runID string, t trajectory.Trajectory) error {
	if t.Body == "" {
		return fmt.Errorf("trajectory has no body name")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	run := sql.NullString{String: runID, Valid: runID != ""}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trajectories (body, run_id, sample_count) VALUES (?, ?, ?)
		ON CONFLICT(body) DO UPDATE SET
			run_id = excluded.run_id,
			sample_count = excluded.sample_count,
			updated_at = CURRENT_TIMESTAMP`,
		t.Body, run, t.Len(),
	); err != nil {
		return fmt.Errorf("failed to upsert trajectory %s: %w", t.Body, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM samples WHERE body = ?`, t.Body); err != nil {
		return fmt.Errorf("failed to clear samples for %s: %w", t.Body, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples (body, idx, t, x, y, z) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range t.Samples {
		if _, err := stmt.ExecContext(ctx, t.Body, i, s.T, s.X, s.Y, s.Z); err != nil {
			return fmt.Errorf("failed to insert sample %d for %s: %w", i, t.Body, err)
		}
	}

	return tx.Commit()
}

// Load returns the stored trajectory for body. The header and samples are
// read in one transaction so a concurrent SaveTrajectory cannot split them.
func (db *DB) Load(ctx context.Context, body string) (trajectory.Trajectory, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return trajectory.Trajectory{}, fmt.Errorf("failed to begin read: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, `SELECT sample_count FROM trajectories WHERE body = ?`, body).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return trajectory.Trajectory{}, fmt.Errorf("%w: %s", trajectory.ErrNotFound, body)
	}
	if err != nil {
		return trajectory.Trajectory{}, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT t, x, y, z FROM samples WHERE body = ? ORDER BY idx`, body)
	if err != nil {
		return trajectory.Trajectory{}, err
	}
	defer rows.Close()

	samples := make([]trajectory.Sample, 0, count)
	for rows.Next() {
		var s trajectory.Sample
		if err := rows.Scan(&s.T, &s.X, &s.Y, &s.Z); err != nil {
			return trajectory.Trajectory{}, err
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return trajectory.Trajectory{}, err
	}

	if len(samples) != count {
		return trajectory.Trajectory{}, fmt.Errorf("%w: %s has %d samples, expected %d",
			trajectory.ErrMalformed, body, len(samples), count)
	}

	return trajectory.Trajectory{Body: body, Samples: samples}, nil
}

// List returns every stored body name, sorted.
func (db *DB) List(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT body FROM trajectories ORDER BY body`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bodies := []string{}
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, rows.Err()
}

// DeleteTrajectory removes a body and its samples.
func (db *DB) DeleteTrajectory(ctx context.Context, body string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM trajectories WHERE body = ?`, body)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", trajectory.ErrNotFound, body)
	}
	return nil
}
