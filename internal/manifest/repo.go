package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/logpub/internal/apperr"
	"github.com/starford/logpub/internal/models"
)

// Run is the summary of one export.
type Run struct {
	ID         int64     `json:"id"`
	FinishedAt time.Time `json:"finished_at"`
	Written    int       `json:"written"`
	Pruned     int       `json:"pruned"`
	Failed     int       `json:"failed"`
}

// Paths returns the output paths recorded by the last export, sorted.
func (db *DB) Paths(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path FROM exports ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("manifest: paths: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("manifest: scan path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Replace makes records the complete set of exported files.
func (db *DB) Replace(ctx context.Context, records []models.ExportRecord) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("manifest: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.ExecContext(ctx, `DELETE FROM exports`); err != nil {
		return fmt.Errorf("manifest: clear: %w", err)
	}
	if len(records) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO exports (path, title, url, checksum, exported_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				title       = excluded.title,
				url         = excluded.url,
				checksum    = excluded.checksum,
				exported_at = excluded.exported_at
		`)
		if err != nil {
			return fmt.Errorf("manifest: prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range records {
			if _, err := stmt.ExecContext(ctx, r.Path, r.Title, r.URL, r.Checksum, r.ExportedAt.UTC()); err != nil {
				return fmt.Errorf("manifest: insert %s: %w", r.Path, err)
			}
		}
	}
	return tx.Commit()
}

// RecordRun appends an export summary.
func (db *DB) RecordRun(ctx context.Context, r Run) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO runs (finished_at, written, pruned, failed) VALUES (?, ?, ?, ?)`,
		r.FinishedAt.UTC(), r.Written, r.Pruned, r.Failed)
	if err != nil {
		return fmt.Errorf("manifest: record run: %w", err)
	}
	return nil
}

// LastRun returns the most recent export summary.
func (db *DB) LastRun(ctx context.Context) (*Run, error) {
	var r Run
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, finished_at, written, pruned, failed FROM runs ORDER BY id DESC LIMIT 1`,
	).Scan(&r.ID, &r.FinishedAt, &r.Written, &r.Pruned, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("manifest: last run: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: last run: %w", err)
	}
	return &r, nil
}
