package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Recorder persists run metrics. Safe for use from one process; the
// database lives under the flatbed home directory.
type Recorder struct {
	db *sql.DB
}

// Open opens or creates the metrics database at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics database: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{db: db}, nil
}

// Close releases the database handle.
func (r *Recorder) Close() error {
	return r.db.Close()
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			filename    TEXT NOT NULL,
			pages       INTEGER NOT NULL,
			sheets      INTEGER NOT NULL,
			tables      INTEGER NOT NULL,
			ocr_pages   INTEGER NOT NULL,
			error_pages INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS strategy_hits (
			run_id   TEXT NOT NULL,
			strategy TEXT NOT NULL,
			hits     INTEGER NOT NULL,
			PRIMARY KEY (run_id, strategy)
		)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("failed to create metrics schema: %w", err)
		}
	}
	return nil
}

// Record stores one run and its strategy hit counts.
func (r *Recorder) Record(ctx context.Context, m RunMetrics) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, filename, pages, sheets, tables, ocr_pages, error_pages, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Filename, m.Pages, m.Sheets, m.Tables, m.OCRPages, m.ErrorPages, m.Duration.Milliseconds())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert run %s: %w", m.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO strategy_hits (run_id, strategy, hits) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	strategies := make([]string, 0, len(m.Strategies))
	for s := range m.Strategies {
		strategies = append(strategies, s)
	}
	sort.Strings(strategies)
	for _, s := range strategies {
		if _, err := stmt.ExecContext(ctx, m.RunID, s, m.Strategies[s]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert strategy hits for %s: %w", s, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Summarize aggregates every recorded run.
func (r *Recorder) Summarize(ctx context.Context) (Summary, error) {
	var (
		s     Summary
		avgMS float64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(pages), 0),
			COALESCE(SUM(sheets), 0),
			COALESCE(SUM(tables), 0),
			COALESCE(SUM(ocr_pages), 0),
			COALESCE(SUM(error_pages), 0),
			COALESCE(AVG(duration_ms), 0)
		FROM runs`).Scan(&s.Runs, &s.Pages, &s.Sheets, &s.Tables, &s.OCRPages, &s.ErrorPages, &avgMS)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to aggregate runs: %w", err)
	}
	s.AvgDuration = time.Duration(avgMS * float64(time.Millisecond))

	rows, err := r.db.QueryContext(ctx,
		`SELECT strategy, SUM(hits) FROM strategy_hits GROUP BY strategy ORDER BY strategy`)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to aggregate strategy hits: %w", err)
	}
	defer rows.Close()

	s.Strategies = make(map[string]int)
	for rows.Next() {
		var (
			strategy string
			hits     int
		)
		if err := rows.Scan(&strategy, &hits); err != nil {
			return Summary{}, fmt.Errorf("failed to scan row: %w", err)
		}
		s.Strategies[strategy] = hits
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("error iterating rows: %w", err)
	}
	return s, nil
}
