package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/waypoint/internal/db"
)

// SQLiteRunRepo implements RunRepo using a SQLite database.
type SQLiteRunRepo struct {
	db db.DBTX
}

// NewSQLiteRunRepo creates a new SQLiteRunRepo.
func NewSQLiteRunRepo(conn db.DBTX) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: conn}
}

const runColumns = `id, message, goal, stages, nodes, calendar, recovered, error, schema_version, started_at, duration_ms`

func (r *SQLiteRunRepo) Create(ctx context.Context, rec *RunRecord) error {
	query := `INSERT INTO roadmap_runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Message,
		rec.Goal,
		rec.Stages,
		rec.Nodes,
		boolToInt(rec.Calendar),
		boolToInt(rec.Recovered),
		rec.Error,
		rec.SchemaVersion,
		formatTime(rec.StartedAt),
		rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("inserting roadmap run: %w", err)
	}
	return nil
}

func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*RunRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM roadmap_runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("roadmap run: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning roadmap run: %w", err)
	}
	return rec, nil
}

// ListRecent returns the newest runs first.
func (r *SQLiteRunRepo) ListRecent(ctx context.Context, limit int) ([]*RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM roadmap_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent roadmap runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning roadmap run row: %w", err)
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roadmap runs: %w", err)
	}
	return runs, nil
}

func (r *SQLiteRunRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roadmap_runs WHERE started_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("deleting roadmap runs: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var calendar, recovered int
	var startedAt string

	err := row.Scan(
		&rec.ID, &rec.Message, &rec.Goal, &rec.Stages, &rec.Nodes,
		&calendar, &recovered, &rec.Error, &rec.SchemaVersion, &startedAt, &rec.DurationMs,
	)
	if err != nil {
		return nil, err
	}
	rec.Calendar = intToBool(calendar)
	rec.Recovered = intToBool(recovered)
	if rec.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	return &rec, nil
}
