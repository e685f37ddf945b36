package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/waypoint/internal/db"
	"github.com/alexanderramin/waypoint/internal/llm"
)

// SQLiteCallLogRepo implements CallLogRepo using a SQLite database.
type SQLiteCallLogRepo struct {
	db db.DBTX
}

// NewSQLiteCallLogRepo creates a new SQLiteCallLogRepo.
func NewSQLiteCallLogRepo(conn db.DBTX) *SQLiteCallLogRepo {
	return &SQLiteCallLogRepo{db: conn}
}

const callColumns = `id, run_id, task, provider, model, attempts, latency_ms, success, error_code, created_at`

func (r *SQLiteCallLogRepo) Create(ctx context.Context, e *llm.LLMCallEvent) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	query := `INSERT INTO llm_calls (` + callColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.CallID,
		e.RunID,
		string(e.Task),
		string(e.Provider),
		e.Model,
		e.Attempts,
		e.LatencyMs,
		boolToInt(e.Success),
		e.ErrorCode,
		formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("inserting llm call: %w", err)
	}
	return nil
}

// ListRecent returns the newest calls first.
func (r *SQLiteCallLogRepo) ListRecent(ctx context.Context, limit int) ([]*llm.LLMCallEvent, error) {
	query := `SELECT ` + callColumns + ` FROM llm_calls ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent llm calls: %w", err)
	}
	defer rows.Close()
	return r.scanCalls(rows)
}

// ListByRun returns the calls made by one pipeline run in call order.
func (r *SQLiteCallLogRepo) ListByRun(ctx context.Context, runID string) ([]*llm.LLMCallEvent, error) {
	query := `SELECT ` + callColumns + ` FROM llm_calls WHERE run_id = ? ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("listing llm calls by run: %w", err)
	}
	defer rows.Close()
	return r.scanCalls(rows)
}

func (r *SQLiteCallLogRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM llm_calls WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("deleting llm calls: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteCallLogRepo) scanCalls(rows *sql.Rows) ([]*llm.LLMCallEvent, error) {
	var calls []*llm.LLMCallEvent
	for rows.Next() {
		var e llm.LLMCallEvent
		var task, provider, createdAt string
		var success int

		err := rows.Scan(
			&e.CallID, &e.RunID, &task, &provider, &e.Model,
			&e.Attempts, &e.LatencyMs, &success, &e.ErrorCode, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning llm call row: %w", err)
		}

		e.Task = llm.TaskType(task)
		e.Provider = llm.Provider(provider)
		e.Success = intToBool(success)
		if e.At, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		calls = append(calls, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating llm calls: %w", err)
	}
	return calls, nil
}
