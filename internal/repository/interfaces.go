package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/waypoint/internal/llm"
)

// RunRecord is the stored summary of one pipeline run.
type RunRecord struct {
	ID            string
	Message       string
	Goal          string
	Stages        int
	Nodes         int
	Calendar      bool
	Recovered     bool
	Error         string
	SchemaVersion string
	StartedAt     time.Time
	DurationMs    int64
}

type CallLogRepo interface {
	Create(ctx context.Context, e *llm.LLMCallEvent) error
	ListRecent(ctx context.Context, limit int) ([]*llm.LLMCallEvent, error)
	ListByRun(ctx context.Context, runID string) ([]*llm.LLMCallEvent, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type RunRepo interface {
	Create(ctx context.Context, r *RunRecord) error
	GetByID(ctx context.Context, id string) (*RunRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*RunRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
