package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/roadmap"
)

const writeTimeout = 5 * time.Second

// CallLogObserver persists every upstream call through a CallLogRepo.
// Write failures are logged and never reach the caller.
type CallLogObserver struct {
	repo   CallLogRepo
	logger *slog.Logger
}

// NewCallLogObserver creates an llm.Observer backed by repo. A nil logger
// uses slog.Default.
func NewCallLogObserver(repo CallLogRepo, logger *slog.Logger) *CallLogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CallLogObserver{repo: repo, logger: logger}
}

func (o *CallLogObserver) OnCallComplete(event llm.LLMCallEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := o.repo.Create(ctx, &event); err != nil {
		o.logger.Warn("call_log_write_failed", "call_id", event.CallID, "error", err)
	}
}

// RunRecorder persists a summary of every pipeline run through a RunRepo.
type RunRecorder struct {
	repo   RunRepo
	logger *slog.Logger
}

// NewRunRecorder creates a roadmap.RunObserver backed by repo.
func NewRunRecorder(repo RunRepo, logger *slog.Logger) *RunRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunRecorder{repo: repo, logger: logger}
}

func (r *RunRecorder) ObserveRun(ctx context.Context, event roadmap.RunEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := r.repo.Create(ctx, RunRecordFromEvent(event)); err != nil {
		r.logger.WarnContext(ctx, "run_record_write_failed", "run_id", event.RunID, "error", err)
	}
}

// RunRecordFromEvent summarizes a run event for storage.
func RunRecordFromEvent(event roadmap.RunEvent) *RunRecord {
	rec := &RunRecord{
		ID:            event.RunID,
		Message:       event.Message,
		SchemaVersion: roadmap.SchemaVersion,
		StartedAt:     event.StartedAt,
		DurationMs:    event.Duration.Milliseconds(),
	}
	if event.Goal != nil {
		rec.Goal = event.Goal.Goal
	}
	if resp := event.Response; resp != nil {
		rec.Stages = len(resp.Roadmap)
		rec.Nodes = resp.Roadmap.NodeCount()
		rec.Calendar = resp.ShouldTriggerCalendar
		rec.Recovered = resp.Recovered
	}
	if event.Err != nil {
		rec.Error = event.Err.Error()
	}
	return rec
}
