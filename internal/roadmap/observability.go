package roadmap

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// RunEvent captures the outcome of one pipeline run.
type RunEvent struct {
	RunID     string
	Message   string
	Goal      *GoalDescriptor
	Response  *RoadmapResponse
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// RunObserver receives pipeline run events.
type RunObserver interface {
	ObserveRun(ctx context.Context, event RunEvent)
}

// NoopRunObserver ignores all events.
type NoopRunObserver struct{}

func (NoopRunObserver) ObserveRun(context.Context, RunEvent) {}

// MultiRunObserver fans an event out to every non-nil observer.
type MultiRunObserver []RunObserver

func (m MultiRunObserver) ObserveRun(ctx context.Context, event RunEvent) {
	for _, o := range m {
		if o != nil {
			o.ObserveRun(ctx, event)
		}
	}
}

type logRunObserver struct {
	logger *slog.Logger
}

// NewLogRunObserver writes pipeline run events to the provided writer.
func NewLogRunObserver(w io.Writer) RunObserver {
	if w == nil {
		return NoopRunObserver{}
	}
	return &logRunObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logRunObserver) ObserveRun(ctx context.Context, event RunEvent) {
	attrs := make([]any, 0, 14)
	attrs = append(attrs,
		"run_id", event.RunID,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Err == nil,
	)
	if event.Goal != nil {
		attrs = append(attrs, "goal", event.Goal.Goal)
	}
	if event.Response != nil {
		attrs = append(attrs,
			"stages", len(event.Response.Roadmap),
			"nodes", event.Response.Roadmap.NodeCount(),
			"calendar", event.Response.ShouldTriggerCalendar,
			"recovered", event.Response.Recovered,
		)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "roadmap_run", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "roadmap_run", attrs...)
}

func runObserverOrNoop(observers []RunObserver) RunObserver {
	var live MultiRunObserver
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopRunObserver{}
	case 1:
		return live[0]
	default:
		return live
	}
}
