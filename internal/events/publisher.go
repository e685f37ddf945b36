// Package events publishes pipeline run outcomes to Redis so other services
// can follow roadmap generation through per-type timelines.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alexanderramin/waypoint/internal/roadmap"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TypeRoadmapGenerated = "roadmap.generated"
	TypeRoadmapFailed    = "roadmap.failed"

	// DefaultTTL bounds how long an individual event payload is kept.
	DefaultTTL = 7 * 24 * time.Hour
)

// pipeliner is the subset of *redis.Client the publisher needs.
type pipeliner interface {
	Pipeline() redis.Pipeliner
}

// Envelope is the stored form of an event.
type Envelope struct {
	ID        string          `json:"id"`
	Service   string          `json:"service"`
	Event     json.RawMessage `json:"event"`
	Timestamp int64           `json:"timestamp"`
}

// RunPayload is the event body for a finished pipeline run.
type RunPayload struct {
	Type           string `json:"type"`
	RunID          string `json:"run_id"`
	Goal           string `json:"goal,omitempty"`
	Stages         int    `json:"stages"`
	Nodes          int    `json:"nodes"`
	Calendar       bool   `json:"calendar"`
	CalendarReason string `json:"calendar_reason,omitempty"`
	Recovered      bool   `json:"recovered,omitempty"`
	Error          string `json:"error,omitempty"`
	DurationMs     int64  `json:"duration_ms"`
}

// Publisher writes run events to Redis. It implements roadmap.RunObserver.
type Publisher struct {
	client  pipeliner
	service string
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewPublisher creates a Publisher. service names the timeline the events
// are filed under; a nil logger uses slog.Default.
func NewPublisher(client *redis.Client, service string, logger *slog.Logger) *Publisher {
	return newPublisher(client, service, logger)
}

func newPublisher(client pipeliner, service string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, service: service, ttl: DefaultTTL, logger: logger, now: time.Now}
}

// ObserveRun publishes the outcome of a run. Redis failures are logged.
func (p *Publisher) ObserveRun(ctx context.Context, event roadmap.RunEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if _, err := p.Publish(ctx, PayloadFromRun(event)); err != nil {
		p.logger.WarnContext(ctx, "event_publish_failed", "run_id", event.RunID, "error", err)
	}
}

// Publish stores payload and files it under the global, service and type
// timelines in one pipeline. It returns the event ID.
func (p *Publisher) Publish(ctx context.Context, payload RunPayload) (string, error) {
	eventID := uuid.New().String()
	timestamp := p.now().Unix()

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	envelope, err := json.Marshal(Envelope{
		ID:        eventID,
		Service:   p.service,
		Event:     body,
		Timestamp: timestamp,
	})
	if err != nil {
		return "", err
	}

	score := float64(timestamp)
	pipe := p.client.Pipeline()
	pipe.Set(ctx, "event:"+eventID, envelope, p.ttl)
	pipe.ZAdd(ctx, "events:timeline", redis.Z{Score: score, Member: eventID})
	pipe.ZAdd(ctx, "events:service:"+p.service, redis.Z{Score: score, Member: eventID})
	pipe.ZAdd(ctx, "events:type:"+payload.Type, redis.Z{Score: score, Member: eventID})
	pipe.Publish(ctx, "events:"+p.service, envelope)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return eventID, nil
}

// PayloadFromRun converts a run event to its published form.
func PayloadFromRun(event roadmap.RunEvent) RunPayload {
	payload := RunPayload{
		Type:       TypeRoadmapGenerated,
		RunID:      event.RunID,
		DurationMs: event.Duration.Milliseconds(),
	}
	if event.Goal != nil {
		payload.Goal = event.Goal.Goal
	}
	if resp := event.Response; resp != nil {
		payload.Stages = len(resp.Roadmap)
		payload.Nodes = resp.Roadmap.NodeCount()
		payload.Calendar = resp.ShouldTriggerCalendar
		payload.CalendarReason = resp.CalendarIntentReason
		payload.Recovered = resp.Recovered
	}
	if event.Err != nil {
		payload.Type = TypeRoadmapFailed
		payload.Error = event.Err.Error()
	}
	return payload
}
