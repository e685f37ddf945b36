package roadmap

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/google/uuid"
)

// Pipeline is the entry point: it extracts a goal from the request and then
// generates a roadmap for it.
type Pipeline interface {
	GenerateRoadmap(ctx context.Context, message string) (*RoadmapResponse, error)
}

type pipeline struct {
	goals    GoalExtractor
	roadmaps RoadmapGenerator
	observer RunObserver
}

// NewPipeline composes the two stages. Each call runs them sequentially with
// no retries and no caching between calls.
func NewPipeline(goals GoalExtractor, roadmaps RoadmapGenerator, observers ...RunObserver) Pipeline {
	return &pipeline{
		goals:    goals,
		roadmaps: roadmaps,
		observer: runObserverOrNoop(observers),
	}
}

func (p *pipeline) GenerateRoadmap(ctx context.Context, message string) (*RoadmapResponse, error) {
	runID := uuid.NewString()
	ctx = llm.WithRunID(ctx, runID)
	event := RunEvent{RunID: runID, Message: message, StartedAt: time.Now()}

	resp, err := p.run(ctx, runID, message, &event)

	event.Duration = time.Since(event.StartedAt)
	event.Response = resp
	event.Err = err
	p.observer.ObserveRun(ctx, event)

	return resp, err
}

func (p *pipeline) run(ctx context.Context, runID, message string, event *RunEvent) (*RoadmapResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	goal, err := p.goals.Extract(ctx, message)
	if err != nil {
		return nil, &PipelineError{RunID: runID, Stage: StageGoalExtraction, Err: err}
	}
	event.Goal = goal

	resp, err := p.roadmaps.Generate(ctx, *goal, message)
	if err != nil {
		return nil, &PipelineError{RunID: runID, Stage: StageRoadmapGeneration, Err: err}
	}
	return resp, nil
}
