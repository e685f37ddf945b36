package roadmap

import (
	"context"

	"github.com/alexanderramin/waypoint/internal/llm"
)

// roadmapTemperature favors variety in roadmap content.
const roadmapTemperature = 0.7

// RoadmapGenerator builds a roadmap and calendar-intent signal for a goal.
type RoadmapGenerator interface {
	Generate(ctx context.Context, goal GoalDescriptor, originalMessage string) (*RoadmapResponse, error)
}

type roadmapGenerator struct {
	gateway llm.Gateway
}

// NewRoadmapGenerator creates a RoadmapGenerator backed by a model gateway.
func NewRoadmapGenerator(gateway llm.Gateway) RoadmapGenerator {
	return &roadmapGenerator{gateway: gateway}
}

func (s *roadmapGenerator) Generate(ctx context.Context, goal GoalDescriptor, originalMessage string) (*RoadmapResponse, error) {
	temp := roadmapTemperature
	resp, err := s.gateway.Complete(ctx, llm.CompletionRequest{
		Task:        llm.TaskRoadmap,
		Prompt:      BuildRoadmapPrompt(goal, originalMessage),
		Schema:      RoadmapSchema(),
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}
	return ParseRoadmap(resp.Text)
}
