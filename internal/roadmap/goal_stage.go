package roadmap

import (
	"context"

	"github.com/alexanderramin/waypoint/internal/llm"
)

// goalTemperature favors determinism for structured extraction.
const goalTemperature = 0.2

// GoalExtractor turns a raw learning request into a GoalDescriptor.
type GoalExtractor interface {
	Extract(ctx context.Context, message string) (*GoalDescriptor, error)
}

type goalExtractor struct {
	gateway llm.Gateway
}

// NewGoalExtractor creates a GoalExtractor backed by a model gateway.
func NewGoalExtractor(gateway llm.Gateway) GoalExtractor {
	return &goalExtractor{gateway: gateway}
}

func (s *goalExtractor) Extract(ctx context.Context, message string) (*GoalDescriptor, error) {
	temp := goalTemperature
	resp, err := s.gateway.Complete(ctx, llm.CompletionRequest{
		Task:        llm.TaskGoalExtraction,
		Prompt:      BuildGoalExtractionPrompt(message),
		Schema:      GoalSchema(),
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}
	return ParseGoal(resp.Text)
}
