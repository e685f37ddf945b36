package roadmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/waypoint/internal/llm"
)

// roadmapPayload is the wire shape of the roadmap-generation response.
type roadmapPayload struct {
	Roadmap              Roadmap `json:"roadmap"`
	TriggerCalendar      bool    `json:"triggerCalendar"`
	CalendarIntentReason *string `json:"calendarIntentReason"`
}

// ParseGoal strictly decodes a goal-extraction response. There is no fallback
// path: the payload is a single object and any decode failure is terminal.
func ParseGoal(raw string) (*GoalDescriptor, error) {
	goal, err := llm.DecodeStrict(raw, goalSchema, validateGoal)
	if err != nil {
		return nil, err
	}
	normalizeGoal(&goal)
	return &goal, nil
}

// ParseRoadmap decodes a roadmap-generation response. When strict decoding
// fails, the first array embedded in the text is decoded as the stage list
// and a partial response with calendar fields defaulted is returned.
func ParseRoadmap(raw string) (*RoadmapResponse, error) {
	payload, err := llm.DecodeStrict(raw, roadmapSchema, validateRoadmapPayload)
	if err == nil {
		resp := &RoadmapResponse{
			Roadmap:               payload.Roadmap,
			ShouldTriggerCalendar: payload.TriggerCalendar,
		}
		if payload.CalendarIntentReason != nil {
			resp.CalendarIntentReason = strings.TrimSpace(*payload.CalendarIntentReason)
		}
		return resp, nil
	}

	var unparsable *llm.UnparsableError
	if !errors.As(err, &unparsable) {
		return nil, err
	}

	stages, recoverErr := llm.RecoverArray[RoadmapStage](raw, stageListSchema)
	if recoverErr != nil {
		return nil, err
	}
	if vErr := validateStages(stages); vErr != nil {
		return nil, err
	}
	return &RoadmapResponse{
		Roadmap:   stages,
		Recovered: true,
	}, nil
}

func validateGoal(g GoalDescriptor) error {
	if strings.TrimSpace(g.Goal) == "" {
		return fmt.Errorf("goal must not be empty")
	}
	return nil
}

func validateRoadmapPayload(p roadmapPayload) error {
	return validateStages(p.Roadmap)
}

// validateStages checks identifier uniqueness, which the schema vocabulary
// cannot express. Stage count and resource count are schema rules.
func validateStages(stages []RoadmapStage) error {
	stageIDs := make(map[string]bool, len(stages))
	for i, s := range stages {
		if s.ID == "" {
			return fmt.Errorf("stage %d has no id", i)
		}
		if stageIDs[s.ID] {
			return fmt.Errorf("duplicate stage id %q", s.ID)
		}
		stageIDs[s.ID] = true

		nodeIDs := make(map[string]bool, len(s.Nodes))
		for _, n := range s.Nodes {
			if n.ID == "" {
				return fmt.Errorf("stage %q has a node without id", s.ID)
			}
			if nodeIDs[n.ID] {
				return fmt.Errorf("duplicate node id %q in stage %q", n.ID, s.ID)
			}
			nodeIDs[n.ID] = true
		}
	}
	return nil
}

func normalizeGoal(g *GoalDescriptor) {
	g.Goal = strings.TrimSpace(g.Goal)
	g.Timeframe = strings.TrimSpace(g.Timeframe)
	if g.Known == nil {
		g.Known = []string{}
	}
	if g.SpecificFocus == nil {
		g.SpecificFocus = []string{}
	}
}
