package roadmap

import "github.com/alexanderramin/waypoint/internal/llm"

// SchemaVersion identifies the schema + prompt pair. Bump it whenever either
// the descriptors below or the guideline text in prompts.go changes.
const SchemaVersion = "3"

// ResourcesPerNode is the number of resources every roadmap node carries.
const ResourcesPerNode = 3

var (
	goalSchema      = buildGoalSchema()
	roadmapSchema   = buildRoadmapSchema()
	stageListSchema = buildStageListSchema()
)

// GoalSchema returns a copy of the output contract for goal extraction.
func GoalSchema() *llm.Schema { return goalSchema.Clone() }

// RoadmapSchema returns a copy of the output contract for roadmap generation.
func RoadmapSchema() *llm.Schema { return roadmapSchema.Clone() }

// StageListSchema returns a copy of the contract for the roadmap's stage
// array alone, as used by fallback recovery.
func StageListSchema() *llm.Schema { return stageListSchema.Clone() }

func buildGoalSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"goal": {
				Type:        llm.TypeString,
				Description: "The skill or topic the user wants to learn, as a short noun phrase.",
			},
			"known": {
				Type:        llm.TypeArray,
				Description: "Topics the user already knows.",
				Items:       &llm.Schema{Type: llm.TypeString},
				Nullable:    true,
			},
			"experienceLevel": {
				Type:     llm.TypeString,
				Enum:     []string{string(LevelBeginner), string(LevelIntermediate), string(LevelAdvanced)},
				Nullable: true,
			},
			"formatPreference": {
				Type:     llm.TypeString,
				Enum:     []string{string(FormatVideo), string(FormatArticle), string(FormatProject), string(FormatMixed)},
				Nullable: true,
			},
			"timeframe": {
				Type:        llm.TypeString,
				Description: "How long the user wants the plan to take, in their words.",
				Nullable:    true,
			},
			"specificFocus": {
				Type:     llm.TypeArray,
				Items:    &llm.Schema{Type: llm.TypeString},
				Nullable: true,
			},
		},
		Required: []string{"goal"},
	}
}

func buildRoadmapSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"roadmap":         buildStageListSchema(),
			"triggerCalendar": {Type: llm.TypeBoolean},
			"calendarIntentReason": {
				Type:     llm.TypeString,
				Nullable: true,
			},
		},
		Required: []string{"roadmap", "triggerCalendar"},
	}
}

func buildStageListSchema() *llm.Schema {
	resource := &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"type":        {Type: llm.TypeString, Description: "video, article, course, documentation, project or book"},
			"title":       {Type: llm.TypeString},
			"link":        {Type: llm.TypeString, Description: "Absolute https URL."},
			"description": {Type: llm.TypeString},
		},
		Required: []string{"type", "title", "link", "description"},
	}
	node := &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"id":          {Type: llm.TypeString},
			"title":       {Type: llm.TypeString},
			"description": {Type: llm.TypeString},
			"resources": {
				Type:     llm.TypeArray,
				Items:    resource,
				MinItems: ResourcesPerNode,
				MaxItems: ResourcesPerNode,
			},
		},
		Required: []string{"id", "title", "description", "resources"},
	}
	stage := &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"id":          {Type: llm.TypeString},
			"title":       {Type: llm.TypeString},
			"description": {Type: llm.TypeString},
			"nodes":       {Type: llm.TypeArray, Items: node},
		},
		Required: []string{"id", "title", "description", "nodes"},
	}
	return &llm.Schema{Type: llm.TypeArray, Items: stage, MinItems: 1}
}
