// Package roadmap turns a free-text learning request into a structured
// learning roadmap through two schema-constrained model calls: goal
// extraction, then roadmap generation with calendar-intent detection.
package roadmap

// ExperienceLevel is the learner's self-described or inferred proficiency.
// The empty value means the level is unknown.
type ExperienceLevel string

const (
	LevelBeginner     ExperienceLevel = "beginner"
	LevelIntermediate ExperienceLevel = "intermediate"
	LevelAdvanced     ExperienceLevel = "advanced"
)

// FormatPreference is the preferred kind of learning resource.
// The empty value means no preference was stated or inferred.
type FormatPreference string

const (
	FormatVideo   FormatPreference = "video"
	FormatArticle FormatPreference = "article"
	FormatProject FormatPreference = "project"
	FormatMixed   FormatPreference = "mixed"
)

// GoalDescriptor is the normalized representation of what a user wants to learn.
type GoalDescriptor struct {
	Goal             string           `json:"goal"`
	Known            []string         `json:"known"`
	ExperienceLevel  ExperienceLevel  `json:"experienceLevel,omitempty"`
	FormatPreference FormatPreference `json:"formatPreference,omitempty"`
	Timeframe        string           `json:"timeframe,omitempty"`
	SpecificFocus    []string         `json:"specificFocus"`
}

// ResourceItem is one learning resource attached to a roadmap node.
type ResourceItem struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// RoadmapNode is a single topic within a stage.
type RoadmapNode struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Resources   []ResourceItem `json:"resources"`
}

// RoadmapStage groups nodes into one step of the progression.
type RoadmapStage struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Nodes       []RoadmapNode `json:"nodes"`
}

// Roadmap is the ordered list of stages; order is progression order.
type Roadmap []RoadmapStage

// RoadmapResponse is the terminal artifact of one pipeline run.
type RoadmapResponse struct {
	Roadmap               Roadmap `json:"roadmap"`
	ShouldTriggerCalendar bool    `json:"shouldTriggerCalendar"`
	CalendarIntentReason  string  `json:"calendarIntentReason,omitempty"`

	// Recovered is set when the roadmap came from fallback array recovery;
	// calendar fields then hold their safe defaults.
	Recovered bool `json:"recovered,omitempty"`
}

// NodeCount returns the total number of nodes across all stages.
func (r Roadmap) NodeCount() int {
	n := 0
	for _, s := range r {
		n += len(s.Nodes)
	}
	return n
}
