package cli

import (
	"fmt"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/roadmap"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	schemas := map[string]func() *llm.Schema{
		"goal":    roadmap.GoalSchema,
		"roadmap": roadmap.RoadmapSchema,
		"stages":  roadmap.StageListSchema,
	}

	return &cobra.Command{
		Use:       "schema [goal|roadmap|stages]",
		Short:     "Print an output schema as JSON Schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"goal", "roadmap", "stages"},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := schemas[args[0]]().JSONSchema()
			doc["$comment"] = fmt.Sprintf("waypoint schema version %s", roadmap.SchemaVersion)
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}
}
