package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/repository"
)

// FormatCallLog renders recent upstream calls as a table.
func FormatCallLog(calls []*llm.LLMCallEvent) string {
	if len(calls) == 0 {
		return Dim("No model calls recorded yet.") + "\n"
	}

	rows := make([][]string, 0, len(calls))
	succeeded := 0
	for _, c := range calls {
		if c.Success {
			succeeded++
		}
		rows = append(rows, []string{
			HumanTimestamp(c.At),
			string(c.Task),
			fmt.Sprintf("%s/%s", c.Provider, c.Model),
			fmt.Sprintf("%d", c.Attempts),
			FormatLatency(c.LatencyMs),
			StatusIndicator(c.Success, c.ErrorCode),
			TruncID(c.RunID),
		})
	}

	var b strings.Builder
	b.WriteString(Header("Model Calls"))
	b.WriteString("\n")
	b.WriteString(RenderTable([]string{"WHEN", "TASK", "MODEL", "TRIES", "LATENCY", "STATUS", "RUN"}, rows))
	b.WriteString("\n")
	b.WriteString(RenderSuccessRate(succeeded, len(calls), 20))
	b.WriteString("\n")
	return b.String()
}

// FormatRuns renders recent pipeline runs as a table.
func FormatRuns(runs []*repository.RunRecord) string {
	if len(runs) == 0 {
		return Dim("No roadmap runs recorded yet.") + "\n"
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		outcome := StatusIndicator(r.Error == "", "failed")
		if r.Recovered {
			outcome = StyleYellow.Render("~ recovered")
		}
		calendar := Dim("—")
		if r.Calendar {
			calendar = StyleGreen.Render("yes")
		}
		rows = append(rows, []string{
			HumanTimestamp(r.StartedAt),
			Truncate(r.Message, 40),
			r.Goal,
			fmt.Sprintf("%d/%d", r.Stages, r.Nodes),
			calendar,
			FormatLatency(r.DurationMs),
			outcome,
			TruncID(r.ID),
		})
	}

	var b strings.Builder
	b.WriteString(Header("Roadmap Runs"))
	b.WriteString("\n")
	b.WriteString(RenderTable([]string{"WHEN", "REQUEST", "GOAL", "STAGES/TOPICS", "CALENDAR", "TOOK", "OUTCOME", "ID"}, rows))
	return b.String()
}
