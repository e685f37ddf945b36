package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/waypoint/internal/roadmap"
)

// FormatRoadmap renders a roadmap response as a stage/node/resource tree
// followed by the calendar-intent signal.
func FormatRoadmap(resp *roadmap.RoadmapResponse) string {
	var b strings.Builder

	b.WriteString(Header("Learning Roadmap"))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("%d stages · %d topics", len(resp.Roadmap), resp.Roadmap.NodeCount())))
	b.WriteString("\n\n")

	for i, stage := range resp.Roadmap {
		b.WriteString(StyleHeader.Render(fmt.Sprintf("%d. %s", i+1, stage.Title)))
		b.WriteString("  " + Dim(stage.ID) + "\n")
		if stage.Description != "" {
			b.WriteString(Dim(stage.Description) + "\n")
		}
		b.WriteString(RenderTree(stageTree(stage)))
		b.WriteString("\n")
	}

	b.WriteString(CalendarIndicator(resp.ShouldTriggerCalendar))
	if resp.CalendarIntentReason != "" {
		b.WriteString("  " + Dim(resp.CalendarIntentReason))
	}
	b.WriteString("\n")

	if resp.Recovered {
		b.WriteString("\n")
		b.WriteString(FormatRecoveredWarning())
	}
	return b.String()
}

func stageTree(stage roadmap.RoadmapStage) []TreeItem {
	var items []TreeItem
	for ni, node := range stage.Nodes {
		items = append(items, TreeItem{
			Title:  Bold(node.Title),
			Level:  1,
			IsLast: ni == len(stage.Nodes)-1,
			Detail: node.Description,
		})
		for ri, res := range node.Resources {
			items = append(items, TreeItem{
				Title:  res.Title,
				Level:  2,
				IsLast: ri == len(node.Resources)-1,
				Badge:  ResourceStyle(res.Type).Render(fmt.Sprintf("[ %s ]", res.Type)),
				Detail: res.Link,
			})
		}
	}
	return items
}

// FormatRecoveredWarning explains that calendar fields were not recovered.
func FormatRecoveredWarning() string {
	return StyleYellowBold.Render("!") + " " +
		StyleYellow.Render("The model's response was only partly readable; the roadmap was recovered\n"+
			"  but scheduling intent could not be determined.") + "\n"
}

// FormatGoal renders an extracted goal descriptor as a boxed summary.
func FormatGoal(goal *roadmap.GoalDescriptor) string {
	rows := [][2]string{
		{"Goal", Bold(goal.Goal)},
		{"Already knows", JoinOrDash(goal.Known)},
		{"Experience", orDash(string(goal.ExperienceLevel))},
		{"Format", orDash(string(goal.FormatPreference))},
		{"Timeframe", orDash(goal.Timeframe)},
		{"Focus", JoinOrDash(goal.SpecificFocus)},
	}

	var b strings.Builder
	for i, row := range rows {
		b.WriteString(StyleDim.Render(fmt.Sprintf("%-14s", row[0])))
		b.WriteString(row[1])
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return RenderBox("Learning Goal", b.String()) + "\n"
}

func orDash(s string) string {
	if s == "" {
		return Dim("—")
	}
	return s
}
