package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single line in a tree display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	Badge  string // already styled; right-aligned when present
	Detail string // dimmed text on the following line
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders items as an indented tree using box-drawing connectors.
// Badges are right-aligned to the widest title.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	prefixes := make([]string, len(items))
	// open[l] reports whether the branch at level l still has siblings below.
	open := map[int]bool{}
	maxWidth := 0
	for idx, item := range items {
		var prefix strings.Builder
		for l := 1; l < item.Level; l++ {
			if open[l] {
				prefix.WriteString(treePipe)
			} else {
				prefix.WriteString(treeBlank)
			}
		}
		if item.Level > 0 {
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
			open[item.Level] = !item.IsLast
		}
		prefixes[idx] = prefix.String()
		maxWidth = max(maxWidth, lipgloss.Width(prefixes[idx]+item.Title))
	}

	var b strings.Builder
	for idx, item := range items {
		line := prefixes[idx] + item.Title
		if item.Badge != "" {
			pad := max(maxWidth-lipgloss.Width(line), 0)
			line += strings.Repeat(" ", pad) + "  " + item.Badge
		}
		b.WriteString(line + "\n")

		if item.Detail != "" {
			b.WriteString(detailIndent(prefixes[idx], item) + Dim(item.Detail) + "\n")
		}
	}
	return b.String()
}

// detailIndent continues the connectors of an item's line below it.
func detailIndent(prefix string, item TreeItem) string {
	if item.Level == 0 {
		return ""
	}
	base := strings.TrimSuffix(strings.TrimSuffix(prefix, treeBranch), treeCorner)
	if item.IsLast {
		return base + treeBlank
	}
	return base + treePipe
}
