package cli

import (
	"errors"
	"strings"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// waypointHuhTheme returns a huh theme matching the formatter palette.
func waypointHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// requestForm returns a themed form collecting a free-text learning request.
func requestForm(value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What do you want to learn?").
				Description("Mention what you already know, how long you have, and whether you want reminders.").
				Placeholder("I know JavaScript and want to learn TypeScript in 6 weeks, with weekly reminders").
				CharLimit(2000).
				Value(value).
				Validate(validateRequest),
		),
	).WithTheme(waypointHuhTheme()).WithShowHelp(false)
}

func validateRequest(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("please describe what you want to learn")
	}
	return nil
}
