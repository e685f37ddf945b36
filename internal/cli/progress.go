package cli

import (
	"context"
	"io"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// taskDoneMsg is sent when the background task finishes.
type taskDoneMsg struct{ err error }

// progressModel shows a spinner while a blocking task runs.
type progressModel struct {
	spinner spinner.Model
	label   string
	task    func() error
	cancel  context.CancelFunc

	done bool
	err  error
}

func newProgressModel(label string, task func() error, cancel context.CancelFunc) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = formatter.StylePurple
	return progressModel{spinner: s, label: label, task: task, cancel: cancel}
}

func (m progressModel) Init() tea.Cmd {
	task := m.task
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return taskDoneMsg{err: task()}
	})
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.cancel()
			m.err = context.Canceled
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done || m.err != nil {
		return ""
	}
	return "  " + m.spinner.View() + " " + formatter.Dim(m.label) + "\n"
}

// runWithProgress runs task under a spinner drawn on out. Interrupting the
// spinner cancels ctx passed to task.
func runWithProgress(ctx context.Context, out io.Writer, label string, task func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newProgressModel(label, func() error { return task(ctx) }, cancel)
	final, err := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	return final.(progressModel).err
}
