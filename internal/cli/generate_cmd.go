package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/alexanderramin/waypoint/internal/roadmap"
	"github.com/spf13/cobra"
)

func newGenerateCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "generate [request...]",
		Short: "Generate a learning roadmap from a free-text request",
		Long: `Generate a learning roadmap from a free-text request.

The request can be given as arguments, piped on stdin, or typed into a
prompt when running in a terminal.`,
		Example: `  waypoint generate "I know JavaScript and want to learn TypeScript in 6 weeks, with weekly reminders"
  echo "teach me Rust" | waypoint generate --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireModel(); err != nil {
				return err
			}
			message, err := resolveRequest(cmd, app, args)
			if err != nil {
				return err
			}

			var resp *roadmap.RoadmapResponse
			err = runTask(cmd, app, "Building your roadmap…", func(ctx context.Context) error {
				var runErr error
				resp, runErr = app.Pipeline.GenerateRoadmap(ctx, message)
				return runErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRoadmap(resp))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the roadmap response as JSON")
	return cmd
}

func newExtractCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract [request...]",
		Short: "Extract the learning goal from a request without building a roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireModel(); err != nil {
				return err
			}
			if app.Goals == nil {
				return errors.New("goal extraction is not configured")
			}
			message, err := resolveRequest(cmd, app, args)
			if err != nil {
				return err
			}

			var goal *roadmap.GoalDescriptor
			err = runTask(cmd, app, "Reading your request…", func(ctx context.Context) error {
				var runErr error
				goal, runErr = app.Goals.Extract(ctx, message)
				return runErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), goal)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGoal(goal))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the goal descriptor as JSON")
	return cmd
}

// resolveRequest returns the learning request from args, an interactive
// prompt, or stdin, in that order.
func resolveRequest(cmd *cobra.Command, app *App, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if app.interactive() {
		var message string
		if err := requestForm(&message).Run(); err != nil {
			return "", err
		}
		return message, nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading request from stdin: %w", err)
	}
	message := strings.TrimSpace(string(data))
	if message == "" {
		return "", roadmap.ErrEmptyMessage
	}
	return message, nil
}

// runTask runs fn under a spinner in interactive sessions and directly otherwise.
func runTask(cmd *cobra.Command, app *App, label string, fn func(ctx context.Context) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !app.interactive() {
		return fn(ctx)
	}
	return runWithProgress(ctx, cmd.ErrOrStderr(), label, fn)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
