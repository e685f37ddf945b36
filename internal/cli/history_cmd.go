package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/spf13/cobra"
)

var errNoHistory = errors.New("history is not available: no database configured")

func newCallsCmd(app *App) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List recent model calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Calls == nil {
				return errNoHistory
			}
			var (
				calls []*llm.LLMCallEvent
				err   error
			)
			if runID != "" {
				calls, err = app.Calls.ListByRun(cmd.Context(), runID)
			} else {
				calls, err = app.Calls.ListRecent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCallLog(calls))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of calls to show")
	cmd.Flags().StringVar(&runID, "run", "", "Only show calls made by this run")
	return cmd
}

func newRunsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent roadmap runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Runs == nil {
				return errNoHistory
			}
			runs, err := app.Runs.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRuns(runs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func newPruneCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete call and run history older than a number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.UoW == nil {
				return errNoHistory
			}
			if days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", days)
			}
			cutoff := time.Now().AddDate(0, 0, -days)
			result, err := repository.Prune(cmd.Context(), app.UoW, cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d calls and %d runs older than %d days.\n", result.Calls, result.Runs, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Keep history from the last N days")
	return cmd
}
