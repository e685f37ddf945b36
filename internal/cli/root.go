package cli

import (
	"errors"

	"github.com/alexanderramin/waypoint/internal/db"
	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/roadmap"
	"github.com/spf13/cobra"
)

// App holds the services used by CLI commands. History fields are optional;
// commands that need them report an error when they are nil.
type App struct {
	Pipeline roadmap.Pipeline
	Goals    roadmap.GoalExtractor
	Gateway  llm.Gateway

	// ModelErr is set when the model gateway could not be configured.
	// Commands that call the model report it; history commands still work.
	ModelErr error

	Calls repository.CallLogRepo
	Runs  repository.RunRepo
	UoW   db.UnitOfWork

	// DefaultAddr is the listen address used by "serve" without --addr.
	DefaultAddr string

	// IsInteractive reports whether stdin is a terminal. Nil means false.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// requireModel returns the reason the model-backed commands cannot run, if any.
func (a *App) requireModel() error {
	if a.ModelErr != nil {
		return a.ModelErr
	}
	if a.Pipeline == nil {
		return errors.New("model gateway is not configured")
	}
	return nil
}

// NewRootCmd creates the top-level "waypoint" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "waypoint",
		Short:         "Turn a learning request into a structured roadmap",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newGenerateCmd(app),
		newExtractCmd(app),
		newServeCmd(app),
		newCallsCmd(app),
		newRunsCmd(app),
		newPruneCmd(app),
		newSchemaCmd(),
	)

	return root
}
