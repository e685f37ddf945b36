package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/waypoint/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the roadmap pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireModel(); err != nil {
				return err
			}
			if addr == "" {
				addr = app.DefaultAddr
			}
			if addr == "" {
				addr = ":8080"
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(app.Pipeline, server.Options{
				Goals:   app.Goals,
				Gateway: app.Gateway,
				Runs:    app.Runs,
				Logger:  slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)),
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $WAYPOINT_ADDR or :8080)")
	return cmd
}
