package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexanderramin/waypoint/internal/cli"
	"github.com/alexanderramin/waypoint/internal/db"
	"github.com/alexanderramin/waypoint/internal/events"
	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/roadmap"
	"github.com/mattn/go-isatty"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Determine DB path: env var or default ~/.waypoint/waypoint.db
	dbPath := os.Getenv("WAYPOINT_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".waypoint", "waypoint.db")
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	callRepo := repository.NewSQLiteCallLogRepo(database)
	runRepo := repository.NewSQLiteRunRepo(database)

	app := &cli.App{
		Calls:       callRepo,
		Runs:        runRepo,
		UoW:         db.NewSQLiteUnitOfWork(database),
		DefaultAddr: os.Getenv("WAYPOINT_ADDR"),
	}

	// Detect interactive terminal for the request prompt and spinner.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Wire the model gateway. A missing or invalid config only disables the
	// model-backed commands.
	llmCfg, err := llm.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := llmCfg.Validate(); err != nil {
		app.ModelErr = err
	} else {
		observers := llm.MultiObserver{repository.NewCallLogObserver(callRepo, logger)}
		if llmCfg.LogCalls {
			observers = append(observers, llm.NewLogObserver(os.Stderr))
		}

		gateway, err := newGateway(ctx, llmCfg, observers)
		if err != nil {
			app.ModelErr = err
		} else {
			runObservers := []roadmap.RunObserver{repository.NewRunRecorder(runRepo, logger)}
			if llmCfg.LogCalls {
				runObservers = append(runObservers, roadmap.NewLogRunObserver(os.Stderr))
			}
			if addr := os.Getenv("WAYPOINT_REDIS_ADDR"); addr != "" {
				client := redis.NewClient(&redis.Options{Addr: addr})
				defer client.Close()
				runObservers = append(runObservers, events.NewPublisher(client, "waypoint", logger))
			}

			app.Gateway = gateway
			app.Goals = roadmap.NewGoalExtractor(gateway)
			app.Pipeline = roadmap.NewPipeline(app.Goals, roadmap.NewRoadmapGenerator(gateway), runObservers...)
		}
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

func newGateway(ctx context.Context, cfg llm.LLMConfig, observer llm.Observer) (llm.Gateway, error) {
	switch cfg.Provider {
	case llm.ProviderOllama:
		return llm.NewOllamaGateway(cfg, observer), nil
	default:
		gw, err := llm.NewGeminiGateway(ctx, cfg, observer)
		if err != nil {
			return nil, err
		}
		return gw, nil
	}
}
