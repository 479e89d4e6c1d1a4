package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JustJay7/courtdle-api/internal/config"
	"github.com/JustJay7/courtdle-api/internal/database"
	"github.com/JustJay7/courtdle-api/internal/server"
	"github.com/JustJay7/courtdle-api/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger

	keepBatches int
)

var rootCmd = &cobra.Command{
	Use:   "courtdle-api",
	Short: "Daily Supreme Court trivia backend",
	Long: `Serves a daily batch of Supreme Court case summaries built from the Oyez API
and a text-completion service, and judges answers against the recorded ruling.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log, err = logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Build and store today's case batch",
	Long: `Rebuilds today's batch unconditionally and writes it to the configured cache,
so the first visitor of the day is served from cache. Meant to run from cron
shortly after midnight.

With CACHE_BACKEND=sqlite, batches older than the newest --keep days are
pruned afterwards.`,
	RunE: runWarm,
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Delete every stored case batch",
	Long: `Removes the cached batches from the configured backend so the next request
rebuilds today's batch. Does not need a completion API key.`,
	RunE: runClearCache,
}

func init() {
	warmCmd.Flags().IntVar(&keepBatches, "keep", 7, "number of daily batches to retain (sqlite backend only)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(clearCacheCmd)
}

func main() {
	if err := execute(rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs cmd and then flushes the logger. Cobra skips post-run hooks
// when RunE fails, so the flush cannot live in one.
func execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	srv := server.New(cfg, a.handlers(), log)

	log.Info("Starting Courtdle API",
		"host", cfg.Host,
		"port", cfg.Port,
		"cache_backend", cfg.CacheBackend,
		"completion_provider", cfg.CompletionProvider,
		"verdict_mode", cfg.VerdictMode,
	)

	return srv.Run()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations completed successfully", "path", cfg.DatabasePath)
	return nil
}

func runWarm(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}

	summaries, err := a.quiz.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to build today's batch: %w", err)
	}
	log.Info("Cache warmed", "date", a.quiz.Today(), "cases", len(summaries))

	if a.batches != nil && keepBatches > 0 {
		pruned, err := a.batches.Prune(ctx, keepBatches)
		if err != nil {
			return fmt.Errorf("failed to prune old batches: %w", err)
		}
		log.Info("Pruned old batches", "removed", pruned, "kept", keepBatches)
	}
	return nil
}

func runClearCache(cmd *cobra.Command, args []string) error {
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	batches, _, err := newCache(cmd.Context(), cfg, db)
	if err != nil {
		return err
	}
	if err := batches.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	log.Info("Cache cleared", "cache_backend", cfg.CacheBackend)
	return nil
}
