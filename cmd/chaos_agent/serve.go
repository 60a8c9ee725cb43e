package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/chaos-engine/internal/config"
	"github.com/jonathan/chaos-engine/internal/db"
	"github.com/jonathan/chaos-engine/internal/logging"
	"github.com/jonathan/chaos-engine/internal/server"
	"github.com/jonathan/chaos-engine/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing humanization, risk analysis, affiliate and bulk blog endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	if servePort != 0 {
		cfg.Port = servePort
	}

	jwtCfg, err := cfg.JWT()
	if err != nil {
		return err
	}
	passwordCfg, err := cfg.Password()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger := logging.New("server")
	blog, closeBlog, err := serverBlogFactory(ctx, cfg, database, logger)
	if err != nil {
		return err
	}
	defer closeBlog()

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		JWT:         jwtCfg,
		Password:    passwordCfg,
		Humanize:    humanizeOptions(cfg),
		RateLimit:   ratelimit.LoadConfig(),
		ClickLimit:  cfg.Referral.ClickLimit,
		ClickWindow: cfg.Referral.ClickWindow,
		LandingURL:  cfg.Referral.LandingURL,
		Logger:      logger,
	}, database, blog)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// serverBlogFactory returns nil, disabling the blog endpoints, when no LLM
// key is configured.
func serverBlogFactory(ctx context.Context, cfg *config.Config, store *db.DB, logger *slog.Logger) (server.BlogRunnerFactory, func(), error) {
	noop := func() {}
	if cfg.LLM.APIKey == "" {
		logger.Warn("no LLM API key configured; blog job endpoints disabled")
		return nil, noop, nil
	}
	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create LLM client: %w", err)
	}
	closeGenerator := func() {
		if err := generator.Close(); err != nil {
			logger.Warn("failed to close LLM client", slog.String("error", err.Error()))
		}
	}
	publisher, err := newPublisher(cfg)
	if err != nil {
		closeGenerator()
		return nil, noop, fmt.Errorf("failed to create WordPress client: %w", err)
	}
	if publisher == nil {
		logger.Warn("WordPress not configured; only dry-run blog jobs will be accepted")
	}
	return blogFactory(cfg, store, generator, publisher), closeGenerator, nil
}
