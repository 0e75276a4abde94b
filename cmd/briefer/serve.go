package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/helixml/briefer"
	"github.com/helixml/briefer/infrastructure/api"
	"github.com/helixml/briefer/internal/config"
	"github.com/helixml/briefer/internal/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  DB_URL                       Database URL (default: sqlite:///briefer.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  CORS_ALLOWED_ORIGINS         Comma-separated allowed origins (default: *)
  PROMPTS_FILE                 YAML file overriding the built-in prompts

  AI_*                         OpenAI-compatible chat completion service
    BASE_URL                   Base URL (e.g., https://api.groq.com/openai/v1)
    API_KEY                    API key for authentication
    MODEL                      Model identifier (default: gpt-3.5-turbo)
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 0)
    HTTP_CACHE_DIR             Replay identical requests from disk

  QUEUE_*                      Push queue (QStash-compatible)
    URL                        Provider base URL
    TOKEN                      Provider bearer token
    CALLBACK_BASE_URL          Public absolute URL of this service
    CALLBACK_SECRET            Secret the provider replays to worker routes
    TRANSCRIPT_DELAY           Delay for transcript jobs (default: 3s)
    ICEBREAKER_DELAY           Delay for icebreaker jobs (default: 60s)
    PROPAGATE_ERRORS           Fail submissions the provider rejects (default: false)
    ASYNC_TRANSCRIPTS          Queue transcript submissions (default: true)
    ASYNC_ICEBREAKERS          Queue icebreaker submissions (default: true)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(ctx context.Context, envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	logger := log.FromConfig(cfg)
	logger.SetDefault()
	slogger := logger.Slog()

	opts, err := clientOptions(cfg, slogger)
	if err != nil {
		return err
	}

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting briefer", attrs...)
	if !cfg.AI().IsConfigured() {
		slogger.Warn("AI_API_KEY is not set; generation requests will fail")
	}

	client, err := briefer.New(opts...)
	if err != nil {
		return fmt.Errorf("create briefer client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close briefer client", slog.Any("error", err))
		}
	}()

	requestTimeout := api.RequestTimeoutFor(cfg.AI().Timeout())
	apiServer := api.NewAPIServer(client, cfg.AllowedOrigins()).WithRequestTimeout(requestTimeout)
	apiServer.MountRoutes()
	apiServer.Router().Mount("/docs", apiServer.DocsRouter("/docs/openapi.json").Routes())

	server := api.NewServer(cfg.Addr(), slogger)
	server.SetWriteTimeout(api.WriteTimeoutFor(requestTimeout))
	server.Router().Mount("/", apiServer.Router())

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
