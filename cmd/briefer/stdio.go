package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/helixml/briefer"
	"github.com/helixml/briefer/internal/log"
	"github.com/helixml/briefer/internal/mcp"
	"github.com/spf13/cobra"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants read stored transcript summaries and icebreakers.
Configuration is loaded from environment variables and .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// stdout carries the protocol, so logs go to stderr.
	slogger := log.New(os.Stderr, cfg.LogFormat(), cfg.LogLevel()).Slog()
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting MCP server", slog.String("version", version))

	opts := append(storageOptions(cfg),
		briefer.WithLogger(slogger),
		briefer.WithSkipProviderValidation(),
	)

	client, err := briefer.New(opts...)
	if err != nil {
		return fmt.Errorf("create briefer client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close briefer client", slog.Any("error", err))
		}
	}()

	return mcp.NewServer(client.Transcripts, client.Icebreakers, version, slogger).ServeStdio()
}
