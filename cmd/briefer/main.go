// Package main is the entry point for the briefer CLI.
//
//	@title			Briefer API
//	@version		1.0
//	@description	Summarises meeting transcripts and writes LinkedIn icebreakers
//	@host			localhost:8080
//	@BasePath		/api
package main

import (
	"fmt"
	"os"

	"github.com/helixml/briefer/internal/config"
	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "briefer",
		Short:         "Briefer meeting assistant server",
		Long:          `Briefer summarises meeting transcripts and writes LinkedIn icebreakers using an OpenAI-compatible model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
