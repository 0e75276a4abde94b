package main

import (
	"fmt"

	"github.com/helixml/briefer"
	"github.com/helixml/briefer/internal/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Long: `Create or update the transcripts and linkedin_icebreakers tables in the
database named by DB_URL, then exit. The serve command migrates on start as
well; use this to prepare a database ahead of a deploy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runMigrate(cmd *cobra.Command, envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.FromConfig(cfg).Slog()
	opts := append(storageOptions(cfg),
		briefer.WithLogger(logger),
		briefer.WithSkipProviderValidation(),
	)

	client, err := briefer.New(opts...)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
	return nil
}
