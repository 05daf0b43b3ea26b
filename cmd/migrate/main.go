package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iho/computeledger/internal/infrastructure/config"
	"github.com/iho/computeledger/internal/infrastructure/logger"
	"github.com/iho/computeledger/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "computeledger-migrate",
		Short:        "Apply or roll back compute ledger schema migrations",
		SilenceUsage: true,
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return postgres.RunMigrations(cfg.DatabaseURL, logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}))
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return postgres.RunMigrationsDown(cfg.DatabaseURL, logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}))
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List embedded migration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := postgres.MigrationFiles()
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}

	rootCmd.AddCommand(upCmd, downCmd, listCmd)
	return rootCmd
}

// loadConfig only requires DATABASE_URL; the server's other settings are irrelevant here.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}
