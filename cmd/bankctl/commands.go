package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"skill-assessment/internal/config"
	"skill-assessment/internal/database"
	"skill-assessment/internal/logger"
)

var (
	cfg *config.Config

	logLevel       string
	migrationsPath string
	dryRun         bool
	filterCategory string
	filterStatus   string
	filterActive   string
	tokenSubject   string
	tokenTTL       time.Duration
)

var (
	rootCmd = &cobra.Command{
		Use:           "bankctl",
		Short:         "Maintain assessment rounds and question banks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(logger.Config{Level: logLevel, Output: os.Stderr})
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded
			return nil
		},
	}

	// --- Schema ---
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrate, // Defined in cmd_migrate.go
	}
	migrateStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateStatus,
	}
	capabilitiesCmd = &cobra.Command{
		Use:   "capabilities",
		Short: "Show which sampling columns the legacy bank carries",
		Args:  cobra.NoArgs,
		RunE:  runCapabilities,
	}

	// --- Question banks ---
	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import questions from CSV",
	}
	importLegacyCmd = &cobra.Command{
		Use:   "legacy [csv file]",
		Short: "Import the fixed-schema bank (choice_a..choice_d columns)",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportLegacy, // Defined in cmd_import.go
	}
	importGenericCmd = &cobra.Command{
		Use:   "generic [csv file]",
		Short: "Import the generic bank (pipe-separated options column)",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportGeneric,
	}

	// --- Rounds ---
	roundsCmd = &cobra.Command{
		Use:   "rounds",
		Short: "Inspect assessment rounds",
	}
	roundsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List rounds, newest first",
		Args:  cobra.NoArgs,
		RunE:  runRoundsList, // Defined in cmd_rounds.go
	}

	// --- Tokens ---
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for round maintenance",
		Args:  cobra.NoArgs,
		RunE:  runToken, // Defined in cmd_token.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(migrateCmd)
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "Migrations directory (default from MIGRATIONS_PATH)")
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(capabilitiesCmd)

	rootCmd.AddCommand(importCmd)
	importCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Parse and report without writing")
	importCmd.AddCommand(importLegacyCmd)
	importCmd.AddCommand(importGenericCmd)

	rootCmd.AddCommand(roundsCmd)
	roundsCmd.AddCommand(roundsListCmd)
	roundsListCmd.Flags().StringVar(&filterCategory, "category", "", "Only rounds of this category")
	roundsListCmd.Flags().StringVar(&filterStatus, "status", "", "Only rounds with this status (draft, active, archived)")
	roundsListCmd.Flags().StringVar(&filterActive, "active", "", "Only rounds with this active flag (true, false)")

	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Actor recorded in round history")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 8*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("subject")
}

// openDatabase connects using the loaded configuration
func openDatabase() (*database.Database, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	slog.Debug("Database connection established", "host", cfg.Database.Host, "name", cfg.Database.Name)
	return db, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 5*time.Minute)
}
