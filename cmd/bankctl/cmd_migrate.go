package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"skill-assessment/internal/database"
)

func resolvedMigrationsPath() string {
	if migrationsPath != "" {
		return migrationsPath
	}
	return cfg.Assessment.MigrationsPath
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	applied, err := database.NewMigrationExecutor(db.DB).RunMigrations(ctx, resolvedMigrationsPath())
	if err != nil {
		return err
	}
	if applied == 0 {
		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	states, err := database.NewMigrationExecutor(db.DB).Status(ctx, resolvedMigrationsPath())
	if err != nil {
		return err
	}
	printMigrations(cmd.OutOrStdout(), states)
	return nil
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	caps, err := database.DetectCapabilities(ctx, db.DB)
	if err != nil {
		return err
	}
	printCapabilities(cmd.OutOrStdout(), caps)
	return nil
}
