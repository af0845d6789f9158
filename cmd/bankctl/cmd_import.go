package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"skill-assessment/internal/repository"
)

func runImportLegacy(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	questions, err := parseLegacyCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	printLegacySummary(cmd.OutOrStdout(), questions)
	if dryRun {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "Dry run, nothing written")
		return nil
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	imported, err := repository.NewQuestionRepository(db.DB).ImportLegacy(ctx, questions)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Imported %d legacy question(s)\n", imported)
	return nil
}

func runImportGeneric(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	questions, err := parseGenericCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	printGenericSummary(cmd.OutOrStdout(), questions)
	if dryRun {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "Dry run, nothing written")
		return nil
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	imported, err := repository.NewQuestionRepository(db.DB).ImportGeneric(ctx, questions)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Imported %d bank question(s)\n", imported)
	return nil
}
