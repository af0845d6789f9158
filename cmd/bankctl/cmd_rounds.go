package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"skill-assessment/internal/models"
	"skill-assessment/internal/repository"
)

func roundFilterFromFlags() (models.RoundFilter, error) {
	var filter models.RoundFilter
	if filterCategory != "" {
		filter.Category = &filterCategory
	}
	if filterStatus != "" {
		switch filterStatus {
		case models.RoundStatusDraft, models.RoundStatusActive, models.RoundStatusArchived:
		default:
			return filter, fmt.Errorf("unknown status %q", filterStatus)
		}
		filter.Status = &filterStatus
	}
	if filterActive != "" {
		active, err := strconv.ParseBool(filterActive)
		if err != nil {
			return filter, fmt.Errorf("invalid --active value %q", filterActive)
		}
		filter.Active = &active
	}
	return filter, nil
}

func runRoundsList(cmd *cobra.Command, args []string) error {
	filter, err := roundFilterFromFlags()
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	rounds, err := repository.NewRoundRepository(db.DB).List(ctx, filter)
	if err != nil {
		return err
	}
	printRounds(cmd.OutOrStdout(), rounds)
	return nil
}
