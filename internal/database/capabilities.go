package database

import (
	"context"
	"database/sql"
	"fmt"

	"skill-assessment/internal/models"
)

// DetectCapabilities reports which optional sampling columns the legacy bank carries.
// It runs once at startup; the result is passed to the sampler.
func DetectCapabilities(ctx context.Context, db *sql.DB) (models.BankCapabilities, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name = $1
		  AND column_name IN ('difficulty_level', 'set_number')
	`
	rows, err := db.QueryContext(ctx, query, string(models.SourceLegacy))
	if err != nil {
		return models.BankCapabilities{}, fmt.Errorf("failed to inspect bank columns: %w", err)
	}
	defer rows.Close()

	var caps models.BankCapabilities
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return models.BankCapabilities{}, fmt.Errorf("failed to scan column name: %w", err)
		}
		switch column {
		case "difficulty_level":
			caps.DifficultyLevel = true
		case "set_number":
			caps.SetNumber = true
		}
	}
	if err := rows.Err(); err != nil {
		return models.BankCapabilities{}, err
	}
	return caps, nil
}
