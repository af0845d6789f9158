package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"skill-assessment/internal/models"
)

// LegacyBankSize is the number of rows SeedLegacyBank inserts per tier
const LegacyBankSize = 10

// SeedLegacyBank inserts LegacyBankSize questions per difficulty tier.
// Ids run 1..30 in easy, medium, hard order and set_number follows the tier.
func SeedLegacyBank(t *testing.T, db *sql.DB) {
	t.Helper()

	id := 1
	for _, tier := range models.Difficulties {
		for n := 0; n < LegacyBankSize; n++ {
			_, err := db.ExecContext(context.Background(), `
				INSERT INTO structural_questions
					(id, question_text, choice_a, choice_b, choice_c, choice_d, correct_choice, difficulty_level, set_number)
				VALUES ($1, $2, 'A', 'B', 'C', '', 'A', $3, $4)
			`, id, fmt.Sprintf("Legacy question %d", id), string(tier), tier.SetNumber())
			if err != nil {
				t.Fatalf("Failed to seed legacy question %d: %v", id, err)
			}
			id++
		}
	}

	if _, err := db.ExecContext(context.Background(),
		`SELECT setval(pg_get_serial_sequence('structural_questions', 'id'), $1)`, id-1,
	); err != nil {
		t.Fatalf("Failed to advance legacy sequence: %v", err)
	}
}

// SeedGenericBank inserts count active questions with three ordered options each
func SeedGenericBank(t *testing.T, db *sql.DB, category string, count int) []string {
	t.Helper()

	ids := make([]string, 0, count)
	for n := 1; n <= count; n++ {
		id := fmt.Sprintf("%s-q%02d", category, n)
		if _, err := db.ExecContext(context.Background(),
			`INSERT INTO question_bank (id, category, subcategory, question_text, is_active) VALUES ($1, $2, '', $3, true)`,
			id, category, fmt.Sprintf("Generic question %d", n),
		); err != nil {
			t.Fatalf("Failed to seed question %s: %v", id, err)
		}
		// inserted in reverse to prove sort_order wins over insertion order
		for sort := 3; sort >= 1; sort-- {
			if _, err := db.ExecContext(context.Background(),
				`INSERT INTO question_bank_options (question_id, option_text, is_correct, sort_order) VALUES ($1, $2, $3, $4)`,
				id, fmt.Sprintf("Option %d", sort), sort == 1, sort,
			); err != nil {
				t.Fatalf("Failed to seed option of %s: %v", id, err)
			}
		}
		ids = append(ids, id)
	}
	return ids
}
