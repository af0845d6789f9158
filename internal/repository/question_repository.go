package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lib/pq"

	"skill-assessment/internal/models"
)

// QuestionRepository reads and imports both question banks
type QuestionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LegacyIDs returns candidate ids of the legacy bank, optionally restricted by tier
// or set number. Callers only set a filter column the bank is known to carry.
func (r *QuestionRepository) LegacyIDs(ctx context.Context, filter models.LegacyFilter) ([]string, error) {
	query := `SELECT id::text FROM structural_questions`
	var args []any
	switch {
	case filter.Difficulty != nil:
		query += ` WHERE LOWER(difficulty_level) = $1`
		args = append(args, string(*filter.Difficulty))
	case filter.SetNumber != nil:
		query += ` WHERE set_number = $1`
		args = append(args, *filter.SetNumber)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy question ids: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan legacy question ids: %w", err)
	}
	return ids, nil
}

// GenericIDs returns ids of active generic bank questions in category
func (r *QuestionRepository) GenericIDs(ctx context.Context, category string) ([]string, error) {
	query := `
		SELECT id FROM question_bank
		WHERE is_active = true AND category = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query question bank ids: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan question bank ids: %w", err)
	}
	return ids, nil
}

// LegacyQuestions fetches content for the given legacy ids. Empty choice columns are
// omitted; ids that are not numeric or not present are simply absent from the result.
func (r *QuestionRepository) LegacyQuestions(ctx context.Context, ids []string) ([]models.Question, error) {
	numeric := make([]int64, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			slog.Debug("Skipping non-numeric legacy question id", "question_id", id)
			continue
		}
		numeric = append(numeric, n)
	}
	if len(numeric) == 0 {
		return []models.Question{}, nil
	}

	query := `
		SELECT id::text, question_text, choice_a, choice_b, choice_c, choice_d
		FROM structural_questions
		WHERE id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(numeric))
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		var a, b, c, d sql.NullString
		if err := rows.Scan(&q.ID, &q.Text, &a, &b, &c, &d); err != nil {
			return nil, fmt.Errorf("failed to scan legacy question: %w", err)
		}
		q.Choices = []string{}
		for _, choice := range []sql.NullString{a, b, c, d} {
			if choice.Valid && choice.String != "" {
				q.Choices = append(q.Choices, choice.String)
			}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GenericQuestions fetches content and ordered options for the given bank ids
func (r *QuestionRepository) GenericQuestions(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}

	query := `
		SELECT q.id, q.question_text, o.option_text
		FROM question_bank q
		LEFT JOIN question_bank_options o ON o.question_id = q.id
		WHERE q.id = ANY($1)
		ORDER BY q.id, o.sort_order, o.id
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query question bank: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	index := make(map[string]int)
	for rows.Next() {
		var id, text string
		var option sql.NullString
		if err := rows.Scan(&id, &text, &option); err != nil {
			return nil, fmt.Errorf("failed to scan question bank row: %w", err)
		}
		i, seen := index[id]
		if !seen {
			questions = append(questions, models.Question{ID: id, Text: text, Choices: []string{}})
			i = len(questions) - 1
			index[id] = i
		}
		if option.Valid {
			questions[i].Choices = append(questions[i].Choices, option.String)
		}
	}
	return questions, rows.Err()
}

// ImportLegacy inserts legacy bank rows in one transaction and returns the count
func (r *QuestionRepository) ImportLegacy(ctx context.Context, questions []models.LegacyQuestion) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	withID := `
		INSERT INTO structural_questions
			(id, question_text, choice_a, choice_b, choice_c, choice_d, correct_choice, difficulty_level, set_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			question_text = EXCLUDED.question_text,
			choice_a = EXCLUDED.choice_a, choice_b = EXCLUDED.choice_b,
			choice_c = EXCLUDED.choice_c, choice_d = EXCLUDED.choice_d,
			correct_choice = EXCLUDED.correct_choice,
			difficulty_level = EXCLUDED.difficulty_level,
			set_number = EXCLUDED.set_number
	`
	withoutID := `
		INSERT INTO structural_questions
			(question_text, choice_a, choice_b, choice_c, choice_d, correct_choice, difficulty_level, set_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for i, q := range questions {
		if q.ID > 0 {
			_, err = tx.ExecContext(ctx, withID, q.ID, q.QuestionText, q.ChoiceA, q.ChoiceB, q.ChoiceC, q.ChoiceD,
				q.CorrectChoice, q.DifficultyLevel, q.SetNumber)
		} else {
			_, err = tx.ExecContext(ctx, withoutID, q.QuestionText, q.ChoiceA, q.ChoiceB, q.ChoiceC, q.ChoiceD,
				q.CorrectChoice, q.DifficultyLevel, q.SetNumber)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to import legacy question %d: %w", i+1, err)
		}
	}

	// explicit ids bypass the sequence
	if _, err := tx.ExecContext(ctx, `
		SELECT setval(pg_get_serial_sequence('structural_questions', 'id'), COALESCE(MAX(id), 1))
		FROM structural_questions
	`); err != nil {
		return 0, fmt.Errorf("failed to advance legacy id sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit legacy import: %w", err)
	}
	return len(questions), nil
}

// ImportGeneric inserts or replaces generic bank questions with their options
func (r *QuestionRepository) ImportGeneric(ctx context.Context, questions []models.BankQuestion) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	upsert := `
		INSERT INTO question_bank (id, category, subcategory, question_text, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			subcategory = EXCLUDED.subcategory,
			question_text = EXCLUDED.question_text,
			is_active = EXCLUDED.is_active
	`
	for _, q := range questions {
		if _, err := tx.ExecContext(ctx, upsert, q.ID, q.Category, q.Subcategory, q.QuestionText, q.IsActive); err != nil {
			return 0, fmt.Errorf("failed to import question %s: %w", q.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM question_bank_options WHERE question_id = $1`, q.ID); err != nil {
			return 0, fmt.Errorf("failed to clear options of %s: %w", q.ID, err)
		}
		for _, opt := range q.Options {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO question_bank_options (question_id, option_text, is_correct, sort_order) VALUES ($1, $2, $3, $4)`,
				q.ID, opt.OptionText, opt.IsCorrect, opt.SortOrder,
			); err != nil {
				return 0, fmt.Errorf("failed to import option of %s: %w", q.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bank import: %w", err)
	}
	return len(questions), nil
}
