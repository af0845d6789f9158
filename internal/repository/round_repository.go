package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"skill-assessment/internal/models"
)

const roundColumns = `
	id, category, title, description, question_count, passing_score, duration_minutes,
	start_at, end_at, frequency_months, show_score, show_answers, show_breakdown,
	subcategory_quotas, difficulty_weights, criteria, status, active, history,
	created_by, updated_by, created_at, updated_at`

// RoundRepository handles database operations for assessment rounds
type RoundRepository struct {
	db *sql.DB
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *sql.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRound(row rowScanner) (*models.Round, error) {
	round := &models.Round{}
	err := row.Scan(
		&round.ID,
		&round.Category,
		&round.Title,
		&round.Description,
		&round.QuestionCount,
		&round.PassingScore,
		&round.DurationMinutes,
		&round.StartAt,
		&round.EndAt,
		&round.FrequencyMonths,
		&round.ShowScore,
		&round.ShowAnswers,
		&round.ShowBreakdown,
		&round.SubcategoryQuotas,
		&round.DifficultyWeights,
		&round.Criteria,
		&round.Status,
		&round.Active,
		&round.History,
		&round.CreatedBy,
		&round.UpdatedBy,
		&round.CreatedAt,
		&round.UpdatedAt,
	)
	return round, err
}

// Create inserts a new round; the id and the seeded history are supplied by the caller
func (r *RoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO assessment_rounds (
			id, category, title, description, question_count, passing_score, duration_minutes,
			start_at, end_at, frequency_months, show_score, show_answers, show_breakdown,
			subcategory_quotas, difficulty_weights, criteria, status, active, history,
			created_by, updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		round.ID,
		round.Category,
		round.Title,
		round.Description,
		round.QuestionCount,
		round.PassingScore,
		round.DurationMinutes,
		round.StartAt,
		round.EndAt,
		round.FrequencyMonths,
		round.ShowScore,
		round.ShowAnswers,
		round.ShowBreakdown,
		round.SubcategoryQuotas,
		round.DifficultyWeights,
		round.Criteria,
		round.Status,
		round.Active,
		round.History,
		round.CreatedBy,
		round.UpdatedBy,
	).Scan(&round.CreatedAt, &round.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}
	return nil
}

// GetByID retrieves a round by ID, nil when it does not exist
func (r *RoundRepository) GetByID(ctx context.Context, id string) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM assessment_rounds WHERE id = $1`

	round, err := scanRound(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round %s: %w", id, err)
	}
	return round, nil
}

// List retrieves rounds matching every set filter field, newest first
func (r *RoundRepository) List(ctx context.Context, filter models.RoundFilter) ([]models.Round, error) {
	var conditions []string
	var args []any

	if filter.Category != nil {
		args = append(args, *filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}

	query := `SELECT ` + roundColumns + ` FROM assessment_rounds`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	rounds := []models.Round{}
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, *round)
	}
	return rounds, rows.Err()
}

// TitleInUse reports whether a non-archived round already carries title
func (r *RoundRepository) TitleInUse(ctx context.Context, title string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM assessment_rounds
			WHERE LOWER(title) = LOWER($1) AND status <> 'archived'
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, title).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check round title: %w", err)
	}
	return exists, nil
}

// Update writes every policy column of round and appends entry to its history.
// History is only ever appended in SQL, so earlier entries cannot be rewritten here.
func (r *RoundRepository) Update(ctx context.Context, round *models.Round, entry models.HistoryEntry) error {
	query := `
		UPDATE assessment_rounds SET
			category = $2, title = $3, description = $4, question_count = $5,
			passing_score = $6, duration_minutes = $7, start_at = $8, end_at = $9,
			frequency_months = $10, show_score = $11, show_answers = $12, show_breakdown = $13,
			subcategory_quotas = $14, difficulty_weights = $15, criteria = $16,
			status = $17, active = $18, updated_by = $19, updated_at = $20,
			history = history || $21::jsonb
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		round.ID,
		round.Category,
		round.Title,
		round.Description,
		round.QuestionCount,
		round.PassingScore,
		round.DurationMinutes,
		round.StartAt,
		round.EndAt,
		round.FrequencyMonths,
		round.ShowScore,
		round.ShowAnswers,
		round.ShowBreakdown,
		round.SubcategoryQuotas,
		round.DifficultyWeights,
		round.Criteria,
		round.Status,
		round.Active,
		round.UpdatedBy,
		round.UpdatedAt,
		models.History{entry},
	)
	if err != nil {
		return fmt.Errorf("failed to update round %s: %w", round.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
