package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"skill-assessment/internal/models"
)

// SessionRepository handles assessment sessions and their question refs
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, round_id, worker_id, user_id, status, question_count, source_table, last_seen_at, created_at`

func scanSession(row rowScanner) (*models.Session, error) {
	session := &models.Session{}
	err := row.Scan(
		&session.ID,
		&session.RoundID,
		&session.WorkerID,
		&session.UserID,
		&session.Status,
		&session.QuestionCount,
		&session.Source,
		&session.LastSeenAt,
		&session.CreatedAt,
	)
	return session, err
}

// Upsert creates the session or, when the id already exists under the same round,
// refreshes last_seen_at and returns the stored row. The snapshot columns of an
// existing session are never overwritten. The bool reports whether the row was
// inserted. ErrSessionRoundMismatch is returned when the id is bound to another round.
func (r *SessionRepository) Upsert(ctx context.Context, session *models.Session) (*models.Session, bool, error) {
	query := `
		INSERT INTO assessment_sessions
			(id, round_id, worker_id, user_id, status, question_count, source_table, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at
		WHERE assessment_sessions.round_id = EXCLUDED.round_id
		RETURNING ` + sessionColumns + `, (xmax = 0) AS inserted`

	stored := &models.Session{}
	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		session.ID,
		session.RoundID,
		session.WorkerID,
		session.UserID,
		models.SessionStatusActive,
		session.QuestionCount,
		session.Source,
		session.LastSeenAt,
	).Scan(
		&stored.ID,
		&stored.RoundID,
		&stored.WorkerID,
		&stored.UserID,
		&stored.Status,
		&stored.QuestionCount,
		&stored.Source,
		&stored.LastSeenAt,
		&stored.CreatedAt,
		&inserted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrSessionRoundMismatch
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert session %s: %w", session.ID, err)
	}
	return stored, inserted, nil
}

// GetByID retrieves a session by ID, nil when it does not exist
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM assessment_sessions WHERE id = $1`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return session, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listRefs(ctx context.Context, q querier, sessionID string) ([]models.SessionQuestionRef, error) {
	query := `
		SELECT session_id, question_id, display_order, source_table
		FROM session_question_refs
		WHERE session_id = $1
		ORDER BY display_order
	`
	rows, err := q.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list question refs: %w", err)
	}
	defer rows.Close()

	refs := []models.SessionQuestionRef{}
	for rows.Next() {
		var ref models.SessionQuestionRef
		if err := rows.Scan(&ref.SessionID, &ref.QuestionID, &ref.DisplayOrder, &ref.SourceTable); err != nil {
			return nil, fmt.Errorf("failed to scan question ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ListRefs returns the persisted refs of a session in display order
func (r *SessionRepository) ListRefs(ctx context.Context, sessionID string) ([]models.SessionQuestionRef, error) {
	return listRefs(ctx, r.db, sessionID)
}

// PopulateRefs writes the refs of a session exactly once. fill runs before any
// transaction is opened, so it may query through the same pool without holding a
// connection or the row lock. The write then locks the session row, re-reads the refs
// and discards the sample when a concurrent caller stored one first. The returned
// bool reports whether this call wrote the refs. A fill returning no refs leaves the
// session unpopulated.
func (r *SessionRepository) PopulateRefs(
	ctx context.Context,
	sessionID string,
	fill func(ctx context.Context) ([]models.SessionQuestionRef, error),
) ([]models.SessionQuestionRef, bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM assessment_sessions WHERE id = $1)`, sessionID,
	).Scan(&exists); err != nil {
		return nil, false, fmt.Errorf("failed to check session %s: %w", sessionID, err)
	}
	if !exists {
		return nil, false, ErrNotFound
	}

	existing, err := r.ListRefs(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		return existing, false, nil
	}

	refs, err := fill(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(refs) == 0 {
		return refs, false, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM assessment_sessions WHERE id = $1 FOR UPDATE`, sessionID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock session %s: %w", sessionID, err)
	}

	existing, err = listRefs(ctx, tx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		slog.Debug("Discarding sample, session populated concurrently", "session_id", sessionID)
		return existing, false, tx.Commit()
	}

	questionIDs := make([]string, len(refs))
	orders := make([]int64, len(refs))
	sources := make([]string, len(refs))
	for i, ref := range refs {
		questionIDs[i] = ref.QuestionID
		orders[i] = int64(ref.DisplayOrder)
		sources[i] = string(ref.SourceTable)
	}

	insert := `
		INSERT INTO session_question_refs (session_id, question_id, display_order, source_table)
		SELECT $1, t.question_id, t.display_order, t.source_table
		FROM unnest($2::text[], $3::int[], $4::text[]) AS t(question_id, display_order, source_table)
	`
	if _, err := tx.ExecContext(ctx, insert, sessionID, pq.Array(questionIDs), pq.Array(orders), pq.Array(sources)); err != nil {
		if isUniqueViolation(err) {
			_ = tx.Rollback()
			stored, readErr := r.ListRefs(ctx, sessionID)
			return stored, false, readErr
		}
		return nil, false, fmt.Errorf("failed to insert question refs: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE assessment_sessions SET status = $2 WHERE id = $1`,
		sessionID, models.SessionStatusPopulated,
	); err != nil {
		return nil, false, fmt.Errorf("failed to mark session populated: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit question refs: %w", err)
	}
	for i := range refs {
		refs[i].SessionID = sessionID
	}
	return refs, true, nil
}
