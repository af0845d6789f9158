package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"skill-assessment/internal/models"
	"skill-assessment/internal/repository"
	"skill-assessment/pkg/validator"
)

// SessionRequest identifies the requester of a delivery
type SessionRequest struct {
	SessionID string // optional; a fresh id is generated when empty
	WorkerID  *string
	UserID    *string
}

// SessionService gates rounds and creates or resumes sessions
type SessionService struct {
	sessions SessionStore
	resolver SourceResolver
	now      func() time.Time
	newID    func() string
}

// NewSessionService creates a new session service
func NewSessionService(sessions SessionStore, resolver SourceResolver) *SessionService {
	return &SessionService{
		sessions: sessions,
		resolver: resolver,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Gate checks that round is open for delivery now
func (s *SessionService) Gate(round *models.Round) error {
	if !round.IsLive() {
		return NewForbiddenError(CodeRoundNotActive)
	}
	now := s.now()
	if round.StartAt != nil && round.StartAt.After(now) {
		return NewForbiddenError(CodeRoundNotStarted)
	}
	if round.EndAt != nil && round.EndAt.Before(now) {
		return NewForbiddenError(CodeRoundEnded)
	}
	return nil
}

// GetOrCreate resolves the session of req for round in one atomic upsert.
// A supplied id that does not exist yet is created under that id. The bool
// reports whether the session was created by this call.
func (s *SessionService) GetOrCreate(ctx context.Context, round *models.Round, req SessionRequest) (*models.Session, bool, error) {
	id := validator.SanitizeString(req.SessionID)
	if id == "" {
		id = s.newID()
	} else if validator.ValidateIdentifier(id) != nil {
		return nil, false, NewInvalidInputError(CodeInvalidSessionID)
	}

	draft := &models.Session{
		ID:            id,
		RoundID:       round.ID,
		WorkerID:      req.WorkerID,
		UserID:        req.UserID,
		QuestionCount: round.QuestionCount,
		Source:        s.resolver.Resolve(round.Category),
		LastSeenAt:    s.now(),
	}

	session, created, err := s.sessions.Upsert(ctx, draft)
	if errors.Is(err, repository.ErrSessionRoundMismatch) {
		slog.Warn("Session bound to another round", "session_id", id, "round_id", round.ID)
		return nil, false, NewInvalidInputError(CodeInvalidSessionRound)
	}
	if err != nil {
		return nil, false, NewInternalError("resolve session", err)
	}
	return session, created, nil
}

// Get returns a session or nil when it does not exist
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("get session", err)
	}
	return session, nil
}
