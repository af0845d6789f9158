package service

import (
	"context"

	"skill-assessment/internal/models"
	"skill-assessment/internal/repository"
)

// RoundStore persists rounds. Implemented by repository.RoundRepository.
type RoundStore interface {
	Create(ctx context.Context, round *models.Round) error
	GetByID(ctx context.Context, id string) (*models.Round, error)
	List(ctx context.Context, filter models.RoundFilter) ([]models.Round, error)
	TitleInUse(ctx context.Context, title string) (bool, error)
	Update(ctx context.Context, round *models.Round, entry models.HistoryEntry) error
}

// SessionStore persists sessions and their refs. Implemented by repository.SessionRepository.
// PopulateRefs may call fill for several concurrent callers of one session; only the
// first stored result is kept and every caller receives it.
type SessionStore interface {
	Upsert(ctx context.Context, session *models.Session) (*models.Session, bool, error)
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListRefs(ctx context.Context, sessionID string) ([]models.SessionQuestionRef, error)
	PopulateRefs(
		ctx context.Context,
		sessionID string,
		fill func(ctx context.Context) ([]models.SessionQuestionRef, error),
	) ([]models.SessionQuestionRef, bool, error)
}

// QuestionStore reads both question banks. Implemented by repository.QuestionRepository.
type QuestionStore interface {
	LegacyIDs(ctx context.Context, filter models.LegacyFilter) ([]string, error)
	GenericIDs(ctx context.Context, category string) ([]string, error)
	LegacyQuestions(ctx context.Context, ids []string) ([]models.Question, error)
	GenericQuestions(ctx context.Context, ids []string) ([]models.Question, error)
}

var (
	_ RoundStore    = (*repository.RoundRepository)(nil)
	_ SessionStore  = (*repository.SessionRepository)(nil)
	_ QuestionStore = (*repository.QuestionRepository)(nil)
)
