package testutil

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"skill-assessment/internal/models"
	"skill-assessment/internal/repository"
)

// MemoryRoundStore keeps rounds in memory with the semantics of RoundRepository
type MemoryRoundStore struct {
	mu     sync.Mutex
	rounds map[string]*models.Round
	seq    int
}

// NewMemoryRoundStore creates an empty round store
func NewMemoryRoundStore() *MemoryRoundStore {
	return &MemoryRoundStore{rounds: make(map[string]*models.Round)}
}

func copyRound(r *models.Round) *models.Round {
	c := *r
	c.History = slices.Clone(r.History)
	return &c
}

// Create stores round and stamps its timestamps
func (s *MemoryRoundStore) Create(_ context.Context, round *models.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ts := time.Date(2024, 1, 1, 0, 0, s.seq, 0, time.UTC)
	round.CreatedAt, round.UpdatedAt = ts, ts
	s.rounds[round.ID] = copyRound(round)
	return nil
}

// GetByID returns nil when the round does not exist
func (s *MemoryRoundStore) GetByID(_ context.Context, id string) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	if !ok {
		return nil, nil
	}
	return copyRound(r), nil
}

// List filters rounds and orders them newest first
func (s *MemoryRoundStore) List(_ context.Context, filter models.RoundFilter) ([]models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Round{}
	for _, r := range s.rounds {
		if filter.Category != nil && r.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.Active != nil && r.Active != *filter.Active {
			continue
		}
		out = append(out, *copyRound(r))
	}
	slices.SortFunc(out, func(a, b models.Round) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// TitleInUse matches case-insensitively among non-archived rounds
func (s *MemoryRoundStore) TitleInUse(_ context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rounds {
		if strings.EqualFold(r.Title, title) && r.Status != models.RoundStatusArchived {
			return true, nil
		}
	}
	return false, nil
}

// Update replaces the round and appends entry to the stored history
func (s *MemoryRoundStore) Update(_ context.Context, round *models.Round, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.rounds[round.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := copyRound(round)
	next.CreatedAt = stored.CreatedAt
	next.History = append(slices.Clone(stored.History), entry)
	s.rounds[round.ID] = next
	return nil
}

// MemorySessionStore keeps sessions and refs in memory with the semantics of SessionRepository
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	refs     map[string][]models.SessionQuestionRef
}

// NewMemorySessionStore creates an empty session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.Session),
		refs:     make(map[string][]models.SessionQuestionRef),
	}
}

// Upsert creates the session or refreshes last-seen of an existing one
func (s *MemorySessionStore) Upsert(_ context.Context, session *models.Session) (*models.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[session.ID]; ok {
		if existing.RoundID != session.RoundID {
			return nil, false, repository.ErrSessionRoundMismatch
		}
		existing.LastSeenAt = session.LastSeenAt
		c := *existing
		return &c, false, nil
	}
	stored := *session
	stored.Status = models.SessionStatusActive
	stored.CreatedAt = session.LastSeenAt
	s.sessions[session.ID] = &stored
	c := stored
	return &c, true, nil
}

// GetByID returns nil when the session does not exist
func (s *MemorySessionStore) GetByID(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	c := *existing
	return &c, nil
}

// ListRefs returns the refs of a session in display order
func (s *MemorySessionStore) ListRefs(_ context.Context, sessionID string) ([]models.SessionQuestionRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.refs[sessionID]), nil
}

// PopulateRefs runs fill at most once per session under one lock
func (s *MemorySessionStore) PopulateRefs(
	ctx context.Context,
	sessionID string,
	fill func(ctx context.Context) ([]models.SessionQuestionRef, error),
) ([]models.SessionQuestionRef, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	if existing := s.refs[sessionID]; len(existing) > 0 {
		return slices.Clone(existing), false, nil
	}
	refs, err := fill(ctx)
	if err != nil || len(refs) == 0 {
		return refs, false, err
	}
	s.refs[sessionID] = slices.Clone(refs)
	session.Status = models.SessionStatusPopulated
	return refs, true, nil
}

// MemoryQuestionStore serves a legacy bank and a generic bank from memory
type MemoryQuestionStore struct {
	mu      sync.Mutex
	legacy  []models.LegacyQuestion
	generic []models.BankQuestion
}

// NewMemoryQuestionStore creates an empty question store
func NewMemoryQuestionStore() *MemoryQuestionStore {
	return &MemoryQuestionStore{}
}

// AddLegacy appends perTier legacy questions for every tier, numbering ids from 1
func (s *MemoryQuestionStore) AddLegacy(perTier int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tier := range models.Difficulties {
		for n := 0; n < perTier; n++ {
			id := int64(len(s.legacy) + 1)
			level := string(tier)
			set := tier.SetNumber()
			s.legacy = append(s.legacy, models.LegacyQuestion{
				ID:              id,
				QuestionText:    "Legacy question " + strconv.FormatInt(id, 10),
				ChoiceA:         "A",
				ChoiceB:         "B",
				ChoiceC:         "C",
				ChoiceD:         "D",
				CorrectChoice:   "A",
				DifficultyLevel: &level,
				SetNumber:       &set,
			})
		}
	}
}

// AddGeneric appends generic bank questions
func (s *MemoryQuestionStore) AddGeneric(questions ...models.BankQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generic = append(s.generic, questions...)
}

// LegacyIDs returns legacy ids matching filter
func (s *MemoryQuestionStore) LegacyIDs(_ context.Context, filter models.LegacyFilter) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for _, q := range s.legacy {
		if filter.Difficulty != nil && (q.DifficultyLevel == nil || !strings.EqualFold(*q.DifficultyLevel, string(*filter.Difficulty))) {
			continue
		}
		if filter.SetNumber != nil && (q.SetNumber == nil || *q.SetNumber != *filter.SetNumber) {
			continue
		}
		ids = append(ids, strconv.FormatInt(q.ID, 10))
	}
	return ids, nil
}

// GenericIDs returns active generic ids of category
func (s *MemoryQuestionStore) GenericIDs(_ context.Context, category string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for _, q := range s.generic {
		if q.IsActive && q.Category == category {
			ids = append(ids, q.ID)
		}
	}
	return ids, nil
}

// LegacyQuestions returns content for the given ids, omitting empty choices
func (s *MemoryQuestionStore) LegacyQuestions(_ context.Context, ids []string) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Question{}
	for _, q := range s.legacy {
		id := strconv.FormatInt(q.ID, 10)
		if !slices.Contains(ids, id) {
			continue
		}
		choices := []string{}
		for _, c := range []string{q.ChoiceA, q.ChoiceB, q.ChoiceC, q.ChoiceD} {
			if c != "" {
				choices = append(choices, c)
			}
		}
		out = append(out, models.Question{ID: id, Text: q.QuestionText, Choices: choices})
	}
	return out, nil
}

// GenericQuestions returns content and options ordered by sort order
func (s *MemoryQuestionStore) GenericQuestions(_ context.Context, ids []string) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Question{}
	for _, q := range s.generic {
		if !slices.Contains(ids, q.ID) {
			continue
		}
		options := slices.Clone(q.Options)
		slices.SortStableFunc(options, func(a, b models.BankOption) int { return a.SortOrder - b.SortOrder })
		choices := make([]string, 0, len(options))
		for _, o := range options {
			choices = append(choices, o.OptionText)
		}
		out = append(out, models.Question{ID: q.ID, Text: q.QuestionText, Choices: choices})
	}
	return out, nil
}
