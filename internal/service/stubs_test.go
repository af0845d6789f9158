package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"skill-assessment/internal/models"
	"skill-assessment/internal/repository"
)

func cloneRound(r *models.Round) *models.Round {
	c := *r
	c.History = append(models.History(nil), r.History...)
	return &c
}

// stubRoundStore is an in-memory RoundStore
type stubRoundStore struct {
	mu     sync.Mutex
	rounds map[string]*models.Round
	seq    int
	err    error
}

func newStubRoundStore() *stubRoundStore {
	return &stubRoundStore{rounds: make(map[string]*models.Round)}
}

func (s *stubRoundStore) Create(_ context.Context, round *models.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.seq++
	ts := time.Date(2024, 1, 1, 0, 0, s.seq, 0, time.UTC)
	round.CreatedAt, round.UpdatedAt = ts, ts
	s.rounds[round.ID] = cloneRound(round)
	return nil
}

func (s *stubRoundStore) GetByID(_ context.Context, id string) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.rounds[id]
	if !ok {
		return nil, nil
	}
	return cloneRound(r), nil
}

func (s *stubRoundStore) List(_ context.Context, filter models.RoundFilter) ([]models.Round, error) {
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
		out = append(out, *cloneRound(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubRoundStore) TitleInUse(_ context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rounds {
		if strings.EqualFold(r.Title, title) && r.Status != models.RoundStatusArchived {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRoundStore) Update(_ context.Context, round *models.Round, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	stored, ok := s.rounds[round.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := cloneRound(round)
	next.CreatedAt = stored.CreatedAt
	next.History = append(append(models.History(nil), stored.History...), entry)
	s.rounds[round.ID] = next
	return nil
}

// put stores a round directly, bypassing the service
func (s *stubRoundStore) put(r *models.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[r.ID] = cloneRound(r)
}

// stubSessionStore is an in-memory SessionStore; PopulateRefs holds one lock
// for its whole critical section like the row lock of the real store.
type stubSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*models.Session
	refs      map[string][]models.SessionQuestionRef
	fillCalls int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		sessions: make(map[string]*models.Session),
		refs:     make(map[string][]models.SessionQuestionRef),
	}
}

func (s *stubSessionStore) Upsert(_ context.Context, session *models.Session) (*models.Session, bool, error) {
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

func (s *stubSessionStore) GetByID(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	c := *existing
	return &c, nil
}

func (s *stubSessionStore) ListRefs(_ context.Context, sessionID string) ([]models.SessionQuestionRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SessionQuestionRef{}, s.refs[sessionID]...), nil
}

func (s *stubSessionStore) PopulateRefs(
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
		return append([]models.SessionQuestionRef{}, existing...), false, nil
	}
	s.fillCalls++
	refs, err := fill(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(refs) == 0 {
		return refs, false, nil
	}
	s.refs[sessionID] = append([]models.SessionQuestionRef{}, refs...)
	session.Status = models.SessionStatusPopulated
	return refs, true, nil
}

type legacyRow struct {
	id         int
	difficulty string
	set        int
	text       string
	choices    []string
}

type genericRow struct {
	id       string
	category string
	active   bool
	text     string
	options  []string
}

// stubQuestionStore is an in-memory QuestionStore
type stubQuestionStore struct {
	mu            sync.Mutex
	legacy        []legacyRow
	generic       []genericRow
	legacyFilters []models.LegacyFilter
	fetchErr      error
}

func (s *stubQuestionStore) LegacyIDs(_ context.Context, filter models.LegacyFilter) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacyFilters = append(s.legacyFilters, filter)
	ids := []string{}
	for _, row := range s.legacy {
		if filter.Difficulty != nil && row.difficulty != string(*filter.Difficulty) {
			continue
		}
		if filter.SetNumber != nil && row.set != *filter.SetNumber {
			continue
		}
		ids = append(ids, strconv.Itoa(row.id))
	}
	return ids, nil
}

func (s *stubQuestionStore) GenericIDs(_ context.Context, category string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for _, row := range s.generic {
		if row.active && row.category == category {
			ids = append(ids, row.id)
		}
	}
	return ids, nil
}

func (s *stubQuestionStore) LegacyQuestions(_ context.Context, ids []string) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []models.Question{}
	for _, row := range s.legacy {
		id := strconv.Itoa(row.id)
		if want[id] {
			out = append(out, models.Question{ID: id, Text: row.text, Choices: row.choices})
		}
	}
	return out, nil
}

func (s *stubQuestionStore) GenericQuestions(_ context.Context, ids []string) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []models.Question{}
	for _, row := range s.generic {
		if want[row.id] {
			out = append(out, models.Question{ID: row.id, Text: row.text, Choices: row.options})
		}
	}
	return out, nil
}

// seedLegacy adds n rows per tier; ids start at 1 and run easy, medium, hard
func (s *stubQuestionStore) seedLegacy(perTier int) {
	id := 1
	for i, tier := range models.Difficulties {
		for n := 0; n < perTier; n++ {
			s.legacy = append(s.legacy, legacyRow{
				id:         id,
				difficulty: string(tier),
				set:        i + 1,
				text:       "Question " + strconv.Itoa(id),
				choices:    []string{"A", "B", "C", "D"},
			})
			id++
		}
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
