package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"skill-assessment/internal/events"
	"skill-assessment/internal/metrics"
	"skill-assessment/internal/models"
)

// SystemActor is recorded when a write carries no caller identity
const SystemActor = "system"

// RoundService is the round registry: CRUD plus append-only history
type RoundService struct {
	rounds    RoundStore
	publisher events.Publisher
	now       func() time.Time
	newID     func() string
}

// NewRoundService creates a new round service
func NewRoundService(rounds RoundStore, publisher events.Publisher) *RoundService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RoundService{
		rounds:    rounds,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// roundField reads one policy field of a round for history diffs
type roundField struct {
	name string
	get  func(r *models.Round) any
	set  func(p *models.RoundPolicy) bool
}

// roundFields lists every policy field in wire order
var roundFields = []roundField{
	{"category", func(r *models.Round) any { return r.Category }, func(p *models.RoundPolicy) bool { return p.Category.Set }},
	{"title", func(r *models.Round) any { return r.Title }, func(p *models.RoundPolicy) bool { return p.Title.Set }},
	{"description", func(r *models.Round) any { return r.Description }, func(p *models.RoundPolicy) bool { return p.Description.Set }},
	{"questionCount", func(r *models.Round) any { return r.QuestionCount }, func(p *models.RoundPolicy) bool { return p.QuestionCount.Set }},
	{"passingScore", func(r *models.Round) any { return r.PassingScore }, func(p *models.RoundPolicy) bool { return p.PassingScore.Set }},
	{"durationMinutes", func(r *models.Round) any { return r.DurationMinutes }, func(p *models.RoundPolicy) bool { return p.DurationMinutes.Set }},
	{"startAt", func(r *models.Round) any { return r.StartAt }, func(p *models.RoundPolicy) bool { return p.StartAt.Set }},
	{"endAt", func(r *models.Round) any { return r.EndAt }, func(p *models.RoundPolicy) bool { return p.EndAt.Set }},
	{"frequencyMonths", func(r *models.Round) any { return r.FrequencyMonths }, func(p *models.RoundPolicy) bool { return p.FrequencyMonths.Set }},
	{"showScore", func(r *models.Round) any { return r.ShowScore }, func(p *models.RoundPolicy) bool { return p.ShowScore.Set }},
	{"showAnswers", func(r *models.Round) any { return r.ShowAnswers }, func(p *models.RoundPolicy) bool { return p.ShowAnswers.Set }},
	{"showBreakdown", func(r *models.Round) any { return r.ShowBreakdown }, func(p *models.RoundPolicy) bool { return p.ShowBreakdown.Set }},
	{"subcategoryQuotas", func(r *models.Round) any { return r.SubcategoryQuotas }, func(p *models.RoundPolicy) bool { return p.SubcategoryQuotas.Set }},
	{"difficultyWeights", func(r *models.Round) any { return r.DifficultyWeights }, func(p *models.RoundPolicy) bool { return p.DifficultyWeights.Set }},
	{"criteria", func(r *models.Round) any { return r.Criteria }, func(p *models.RoundPolicy) bool { return p.Criteria.Set }},
	{"status", func(r *models.Round) any { return r.Status }, func(p *models.RoundPolicy) bool { return p.Status.Set }},
	{"active", func(r *models.Round) any { return r.Active }, func(p *models.RoundPolicy) bool { return p.Active.Set }},
}

func marshalValue(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

func actorOrSystem(actorID string) string {
	if a := strings.TrimSpace(actorID); a != "" {
		return a
	}
	return SystemActor
}

// List returns rounds matching filter, newest first
func (s *RoundService) List(ctx context.Context, filter models.RoundFilter) ([]models.Round, error) {
	rounds, err := s.rounds.List(ctx, filter)
	if err != nil {
		return nil, NewInternalError("list rounds", err)
	}
	return rounds, nil
}

// Get returns a round or NotFound
func (s *RoundService) Get(ctx context.Context, id string) (*models.Round, error) {
	round, err := s.rounds.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("get round", err)
	}
	if round == nil {
		return nil, NewNotFoundError(CodeNotFound)
	}
	return round, nil
}

// History returns the audit log of a round
func (s *RoundService) History(ctx context.Context, id string) (models.History, error) {
	round, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return round.History, nil
}

// Create validates policy, applies defaults, seeds history and returns the stored round
func (s *RoundService) Create(ctx context.Context, policy *models.RoundPolicy, actorID string) (*models.Round, error) {
	if policy.Category.Value == nil || strings.TrimSpace(*policy.Category.Value) == "" {
		return nil, NewInvalidInputError(CodeInvalidCategory)
	}
	if policy.Title.Value == nil || strings.TrimSpace(*policy.Title.Value) == "" {
		return nil, NewInvalidInputError(CodeInvalidTitle)
	}
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}

	round := &models.Round{
		QuestionCount:     models.DefaultQuestionCount,
		PassingScore:      models.DefaultPassingScore,
		DurationMinutes:   models.DefaultDurationMinutes,
		ShowScore:         true,
		ShowAnswers:       false,
		ShowBreakdown:     true,
		SubcategoryQuotas: models.SubcategoryQuotas{},
		DifficultyWeights: models.DifficultyWeights{},
		Criteria:          models.DefaultCriteria(),
		Status:            models.RoundStatusDraft,
		Active:            true,
	}
	applyPolicy(round, policy)
	round.Category = strings.TrimSpace(round.Category)
	round.Title = strings.TrimSpace(round.Title)
	if err := validateWindow(round); err != nil {
		return nil, err
	}

	inUse, err := s.rounds.TitleInUse(ctx, round.Title)
	if err != nil {
		return nil, NewInternalError("check round title", err)
	}
	if inUse {
		return nil, NewConflictError(CodeDuplicateTitle)
	}

	actor := actorOrSystem(actorID)
	now := s.now()
	round.ID = s.newID()
	round.CreatedBy = &actor
	round.UpdatedBy = &actor

	changes := make([]models.FieldDiff, 0, len(roundFields))
	for _, f := range roundFields {
		changes = append(changes, models.FieldDiff{
			Field: f.name,
			From:  json.RawMessage("null"),
			To:    marshalValue(f.get(round)),
		})
	}
	round.History = models.History{{
		Version:   models.HistoryVersion,
		Timestamp: now,
		Actor:     actor,
		Action:    models.HistoryActionCreated,
		Changes:   changes,
	}}

	if err := s.rounds.Create(ctx, round); err != nil {
		return nil, NewInternalError("create round", err)
	}

	stored, err := s.Get(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	metrics.RoundMutations.WithLabelValues("create").Inc()
	slog.Info("Round created", "round_id", stored.ID, "category", stored.Category, "actor", actor)
	s.publish(ctx, events.RoundCreated, stored)
	return stored, nil
}

// Update applies the present fields of patch and appends one history entry.
// The existence check and the write are not atomic: an update racing a delete can
// flip active back to true. Callers needing strict finality re-check status.
func (s *RoundService) Update(ctx context.Context, id string, patch *models.RoundPolicy, actorID string) (*models.Round, error) {
	if patch.Empty() {
		return nil, NewInvalidInputError(CodeNoFieldsToUpdate)
	}
	if err := validatePolicy(patch); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	applyPolicy(&next, patch)
	if err := validateWindow(&next); err != nil {
		return nil, err
	}

	changes := []models.FieldDiff{}
	for _, f := range roundFields {
		if !f.set(patch) {
			continue
		}
		from := marshalValue(f.get(current))
		to := marshalValue(f.get(&next))
		if string(from) != string(to) {
			changes = append(changes, models.FieldDiff{Field: f.name, From: from, To: to})
		}
	}

	actor := actorOrSystem(actorID)
	now := s.now()
	next.UpdatedBy = &actor
	next.UpdatedAt = now

	entry := models.HistoryEntry{
		Version:   models.HistoryVersion,
		Timestamp: now,
		Actor:     actor,
		Action:    models.HistoryActionUpdated,
		Changes:   changes,
	}
	if err := s.write(ctx, &next, entry, "update round"); err != nil {
		return nil, err
	}

	stored, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.RoundMutations.WithLabelValues("update").Inc()
	slog.Info("Round updated", "round_id", id, "changed_fields", len(changes), "actor", actor)
	s.publish(ctx, events.RoundUpdated, stored)
	return stored, nil
}

// Delete archives a round; the row is kept
func (s *RoundService) Delete(ctx context.Context, id string, actorID string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	actor := actorOrSystem(actorID)
	now := s.now()
	next := *current
	next.Active = false
	next.Status = models.RoundStatusArchived
	next.UpdatedBy = &actor
	next.UpdatedAt = now

	entry := models.HistoryEntry{
		Version:   models.HistoryVersion,
		Timestamp: now,
		Actor:     actor,
		Action:    models.HistoryActionDeleted,
	}
	if err := s.write(ctx, &next, entry, "delete round"); err != nil {
		return err
	}

	metrics.RoundMutations.WithLabelValues("delete").Inc()
	slog.Info("Round archived", "round_id", id, "actor", actor)
	s.publish(ctx, events.RoundDeleted, map[string]string{"id": id, "actor": actor})
	return nil
}

func (s *RoundService) write(ctx context.Context, round *models.Round, entry models.HistoryEntry, op string) error {
	err := s.rounds.Update(ctx, round, entry)
	if isStoreNotFound(err) {
		return NewNotFoundError(CodeNotFound)
	}
	if err != nil {
		return NewInternalError(op, err)
	}
	return nil
}

func (s *RoundService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, events.New(eventType, payload)); err != nil {
		slog.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}

// applyPolicy copies every present field of p onto r. Null clears nullable
// fields and resets structured ones to their defaults.
func applyPolicy(r *models.Round, p *models.RoundPolicy) {
	if p.Category.Value != nil {
		r.Category = *p.Category.Value
	}
	if p.Title.Value != nil {
		r.Title = *p.Title.Value
	}
	if p.Description.Set {
		r.Description = ""
		if p.Description.Value != nil {
			r.Description = *p.Description.Value
		}
	}
	if p.QuestionCount.Value != nil {
		r.QuestionCount = *p.QuestionCount.Value
	}
	if p.PassingScore.Value != nil {
		r.PassingScore = *p.PassingScore.Value
	}
	if p.DurationMinutes.Value != nil {
		r.DurationMinutes = *p.DurationMinutes.Value
	}
	if p.StartAt.Set {
		r.StartAt = p.StartAt.Value
	}
	if p.EndAt.Set {
		r.EndAt = p.EndAt.Value
	}
	if p.FrequencyMonths.Set {
		r.FrequencyMonths = p.FrequencyMonths.Value
	}
	if p.ShowScore.Value != nil {
		r.ShowScore = *p.ShowScore.Value
	}
	if p.ShowAnswers.Value != nil {
		r.ShowAnswers = *p.ShowAnswers.Value
	}
	if p.ShowBreakdown.Value != nil {
		r.ShowBreakdown = *p.ShowBreakdown.Value
	}
	if p.SubcategoryQuotas.Set {
		r.SubcategoryQuotas = models.SubcategoryQuotas{}
		if p.SubcategoryQuotas.Value != nil && *p.SubcategoryQuotas.Value != nil {
			r.SubcategoryQuotas = *p.SubcategoryQuotas.Value
		}
	}
	if p.DifficultyWeights.Set {
		r.DifficultyWeights = models.DifficultyWeights{}
		if p.DifficultyWeights.Value != nil {
			r.DifficultyWeights = *p.DifficultyWeights.Value
		}
	}
	if p.Criteria.Set {
		r.Criteria = models.DefaultCriteria()
		if p.Criteria.Value != nil {
			r.Criteria = *p.Criteria.Value
		}
	}
	if p.Status.Value != nil {
		r.Status = *p.Status.Value
	}
	if p.Active.Value != nil {
		r.Active = *p.Active.Value
	}
}
