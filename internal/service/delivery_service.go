package service

import (
	"context"
	"log/slog"

	"skill-assessment/internal/events"
	"skill-assessment/internal/metrics"
	"skill-assessment/internal/models"
)

// Delivery is the question set served for one session
type Delivery struct {
	SessionID string
	Round     *models.Round
	Questions []models.DeliveredQuestion
}

// DeliveryService serves the question set of a session, sampling it on first access
type DeliveryService struct {
	rounds    RoundStore
	sessions  *SessionService
	store     SessionStore
	sampler   *Sampler
	hydrator  *Hydrator
	publisher events.Publisher
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(
	rounds RoundStore,
	sessions *SessionService,
	store SessionStore,
	sampler *Sampler,
	hydrator *Hydrator,
	publisher events.Publisher,
) *DeliveryService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &DeliveryService{
		rounds:    rounds,
		sessions:  sessions,
		store:     store,
		sampler:   sampler,
		hydrator:  hydrator,
		publisher: publisher,
	}
}

// Deliver gates the round, resolves the session, populates its refs exactly once
// and returns the hydrated questions in display order.
func (d *DeliveryService) Deliver(ctx context.Context, roundID string, req SessionRequest) (*Delivery, error) {
	delivery, err := d.deliver(ctx, roundID, req)
	if err != nil {
		if se, ok := AsError(err); ok {
			metrics.DeliveryErrors.WithLabelValues(se.Code).Inc()
		} else {
			metrics.DeliveryErrors.WithLabelValues(CodeInternal).Inc()
		}
		return nil, err
	}
	return delivery, nil
}

func (d *DeliveryService) deliver(ctx context.Context, roundID string, req SessionRequest) (*Delivery, error) {
	round, err := d.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, NewInternalError("get round", err)
	}
	if round == nil {
		return nil, NewNotFoundError(CodeNotFound)
	}
	if err := d.sessions.Gate(round); err != nil {
		return nil, err
	}

	session, created, err := d.sessions.GetOrCreate(ctx, round, req)
	if err != nil {
		return nil, err
	}
	metrics.SessionsResolved.Inc()
	if created {
		slog.Info("Session started", "session_id", session.ID, "round_id", round.ID, "source", session.Source)
		d.publish(ctx, events.SessionStarted, map[string]any{
			"sessionId": session.ID,
			"roundId":   round.ID,
			"workerId":  session.WorkerID,
			"userId":    session.UserID,
		})
	}

	refs, err := d.store.ListRefs(ctx, session.ID)
	if err != nil {
		return nil, NewInternalError("list question refs", err)
	}
	if len(refs) == 0 {
		refs, err = d.populate(ctx, round, session)
		if err != nil {
			return nil, err
		}
	}
	if len(refs) == 0 {
		return nil, NewUnavailableError(CodeNoQuestions)
	}

	questions, err := d.hydrator.Hydrate(ctx, refs)
	if err != nil {
		return nil, NewInternalError("hydrate questions", err)
	}

	return &Delivery{SessionID: session.ID, Round: round, Questions: questions}, nil
}

// populate samples and stores the refs of session inside the session's critical section
func (d *DeliveryService) populate(ctx context.Context, round *models.Round, session *models.Session) ([]models.SessionQuestionRef, error) {
	var strategy string
	fill := func(ctx context.Context) ([]models.SessionQuestionRef, error) {
		ids, used, err := d.sampler.Sample(ctx, SampleRequest{
			Source:        session.Source,
			Category:      round.Category,
			QuestionCount: session.QuestionCount,
			Weights:       round.DifficultyWeights,
		})
		if err != nil {
			return nil, err
		}
		strategy = used
		refs := make([]models.SessionQuestionRef, len(ids))
		for i, id := range ids {
			refs[i] = models.SessionQuestionRef{
				SessionID:    session.ID,
				QuestionID:   id,
				DisplayOrder: i + 1,
				SourceTable:  session.Source,
			}
		}
		return refs, nil
	}

	refs, wrote, err := d.store.PopulateRefs(ctx, session.ID, fill)
	if err != nil {
		if isStoreNotFound(err) {
			return nil, NewNotFoundError(CodeNotFound)
		}
		if _, ok := AsError(err); ok {
			return nil, err
		}
		return nil, NewInternalError("populate question refs", err)
	}

	if wrote {
		metrics.SessionsPopulated.WithLabelValues(string(session.Source)).Inc()
		slog.Info("Session populated",
			"session_id", session.ID,
			"round_id", round.ID,
			"strategy", strategy,
			"questions", len(refs),
		)
		d.publish(ctx, events.SessionPopulated, map[string]any{
			"sessionId": session.ID,
			"roundId":   round.ID,
			"source":    session.Source,
			"count":     len(refs),
		})
	}
	return refs, nil
}

func (d *DeliveryService) publish(ctx context.Context, eventType string, payload any) {
	if err := d.publisher.Publish(ctx, events.New(eventType, payload)); err != nil {
		slog.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}
