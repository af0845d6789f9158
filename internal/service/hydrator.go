package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"skill-assessment/internal/metrics"
	"skill-assessment/internal/models"
)

// Hydrator loads question content for persisted refs across both banks
type Hydrator struct {
	questions QuestionStore
}

// NewHydrator creates a new hydrator
func NewHydrator(questions QuestionStore) *Hydrator {
	return &Hydrator{questions: questions}
}

// Hydrate returns the questions of refs in display order. Each bank is queried
// once, concurrently. Refs whose content is missing are dropped.
func (h *Hydrator) Hydrate(ctx context.Context, refs []models.SessionQuestionRef) ([]models.DeliveredQuestion, error) {
	ordered := make([]models.SessionQuestionRef, len(refs))
	copy(ordered, refs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].DisplayOrder < ordered[j].DisplayOrder })

	idsBySource := make(map[models.SourceTable][]string)
	for _, ref := range ordered {
		idsBySource[ref.SourceTable] = append(idsBySource[ref.SourceTable], ref.QuestionID)
	}

	var mu sync.Mutex
	content := make(map[models.SourceTable]map[string]models.Question, len(idsBySource))

	g, gctx := errgroup.WithContext(ctx)
	for source, ids := range idsBySource {
		var fetch func(context.Context, []string) ([]models.Question, error)
		switch source {
		case models.SourceLegacy:
			fetch = h.questions.LegacyQuestions
		case models.SourceGeneric:
			fetch = h.questions.GenericQuestions
		default:
			slog.Warn("Question refs with unknown source table", "source", source, "count", len(ids))
			continue
		}

		g.Go(func() error {
			questions, err := fetch(gctx, ids)
			if err != nil {
				return err
			}
			byID := make(map[string]models.Question, len(questions))
			for _, q := range questions {
				byID[q.ID] = q
			}
			mu.Lock()
			content[source] = byID
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	delivered := make([]models.DeliveredQuestion, 0, len(ordered))
	for _, ref := range ordered {
		q, ok := content[ref.SourceTable][ref.QuestionID]
		if !ok {
			slog.Debug("Dropping question without content",
				"session_id", ref.SessionID,
				"question_id", ref.QuestionID,
				"source", ref.SourceTable,
			)
			metrics.HydrationMissing.WithLabelValues(string(ref.SourceTable)).Inc()
			continue
		}
		choices := q.Choices
		if choices == nil {
			choices = []string{}
		}
		delivered = append(delivered, models.DeliveredQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Choices: choices,
			Order:   ref.DisplayOrder,
		})
	}
	return delivered, nil
}
