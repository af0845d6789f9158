package service

import (
	"context"
	"fmt"
	"log/slog"

	"skill-assessment/internal/metrics"
	"skill-assessment/internal/models"
)

// Sampling strategies, reported in logs and metrics
const (
	StrategyDifficultyLevel = "difficulty_level"
	StrategySetNumber       = "set_number"
	StrategyWeighted        = "weighted"
	StrategyUnfiltered      = "unfiltered"
	StrategyCategory        = "category"
)

// SampleRequest describes the question set a session needs
type SampleRequest struct {
	Source        models.SourceTable
	Category      string
	QuestionCount int
	Weights       models.DifficultyWeights
}

// Sampler draws distinct question ids for a session
type Sampler struct {
	questions QuestionStore
	picker    Picker
	caps      models.BankCapabilities
}

// NewSampler creates a sampler over the given bank capabilities
func NewSampler(questions QuestionStore, picker Picker, caps models.BankCapabilities) *Sampler {
	return &Sampler{questions: questions, picker: picker, caps: caps}
}

// Capabilities returns the bank capabilities the sampler was built with
func (s *Sampler) Capabilities() models.BankCapabilities {
	return s.caps
}

// Sample returns up to req.QuestionCount distinct ids in display order and the strategy used.
// Fewer ids than requested is not an error.
func (s *Sampler) Sample(ctx context.Context, req SampleRequest) ([]string, string, error) {
	if req.QuestionCount <= 0 {
		return []string{}, StrategyUnfiltered, nil
	}

	var (
		ids      []string
		strategy string
		err      error
	)
	switch req.Source {
	case models.SourceLegacy:
		ids, strategy, err = s.sampleLegacy(ctx, req)
	case models.SourceGeneric:
		strategy = StrategyCategory
		ids, err = s.pickFrom(ctx, req.QuestionCount, func(ctx context.Context) ([]string, error) {
			return s.questions.GenericIDs(ctx, req.Category)
		})
	default:
		return nil, "", fmt.Errorf("unknown question source %q", req.Source)
	}
	if err != nil {
		return nil, "", err
	}

	metrics.SampledQuestions.WithLabelValues(string(req.Source), strategy).Observe(float64(len(ids)))
	slog.Debug("Sampled questions",
		"source", req.Source,
		"strategy", strategy,
		"requested", req.QuestionCount,
		"sampled", len(ids),
	)
	return ids, strategy, nil
}

func (s *Sampler) sampleLegacy(ctx context.Context, req SampleRequest) ([]string, string, error) {
	if tier, ok := req.Weights.SingleTier(); ok {
		filter, strategy := s.tierFilter(tier)
		ids, err := s.pickFrom(ctx, req.QuestionCount, func(ctx context.Context) ([]string, error) {
			return s.questions.LegacyIDs(ctx, filter)
		})
		return ids, strategy, err
	}

	if quotas, ok := req.Weights.Allocate(req.QuestionCount); ok && s.caps.DifficultyLevel {
		ids, err := s.sampleWeighted(ctx, req.QuestionCount, quotas)
		return ids, StrategyWeighted, err
	}

	ids, err := s.pickFrom(ctx, req.QuestionCount, func(ctx context.Context) ([]string, error) {
		return s.questions.LegacyIDs(ctx, models.LegacyFilter{})
	})
	return ids, StrategyUnfiltered, err
}

// tierFilter picks the narrowest predicate the bank supports for tier
func (s *Sampler) tierFilter(tier models.Difficulty) (models.LegacyFilter, string) {
	switch {
	case s.caps.DifficultyLevel:
		return models.LegacyFilter{Difficulty: &tier}, StrategyDifficultyLevel
	case s.caps.SetNumber:
		set := tier.SetNumber()
		return models.LegacyFilter{SetNumber: &set}, StrategySetNumber
	default:
		return models.LegacyFilter{}, StrategyUnfiltered
	}
}

// sampleWeighted draws each tier's quota, tops up shortfalls from the whole pool
// and shuffles the result so tiers are interleaved.
func (s *Sampler) sampleWeighted(ctx context.Context, total int, quotas map[models.Difficulty]int) ([]string, error) {
	chosen := make(map[string]struct{}, total)
	picked := make([]string, 0, total)

	for _, tier := range models.Difficulties {
		quota := quotas[tier]
		if quota == 0 {
			continue
		}
		filter, _ := s.tierFilter(tier)
		candidates, err := s.questions.LegacyIDs(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, id := range s.picker.Pick(without(distinct(candidates), chosen), quota) {
			chosen[id] = struct{}{}
			picked = append(picked, id)
		}
	}

	if missing := total - len(picked); missing > 0 {
		pool, err := s.questions.LegacyIDs(ctx, models.LegacyFilter{})
		if err != nil {
			return nil, err
		}
		for _, id := range s.picker.Pick(without(distinct(pool), chosen), missing) {
			chosen[id] = struct{}{}
			picked = append(picked, id)
		}
	}

	return s.picker.Pick(picked, len(picked)), nil
}

func (s *Sampler) pickFrom(ctx context.Context, k int, candidates func(ctx context.Context) ([]string, error)) ([]string, error) {
	ids, err := candidates(ctx)
	if err != nil {
		return nil, err
	}
	return s.picker.Pick(distinct(ids), k), nil
}
