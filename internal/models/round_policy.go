package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional distinguishes an absent JSON field from an explicit value or null
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that is present but null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON is only called for fields present in the payload
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON encodes the held value or null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// RoundPolicy is a partial round document as sent by maintenance callers.
// Create resolves absent fields to defaults; update only touches present fields.
type RoundPolicy struct {
	Category          Optional[string]            `json:"category" validate:"omitempty,max=100"`
	Title             Optional[string]            `json:"title" validate:"omitempty,max=255"`
	Description       Optional[string]            `json:"description" validate:"omitempty,max=5000"`
	QuestionCount     Optional[int]               `json:"questionCount" validate:"omitempty,min=1,max=500"`
	PassingScore      Optional[int]               `json:"passingScore" validate:"omitempty,min=0,max=100"`
	DurationMinutes   Optional[int]               `json:"durationMinutes" validate:"omitempty,min=1,max=1440"`
	StartAt           Optional[time.Time]         `json:"startAt"`
	EndAt             Optional[time.Time]         `json:"endAt"`
	FrequencyMonths   Optional[int]               `json:"frequencyMonths" validate:"omitempty,min=1,max=120"`
	ShowScore         Optional[bool]              `json:"showScore"`
	ShowAnswers       Optional[bool]              `json:"showAnswers"`
	ShowBreakdown     Optional[bool]              `json:"showBreakdown"`
	SubcategoryQuotas Optional[SubcategoryQuotas] `json:"subcategoryQuotas"`
	DifficultyWeights Optional[DifficultyWeights] `json:"difficultyWeights"`
	Criteria          Optional[Criteria]          `json:"criteria"`
	Status            Optional[string]            `json:"status" validate:"omitempty,oneof=draft active archived"`
	Active            Optional[bool]              `json:"active"`
}

// Empty reports whether no field was supplied
func (p *RoundPolicy) Empty() bool {
	return !(p.Category.Set || p.Title.Set || p.Description.Set || p.QuestionCount.Set ||
		p.PassingScore.Set || p.DurationMinutes.Set || p.StartAt.Set || p.EndAt.Set ||
		p.FrequencyMonths.Set || p.ShowScore.Set || p.ShowAnswers.Set || p.ShowBreakdown.Set ||
		p.SubcategoryQuotas.Set || p.DifficultyWeights.Set || p.Criteria.Set || p.Status.Set ||
		p.Active.Set)
}
