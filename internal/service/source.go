package service

import (
	"strings"

	"skill-assessment/internal/models"
)

// DefaultStructuralCategory is the category served by the legacy bank
const DefaultStructuralCategory = "structural"

// SourceResolver maps a round category to the bank its questions come from
type SourceResolver struct {
	structural string
}

// NewSourceResolver creates a resolver routing structuralCategory to the legacy bank
func NewSourceResolver(structuralCategory string) SourceResolver {
	c := strings.TrimSpace(structuralCategory)
	if c == "" {
		c = DefaultStructuralCategory
	}
	return SourceResolver{structural: c}
}

// Resolve returns the legacy bank for the structural category and the generic bank otherwise
func (r SourceResolver) Resolve(category string) models.SourceTable {
	if strings.EqualFold(strings.TrimSpace(category), r.structural) {
		return models.SourceLegacy
	}
	return models.SourceGeneric
}
