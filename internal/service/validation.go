package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"skill-assessment/internal/models"
)

var policyValidator = newPolicyValidator()

func newPolicyValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their wire names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// validate the held pointer; absent and null values are skipped by omitempty
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		return field.FieldByName("Value").Interface()
	}, models.Optional[string]{}, models.Optional[int]{})

	return v
}

// validatePolicy checks the field-level rules shared by create and update.
// Errors carry the code invalid_<field>.
func validatePolicy(p *models.RoundPolicy) error {
	if err := policyValidator.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return NewInvalidInputError("invalid_" + verrs[0].Field())
		}
		return NewInvalidInputError("invalid_input")
	}

	if p.Category.Set && (p.Category.Value == nil || strings.TrimSpace(*p.Category.Value) == "") {
		return NewInvalidInputError(CodeInvalidCategory)
	}
	if p.Title.Set && (p.Title.Value == nil || strings.TrimSpace(*p.Title.Value) == "") {
		return NewInvalidInputError(CodeInvalidTitle)
	}

	// non-nullable scalars
	nonNull := []struct {
		name string
		set  bool
		null bool
	}{
		{"questionCount", p.QuestionCount.Set, p.QuestionCount.Value == nil},
		{"passingScore", p.PassingScore.Set, p.PassingScore.Value == nil},
		{"durationMinutes", p.DurationMinutes.Set, p.DurationMinutes.Value == nil},
		{"showScore", p.ShowScore.Set, p.ShowScore.Value == nil},
		{"showAnswers", p.ShowAnswers.Set, p.ShowAnswers.Value == nil},
		{"showBreakdown", p.ShowBreakdown.Set, p.ShowBreakdown.Value == nil},
		{"status", p.Status.Set, p.Status.Value == nil},
		{"active", p.Active.Set, p.Active.Value == nil},
	}
	for _, f := range nonNull {
		if f.set && f.null {
			return NewInvalidInputError("invalid_" + f.name)
		}
	}

	if p.DifficultyWeights.Value != nil && !p.DifficultyWeights.Value.Valid() {
		return NewInvalidInputError("invalid_difficultyWeights")
	}
	if p.Criteria.Value != nil && !p.Criteria.Value.Valid() {
		return NewInvalidInputError("invalid_criteria")
	}
	if p.SubcategoryQuotas.Value != nil {
		for name, quota := range *p.SubcategoryQuotas.Value {
			if strings.TrimSpace(name) == "" || quota < 0 {
				return NewInvalidInputError("invalid_subcategoryQuotas")
			}
		}
	}
	return nil
}

// validateWindow rejects a window whose end precedes its start
func validateWindow(r *models.Round) error {
	if r.StartAt != nil && r.EndAt != nil && r.EndAt.Before(*r.StartAt) {
		return NewInvalidInputError("invalid_endAt")
	}
	return nil
}
