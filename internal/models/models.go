package models

import (
	"time"
)

// Round statuses
const (
	RoundStatusDraft    = "draft"
	RoundStatusActive   = "active"
	RoundStatusArchived = "archived"
)

// Session statuses
const (
	SessionStatusActive    = "active"    // created, no question refs yet
	SessionStatusPopulated = "populated" // question refs written, read-only from here on
)

// Round defaults applied at creation time
const (
	DefaultQuestionCount   = 60
	DefaultPassingScore    = 60
	DefaultDurationMinutes = 60
)

// SourceTable identifies the question backend a session draws from
type SourceTable string

const (
	// SourceLegacy is the fixed-schema bank with four choice columns
	SourceLegacy SourceTable = "structural_questions"
	// SourceGeneric is the bank with one row per option
	SourceGeneric SourceTable = "question_bank"
)

// Round represents an assessment round: a categorized test blueprint
type Round struct {
	ID                string            `json:"id" db:"id"`
	Category          string            `json:"category" db:"category"`
	Title             string            `json:"title" db:"title"`
	Description       string            `json:"description" db:"description"`
	QuestionCount     int               `json:"questionCount" db:"question_count"`
	PassingScore      int               `json:"passingScore" db:"passing_score"`
	DurationMinutes   int               `json:"durationMinutes" db:"duration_minutes"`
	StartAt           *time.Time        `json:"startAt" db:"start_at"`
	EndAt             *time.Time        `json:"endAt" db:"end_at"`
	FrequencyMonths   *int              `json:"frequencyMonths" db:"frequency_months"`
	ShowScore         bool              `json:"showScore" db:"show_score"`
	ShowAnswers       bool              `json:"showAnswers" db:"show_answers"`
	ShowBreakdown     bool              `json:"showBreakdown" db:"show_breakdown"`
	SubcategoryQuotas SubcategoryQuotas `json:"subcategoryQuotas" db:"subcategory_quotas"`
	DifficultyWeights DifficultyWeights `json:"difficultyWeights" db:"difficulty_weights"`
	Criteria          Criteria          `json:"criteria" db:"criteria"`
	Status            string            `json:"status" db:"status"` // draft, active, archived
	Active            bool              `json:"active" db:"active"`
	History           History           `json:"history" db:"history"`
	CreatedBy         *string           `json:"createdBy,omitempty" db:"created_by"`
	UpdatedBy         *string           `json:"updatedBy,omitempty" db:"updated_by"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`
}

// IsLive reports whether the round is open for delivery regardless of its time window
func (r *Round) IsLive() bool {
	return r.Active && r.Status == RoundStatusActive
}

// RoundFilter restricts a round listing; nil fields are not applied
type RoundFilter struct {
	Category *string
	Status   *string
	Active   *bool
}

// Session represents one attempt of a worker or user against a round
type Session struct {
	ID            string      `json:"id" db:"id"`
	RoundID       string      `json:"roundId" db:"round_id"`
	WorkerID      *string     `json:"workerId,omitempty" db:"worker_id"`
	UserID        *string     `json:"userId,omitempty" db:"user_id"`
	Status        string      `json:"status" db:"status"`
	QuestionCount int         `json:"questionCount" db:"question_count"` // snapshot taken at creation
	Source        SourceTable `json:"source" db:"source_table"`
	LastSeenAt    time.Time   `json:"lastSeenAt" db:"last_seen_at"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
}

// SessionQuestionRef binds one ordered slot of a session to a question id
type SessionQuestionRef struct {
	SessionID    string      `json:"sessionId" db:"session_id"`
	QuestionID   string      `json:"questionId" db:"question_id"`
	DisplayOrder int         `json:"displayOrder" db:"display_order"` // 1-based
	SourceTable  SourceTable `json:"sourceTable" db:"source_table"`
}

// Question is the backend-agnostic view of a multiple-choice question
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

// DeliveredQuestion is a question placed at its session display order
type DeliveredQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
	Order   int      `json:"order"`
}

// LegacyQuestion is a row of the fixed-schema bank, used by imports
type LegacyQuestion struct {
	ID              int64
	QuestionText    string
	ChoiceA         string
	ChoiceB         string
	ChoiceC         string
	ChoiceD         string
	CorrectChoice   string
	DifficultyLevel *string
	SetNumber       *int
}

// BankQuestion is a row of the generic bank together with its options, used by imports
type BankQuestion struct {
	ID           string
	Category     string
	Subcategory  string
	QuestionText string
	IsActive     bool
	Options      []BankOption
}

// BankOption is one choice row of a generic bank question
type BankOption struct {
	OptionText string
	IsCorrect  bool
	SortOrder  int
}

// BankCapabilities describes the optional sampling columns of the legacy bank
type BankCapabilities struct {
	DifficultyLevel bool `json:"difficultyLevel"`
	SetNumber       bool `json:"setNumber"`
}

// LegacyFilter restricts legacy candidates; at most one field is set
type LegacyFilter struct {
	Difficulty *Difficulty
	SetNumber  *int
}
