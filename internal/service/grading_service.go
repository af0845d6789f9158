package service

import (
	"context"
	"log/slog"

	"skill-assessment/internal/models"
	"skill-assessment/pkg/validator"
)

// GradeResult is the outcome of grading a submission
type GradeResult struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
	Graded bool `json:"graded"`
}

// Grader scores submitted answers; answers map question id to the chosen option
type Grader interface {
	Grade(ctx context.Context, round *models.Round, session *models.Session, answers map[string]string) (GradeResult, error)
}

// PendingGrader defers grading; every submission comes back ungraded
type PendingGrader struct{}

func (PendingGrader) Grade(context.Context, *models.Round, *models.Session, map[string]string) (GradeResult, error) {
	return GradeResult{Score: 0, Passed: false, Graded: false}, nil
}

// Submission is a received answer set together with its grade
type Submission struct {
	RoundID   string            `json:"roundId"`
	SessionID string            `json:"sessionId"`
	WorkerID  string            `json:"workerId"`
	Answers   map[string]string `json:"answers"`
	Result    GradeResult       `json:"result"`
}

// SubmitRequest is the payload of a submission
type SubmitRequest struct {
	Answers   map[string]string `json:"answers"`
	WorkerID  string            `json:"workerId"`
	SessionID string            `json:"sessionId"`
}

// GradingService accepts submissions and hands them to a Grader
type GradingService struct {
	rounds   RoundStore
	sessions SessionStore
	grader   Grader
}

// NewGradingService creates a grading service; a nil grader defers grading
func NewGradingService(rounds RoundStore, sessions SessionStore, grader Grader) *GradingService {
	if grader == nil {
		grader = PendingGrader{}
	}
	return &GradingService{rounds: rounds, sessions: sessions, grader: grader}
}

// Submit checks the round and, when a session id is given, the session binding
func (g *GradingService) Submit(ctx context.Context, roundID string, req SubmitRequest) (*Submission, error) {
	round, err := g.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, NewInternalError("get round", err)
	}
	if round == nil {
		return nil, NewNotFoundError(CodeNotFound)
	}

	var session *models.Session
	sessionID := validator.SanitizeString(req.SessionID)
	if sessionID != "" {
		if validator.ValidateIdentifier(sessionID) != nil {
			return nil, NewInvalidInputError(CodeInvalidSessionID)
		}
		session, err = g.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return nil, NewInternalError("get session", err)
		}
		if session == nil {
			return nil, NewNotFoundError(CodeNotFound)
		}
		if session.RoundID != round.ID {
			return nil, NewInvalidInputError(CodeInvalidSessionRound)
		}
	}

	answers := req.Answers
	if answers == nil {
		answers = map[string]string{}
	}

	result, err := g.grader.Grade(ctx, round, session, answers)
	if err != nil {
		return nil, NewInternalError("grade submission", err)
	}

	slog.Info("Submission received",
		"round_id", round.ID,
		"session_id", sessionID,
		"answers", len(answers),
		"graded", result.Graded,
	)
	return &Submission{
		RoundID:   round.ID,
		SessionID: sessionID,
		WorkerID:  req.WorkerID,
		Answers:   answers,
		Result:    result,
	}, nil
}
