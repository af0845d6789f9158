package service

import (
	"errors"
	"fmt"

	"skill-assessment/internal/repository"
)

// ErrorKind classifies service failures; handlers map kinds onto HTTP statuses
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindNotFound     ErrorKind = "not_found"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindUnavailable  ErrorKind = "unavailable"
	KindInternal     ErrorKind = "internal"
)

// Error codes returned to callers. They are stable and meant to be branched on.
const (
	CodeNotFound            = "not_found"
	CodeInvalidCategory     = "invalid_category"
	CodeInvalidTitle        = "invalid_title"
	CodeDuplicateTitle      = "duplicate_title"
	CodeNoFieldsToUpdate    = "No fields to update"
	CodeRoundNotActive      = "Round is not active"
	CodeRoundNotStarted     = "Round has not started yet"
	CodeRoundEnded          = "Round has ended"
	CodeInvalidSessionRound = "invalid_session_round"
	CodeInvalidSessionID    = "invalid_session_id"
	CodeNoQuestions         = "no_questions_available"
	CodeInvalidStatus       = "invalid_status"
	CodeInternal            = "internal_error"
)

// Error is a classified service failure
type Error struct {
	Kind ErrorKind
	Code string
	Err  error // underlying cause, never shown to callers
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func NewInvalidInputError(code string) error { return &Error{Kind: KindInvalidInput, Code: code} }
func NewNotFoundError(code string) error     { return &Error{Kind: KindNotFound, Code: code} }
func NewForbiddenError(code string) error    { return &Error{Kind: KindForbidden, Code: code} }
func NewConflictError(code string) error     { return &Error{Kind: KindConflict, Code: code} }
func NewUnavailableError(code string) error  { return &Error{Kind: KindUnavailable, Code: code} }

// NewInternalError wraps an unexpected storage or runtime failure
func NewInternalError(op string, err error) error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Err: fmt.Errorf("%s: %w", op, err)}
}

// AsError extracts a classified error from err's chain
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a classified error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	se, ok := AsError(err)
	return ok && se.Kind == kind
}

// isStoreNotFound reports whether a store write matched no row
func isStoreNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
