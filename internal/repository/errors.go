package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned by writes that matched no row
	ErrNotFound = errors.New("record not found")
	// ErrSessionRoundMismatch is returned when a session id is already bound to another round
	ErrSessionRoundMismatch = errors.New("session belongs to another round")
)

// isUniqueViolation reports whether err is a PostgreSQL unique_violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
