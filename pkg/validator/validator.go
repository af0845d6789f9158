package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxIdentifierLength bounds session ids and bank question ids
const MaxIdentifierLength = 64

var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	ErrEmptyIdentifier   = errors.New("identifier is required")
	ErrIdentifierTooLong = fmt.Errorf("identifier exceeds %d characters", MaxIdentifierLength)
	ErrIdentifierChars   = errors.New("identifier may only contain letters, digits, '-' and '_'")
)

// ValidateIdentifier checks an opaque id supplied by a caller
func ValidateIdentifier(id string) error {
	switch {
	case id == "":
		return ErrEmptyIdentifier
	case len(id) > MaxIdentifierLength:
		return ErrIdentifierTooLong
	case !identifierRegex.MatchString(id):
		return ErrIdentifierChars
	}
	return nil
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(field, value string) error {
	if SanitizeString(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// SanitizeString removes null bytes and surrounding whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// SanitizeKey normalizes a case-insensitive lookup key such as a status or header name
func SanitizeKey(s string) string {
	return strings.ToLower(SanitizeString(s))
}
