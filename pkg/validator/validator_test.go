package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want error
	}{
		{"uuid", "3f1c2a9e-0b5d-4c1e-9f3a-7d2b8e6a4c10", nil},
		{"underscores", "session_01", nil},
		{"max length", strings.Repeat("a", MaxIdentifierLength), nil},
		{"empty", "", ErrEmptyIdentifier},
		{"too long", strings.Repeat("a", MaxIdentifierLength+1), ErrIdentifierTooLong},
		{"space", "abc def", ErrIdentifierChars},
		{"slash", "../etc", ErrIdentifierChars},
		{"unicode", "sessión", ErrIdentifierChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.id)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("title", "Go basics"))
	assert.EqualError(t, ValidateRequired("title", "  \x00 "), "title is required")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hel\x00lo\n"))
	assert.Equal(t, "online", SanitizeKey(" ONLINE "))
	assert.Equal(t, "", SanitizeString(""))
}
