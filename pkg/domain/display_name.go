package domain

import (
	"strings"

	dErrors "friendsd/pkg/domain-errors"
)

// MaxDisplayNameLength bounds player names. Host names are at most 16 runes.
const MaxDisplayNameLength = 16

// ValidateDisplayName checks that name is non-empty, at most
// MaxDisplayNameLength bytes and made of ASCII letters, digits and
// underscores. It does not change case; display names are never keys.
func ValidateDisplayName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(name) > MaxDisplayNameLength {
		return dErrors.New(dErrors.CodeInvalidInput, "name is too long")
	}
	for _, r := range name {
		if !isNameRune(r) {
			return dErrors.New(dErrors.CodeInvalidInput, "name contains invalid characters")
		}
	}
	return nil
}

func isNameRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// SameName compares display names the way players type them: case
// insensitive, surrounding whitespace ignored.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
