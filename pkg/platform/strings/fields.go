// Package strings holds small string helpers shared by stores and transports.
package strings

import (
	"strings"
)

// SplitFields splits s on sep, trims each field and drops empty fields and
// duplicates. Order is preserved.
//
// Example:
//
//	SplitFields("a| b||a|", "|")
//	// Returns: []string{"a", "b"}
func SplitFields(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, sep)
	seen := make(map[string]struct{}, len(parts))
	result := make([]string, 0, len(parts))

	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// FoldKey normalizes a user-typed name into a case-insensitive lookup key.
func FoldKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Words splits a command line into whitespace separated words and lowercases
// the first one.
//
// Example:
//
//	Words("  INVITE  Bob ")
//	// Returns: []string{"invite", "Bob"}
func Words(line string) []string {
	words := strings.Fields(line)
	if len(words) > 0 {
		words[0] = strings.ToLower(words[0])
	}
	return words
}
