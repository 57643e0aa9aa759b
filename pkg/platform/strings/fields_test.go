package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "only whitespace", input: "   ", expected: nil},
		{name: "single field", input: "foo", expected: []string{"foo"}},
		{name: "trims fields", input: " foo | bar|baz ", expected: []string{"foo", "bar", "baz"}},
		{name: "drops empty fields", input: "|foo||bar|", expected: []string{"foo", "bar"}},
		{name: "removes duplicates preserving order", input: "b|a|b|c|a", expected: []string{"b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitFields(tt.input, "|"))
		})
	}
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "notch", FoldKey("  NoTcH "))
	assert.Equal(t, "", FoldKey("   "))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"invite", "Bob"}, Words("  INVITE  Bob "))
	assert.Equal(t, []string{"list"}, Words("List"))
	assert.Empty(t, Words("   "))
}
