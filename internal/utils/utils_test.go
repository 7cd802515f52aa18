package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSessionTitle(t *testing.T) {
	title := GenerateSessionTitle()

	assert.NotEmpty(t, title, "Generated title should not be empty")
	assert.NotContains(t, title, "_", "Generated title should use hyphens, not underscores")
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already clean",
			input:    "morning-review",
			expected: "morning-review",
		},
		{
			name:     "spaces and case",
			input:    "Morning Review Notes",
			expected: "morning-review-notes",
		},
		{
			name:     "separators collapse",
			input:    "logs/2026_08__replay",
			expected: "logs-2026-08-replay",
		},
		{
			name:     "leading and trailing junk",
			input:    "..weird name..",
			expected: "weird-name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeTitle(tt.input), "Sanitized title should match")
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10), "Short strings should pass through")
	assert.Equal(t, "exactly", TruncateString("exactly", 7), "Strings at the limit should pass through")

	long := strings.Repeat("x", 20)
	got := TruncateString(long, 10)
	assert.Len(t, []rune(got), 10, "Truncated string should honor the limit")
	assert.True(t, strings.HasSuffix(got, "..."), "Truncated string should end with an ellipsis")

	assert.Equal(t, "", TruncateString("anything", 0), "Zero limit should produce an empty string")
	assert.Equal(t, "ab", TruncateString("abcdef", 2), "Tiny limits should cut without an ellipsis")
}
