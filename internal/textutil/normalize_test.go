package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "Critical BREACH, reported!",
			want:  "critical breach reported",
		},
		{
			name:  "removes urls",
			input: "details at https://example.com/report and www.example.org/more here",
			want:  "details at and here",
		},
		{
			name:  "collapses whitespace",
			input: "too   many\t\tspaces\n here",
			want:  "too many spaces here",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "!!! ??? ...",
			want:  "",
		},
		{
			name:  "keeps digits",
			input: "CVE-2024-1234 affects v2 systems",
			want:  "cve 2024 1234 affects v2 systems",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestTokens(t *testing.T) {
	tokens := Tokens("what ransomware attacks happened this week")

	assert.Contains(t, tokens, "ransomware")
	assert.Contains(t, tokens, "attacks")
	assert.Contains(t, tokens, "happened")
	assert.Contains(t, tokens, "week")
	assert.NotContains(t, tokens, "what", "stop words must be dropped")
	assert.NotContains(t, tokens, "this", "stop words must be dropped")
}

func TestTokensDropsShortAndNonAlphabetic(t *testing.T) {
	tokens := Tokens("ab c2c breach 2024")

	assert.NotContains(t, tokens, "ab", "two-letter tokens must be dropped")
	assert.NotContains(t, tokens, "c2c", "tokens with digits must be dropped")
	assert.NotContains(t, tokens, "2024")
	assert.Contains(t, tokens, "breach")
}

func TestFallbackTokensMatchesFiltering(t *testing.T) {
	text := "what ransomware attacks happened this week"

	primary := Tokens(text)
	fallback := fallbackTokens(text)

	assert.Equal(t, fallback, primary, "both tokenizer paths must agree on plain text")
}
