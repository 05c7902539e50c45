package textutil

import (
	"regexp"
	"unicode"

	"github.com/jdkato/prose/v2"
)

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// Both tokenizer paths must drop the same stop words so that topic
// extraction behaves identically whichever path runs.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "can": {}, "what": {}, "how": {}, "when": {}, "where": {},
	"why": {}, "who": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

// Tokens splits text into alphabetic words longer than two characters,
// excluding stop words. The prose tokenizer is the primary path; a
// regex split covers inputs prose cannot handle.
func Tokens(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return fallbackTokens(text)
	}

	var out []string
	for _, tok := range doc.Tokens() {
		if keepToken(tok.Text) {
			out = append(out, tok.Text)
		}
	}
	return out
}

func fallbackTokens(text string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(text, -1) {
		if keepToken(w) {
			out = append(out, w)
		}
	}
	return out
}

func keepToken(tok string) bool {
	if len(tok) <= 2 {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	_, stop := stopWords[tok]
	return !stop
}
