package textutil

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Normalize feeds its own output into downstream substring matching, so
// running it twice must not change the result.
func TestNormalizeIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.String().Draw(rt, "input")

		once := Normalize(input)
		twice := Normalize(once)

		if once != twice {
			rt.Errorf("Normalize not idempotent: %q -> %q -> %q", input, once, twice)
		}
	})
}

func TestNormalizeOutputShape(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.String().Draw(rt, "input")

		out := Normalize(input)

		if out != strings.TrimSpace(out) {
			rt.Errorf("output has surrounding whitespace: %q", out)
		}
		if strings.Contains(out, "  ") {
			rt.Errorf("output has uncollapsed whitespace: %q", out)
		}
		for _, r := range out {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' '
			if !ok {
				rt.Errorf("output contains %q, want only lowercase alphanumerics and spaces: %q", r, out)
				break
			}
		}
	})
}
