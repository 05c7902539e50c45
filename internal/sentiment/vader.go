package sentiment

import (
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// Vader scores polarity with the VADER lexicon, the same model the
// upstream threat feeds are calibrated against.
type Vader struct{}

func NewVader() *Vader {
	return &Vader{}
}

func (v *Vader) Polarity(text string) (Scores, error) {
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	result := sentitext.PolarityScore(parsed)

	return Scores{
		Compound: result.Compound,
		Negative: result.Negative,
		Positive: result.Positive,
		Neutral:  result.Neutral,
	}, nil
}
