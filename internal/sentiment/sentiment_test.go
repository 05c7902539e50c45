package sentiment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubAnalyzer struct {
	scores Scores
	err    error
	calls  int
}

func (s *stubAnalyzer) Polarity(text string) (Scores, error) {
	s.calls++
	if s.err != nil {
		return Scores{}, s.err
	}
	return s.scores, nil
}

func TestAdapterPassesThroughScores(t *testing.T) {
	stub := &stubAnalyzer{scores: Scores{Compound: -0.6, Negative: 0.4, Neutral: 0.6}}
	a := NewAdapter(stub)

	got := a.Score("critical breach reported")

	assert.Equal(t, stub.scores, got)
	assert.Equal(t, 1, stub.calls)
}

func TestAdapterEmptyInputSkipsAnalyzer(t *testing.T) {
	stub := &stubAnalyzer{scores: Scores{Compound: 0.9}}
	a := NewAdapter(stub)

	got := a.Score("")

	assert.Equal(t, Scores{}, got)
	assert.Zero(t, stub.calls, "empty input must not reach the analyzer")
}

func TestAdapterAbsorbsAnalyzerErrors(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("lexicon unavailable")}
	a := NewAdapter(stub)

	got := a.Score("some text")

	assert.Equal(t, Scores{}, got, "analyzer failure must degrade to neutral scores")
}

func TestVaderPolarityDirection(t *testing.T) {
	v := NewVader()

	negative, err := v.Polarity("catastrophic devastating horrible attack")
	assert.NoError(t, err)

	positive, err := v.Polarity("wonderful great excellent news")
	assert.NoError(t, err)

	assert.Less(t, negative.Compound, 0.0)
	assert.Greater(t, positive.Compound, 0.0)
	assert.Greater(t, positive.Compound, negative.Compound)
}
