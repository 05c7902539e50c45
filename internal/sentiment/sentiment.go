package sentiment

import (
	"go.uber.org/zap"

	"github.com/cyberpulse/backend/pkg/logger"
)

// Scores is the polarity breakdown for one piece of text. Compound is
// in [-1,1]; the remaining fields are in [0,1].
type Scores struct {
	Compound float64
	Negative float64
	Positive float64
	Neutral  float64
}

// Analyzer is the external polarity-scoring capability. Implementations
// receive already-normalized text.
type Analyzer interface {
	Polarity(text string) (Scores, error)
}

// Adapter wraps an Analyzer so that failures never reach the scoring
// path: an error or empty input degrades to zero scores.
type Adapter struct {
	analyzer Analyzer
}

func NewAdapter(a Analyzer) *Adapter {
	return &Adapter{analyzer: a}
}

func (a *Adapter) Score(text string) Scores {
	if text == "" {
		return Scores{}
	}

	scores, err := a.analyzer.Polarity(text)
	if err != nil {
		logger.Debug("Sentiment analyzer failed, using neutral scores", zap.Error(err))
		return Scores{}
	}
	return scores
}
