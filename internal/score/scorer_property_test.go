package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cyberpulse/backend/internal/catalog"
	"github.com/cyberpulse/backend/internal/sentiment"
	"github.com/cyberpulse/backend/internal/storage/models"
)

// Whatever the inputs, a scored article must land in [1, 10].
func TestScoreStaysInBounds(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	topics := c.Topics()
	require.NotEmpty(t, topics)

	rapid.Check(t, func(rt *rapid.T) {
		compound := rapid.Float64Range(-1, 1).Draw(rt, "compound")
		summary := rapid.String().Draw(rt, "summary")
		timestamp := rapid.String().Draw(rt, "timestamp")
		ageHours := rapid.IntRange(0, 24*1000).Draw(rt, "ageHours")
		useRealDate := rapid.Bool().Draw(rt, "useRealDate")
		topic := topics[rapid.IntRange(0, len(topics)-1).Draw(rt, "topicIdx")]

		now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
		if useRealDate {
			timestamp = now.Add(-time.Duration(ageHours) * time.Hour).Format(time.RFC3339)
		}

		adapter := sentiment.NewAdapter(&fixedAnalyzer{scores: sentiment.Scores{Compound: compound}})
		s := New(c, adapter)

		scored := s.Score(models.RawArticle{
			Title:     "t",
			Summary:   summary,
			URL:       "https://example.com/a",
			Timestamp: timestamp,
		}, topic, now)

		if scored.ThreatScore < 1 || scored.ThreatScore > 10 {
			rt.Errorf("score %v out of [1,10] for topic %q", scored.ThreatScore, topic.ID)
		}
	})
}
