package score

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cyberpulse/backend/internal/catalog"
	"github.com/cyberpulse/backend/internal/sentiment"
	"github.com/cyberpulse/backend/internal/storage/models"
	"github.com/cyberpulse/backend/internal/textutil"
)

const (
	minScore = 1.0
	maxScore = 10.0
)

// Scorer computes the 1-10 severity of an article for a topic. The
// formula is additive on purpose: base severity plus bounded sentiment,
// recency, keyword-density and source-credibility components, clamped.
type Scorer struct {
	catalog   *catalog.Catalog
	sentiment *sentiment.Adapter
}

func New(c *catalog.Catalog, s *sentiment.Adapter) *Scorer {
	return &Scorer{catalog: c, sentiment: s}
}

// Score builds the ScoredArticle for one raw article. Deterministic for
// a fixed now.
func (s *Scorer) Score(article models.RawArticle, topic catalog.Topic, now time.Time) models.ScoredArticle {
	clean := textutil.Normalize(article.Summary)
	polarity := s.sentiment.Score(clean)

	published := article.Timestamp
	if published == "" {
		published = models.DateUnavailable
	}

	scored := models.ScoredArticle{
		Title:             article.Title,
		Summary:           article.Summary,
		CleanSummary:      clean,
		SentimentCompound: polarity.Compound,
		SentimentNegative: polarity.Negative,
		PublishedDate:     published,
		Source:            ExtractSource(article.URL),
		TopicID:           topic.ID,
		Category:          topic.Category,
		Highlights:        article.Highlights,
	}
	scored.ThreatScore = s.threatScore(scored, topic, now)

	return scored
}

// ScoreBatch scores every well-formed article and returns them ordered
// by descending threat score. Articles missing a title or summary are
// skipped. The sort is stable, so equal scores keep input order.
func (s *Scorer) ScoreBatch(articles []models.RawArticle, topic catalog.Topic, now time.Time) []models.ScoredArticle {
	scored := make([]models.ScoredArticle, 0, len(articles))
	for _, raw := range articles {
		if raw.Title == "" || raw.Summary == "" {
			continue
		}
		scored = append(scored, s.Score(raw, topic, now))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ThreatScore > scored[j].ThreatScore
	})

	return scored
}

func (s *Scorer) threatScore(a models.ScoredArticle, topic catalog.Topic, now time.Time) float64 {
	base := float64(topic.Severity)

	// Alarming language reads as negative sentiment, so more negative
	// raises severity.
	var sentimentComponent float64
	switch {
	case a.SentimentCompound < -0.5:
		sentimentComponent = 3
	case a.SentimentCompound < -0.1:
		sentimentComponent = 2
	case a.SentimentCompound < 0.1:
		sentimentComponent = 1
	default:
		sentimentComponent = 0
	}

	recencyComponent := recencyScore(a.PublishedDate, now)

	var keywordComponent float64
	for _, kw := range s.catalog.HighImpactKeywords() {
		if strings.Contains(a.CleanSummary, kw) {
			keywordComponent += 0.5
		}
	}
	if keywordComponent > 3 {
		keywordComponent = 3
	}

	var sourceComponent float64
	sourceLower := strings.ToLower(a.Source)
	for _, major := range s.catalog.MajorSources() {
		if strings.Contains(sourceLower, major) {
			sourceComponent = 1
			break
		}
	}

	final := base + sentimentComponent + recencyComponent + keywordComponent + sourceComponent

	if final > maxScore {
		final = maxScore
	}
	if final < minScore {
		final = minScore
	}
	return final
}

// ParsePublished parses an article timestamp, reporting success
// explicitly instead of hiding parse failures.
func ParsePublished(value string) (time.Time, bool) {
	if value == "" || value == models.DateUnavailable {
		return time.Time{}, false
	}

	if strings.Contains(value, "T") {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	if len(value) >= 10 {
		if t, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func recencyScore(published string, now time.Time) float64 {
	t, ok := ParsePublished(published)
	if !ok {
		return 0.5
	}

	daysOld := int(now.Sub(t).Hours() / 24)
	switch {
	case daysOld <= 7:
		return 2
	case daysOld <= 30:
		return 1
	case daysOld <= 90:
		return 0.5
	default:
		return 0
	}
}

// ExtractSource returns the host of the article URL without a leading
// "www." prefix, or the sentinel when there is no usable URL.
func ExtractSource(rawURL string) string {
	if rawURL == "" {
		return models.SourceUnavailable
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return models.SourceUnavailable
	}

	return strings.TrimPrefix(parsed.Host, "www.")
}
