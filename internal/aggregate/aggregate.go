package aggregate

import (
	"time"

	"github.com/cyberpulse/backend/internal/score"
	"github.com/cyberpulse/backend/internal/storage/models"
)

// Threat level labels derived from the high-severity count.
const (
	LevelNormal   = "normal"
	LevelElevated = "elevated"
	LevelCritical = "critical"
)

// Bucket holds the scored articles for one topic, ordered by descending
// threat score. Bucket order across a feed follows topic selection
// order and is relied on for tie-breaking.
type Bucket struct {
	TopicID      string                 `json:"topic_id"`
	Articles     []models.ScoredArticle `json:"articles"`
	ArticleCount int                    `json:"article_count"`
}

// Summary is the executive-level view over all buckets.
type Summary struct {
	TotalArticles     int     `json:"total_articles"`
	HighSeverityCount int     `json:"high_severity_count"`
	TopTopicID        string  `json:"top_topic_id"`
	MeanSentiment     float64 `json:"mean_sentiment"`
	ThreatLevel       string  `json:"threat_level"`
}

// Summarize derives the executive summary. Pure read over the buckets;
// ties for the top topic go to the first-encountered bucket.
func Summarize(buckets []Bucket, highSeverityThreshold float64) Summary {
	s := Summary{TopTopicID: "None"}

	var sentimentSum float64
	topCount := -1
	for _, b := range buckets {
		s.TotalArticles += len(b.Articles)
		if len(b.Articles) > topCount {
			topCount = len(b.Articles)
			s.TopTopicID = b.TopicID
		}
		for _, a := range b.Articles {
			if a.ThreatScore >= highSeverityThreshold {
				s.HighSeverityCount++
			}
			sentimentSum += a.SentimentCompound
		}
	}

	if s.TotalArticles > 0 {
		s.MeanSentiment = sentimentSum / float64(s.TotalArticles)
	}

	switch {
	case s.HighSeverityCount > 5:
		s.ThreatLevel = LevelCritical
	case s.HighSeverityCount > 0:
		s.ThreatLevel = LevelElevated
	default:
		s.ThreatLevel = LevelNormal
	}

	return s
}

// RangeCount is one band of the severity distribution.
type RangeCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SeverityDistribution buckets articles into the four display bands.
func SeverityDistribution(buckets []Bucket) []RangeCount {
	dist := []RangeCount{
		{Label: "Low (1-3)"},
		{Label: "Medium (4-6)"},
		{Label: "High (7-8)"},
		{Label: "Critical (9-10)"},
	}

	for _, b := range buckets {
		for _, a := range b.Articles {
			switch s := a.ThreatScore; {
			case s >= 1 && s <= 3:
				dist[0].Count++
			case s >= 4 && s <= 6:
				dist[1].Count++
			case s >= 7 && s <= 8:
				dist[2].Count++
			case s >= 9 && s <= 10:
				dist[3].Count++
			}
		}
	}

	return dist
}

// LabelCount is a generic label/count pair, ordered by first encounter
// or by count depending on the producer.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryDistribution counts articles per threat category, ordered by
// first encounter.
func CategoryDistribution(buckets []Bucket) []LabelCount {
	return countBy(buckets, func(a models.ScoredArticle) string { return a.Category })
}

// TopSources returns the most frequent article sources, largest first,
// capped at n. Equal counts keep first-encounter order.
func TopSources(buckets []Bucket, n int) []LabelCount {
	counts := countBy(buckets, func(a models.ScoredArticle) string { return a.Source })

	for i := 1; i < len(counts); i++ {
		for j := i; j > 0 && counts[j].Count > counts[j-1].Count; j-- {
			counts[j], counts[j-1] = counts[j-1], counts[j]
		}
	}

	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// countBy counts articles grouped by an arbitrary key, ordered by
// first encounter.
func countBy(buckets []Bucket, key func(models.ScoredArticle) string) []LabelCount {
	index := make(map[string]int)
	var out []LabelCount

	for _, b := range buckets {
		for _, a := range b.Articles {
			k := key(a)
			i, seen := index[k]
			if !seen {
				index[k] = len(out)
				out = append(out, LabelCount{Label: k})
				i = len(out) - 1
			}
			out[i].Count++
		}
	}

	return out
}

// CriticalAlerts returns up to limit articles scoring at least 7, in
// bucket order.
func CriticalAlerts(buckets []Bucket, limit int) []models.ScoredArticle {
	var alerts []models.ScoredArticle
	for _, b := range buckets {
		for _, a := range b.Articles {
			if a.ThreatScore >= 7 {
				alerts = append(alerts, a)
				if len(alerts) == limit {
					return alerts
				}
			}
		}
	}
	return alerts
}

// TimelinePoint is one dated article for timeline views. Articles whose
// date cannot be parsed are omitted.
type TimelinePoint struct {
	Date     time.Time `json:"date"`
	Score    float64   `json:"score"`
	Category string    `json:"category"`
	Title    string    `json:"title"`
}

func TimelinePoints(buckets []Bucket) []TimelinePoint {
	var points []TimelinePoint
	for _, b := range buckets {
		for _, a := range b.Articles {
			t, ok := score.ParsePublished(a.PublishedDate)
			if !ok {
				continue
			}
			points = append(points, TimelinePoint{
				Date:     t,
				Score:    a.ThreatScore,
				Category: a.Category,
				Title:    a.Title,
			})
		}
	}
	return points
}

// TopicMetrics are the per-topic figures shown alongside each bucket.
type TopicMetrics struct {
	AvgSentiment float64 `json:"avg_sentiment"`
	AvgScore     float64 `json:"avg_score"`
	RecentCount  int     `json:"recent_count"`
}

// MetricsFor computes per-topic averages and the count of articles
// published within the last seven days of now.
func MetricsFor(b Bucket, now time.Time) TopicMetrics {
	var m TopicMetrics
	if len(b.Articles) == 0 {
		return m
	}

	var sentimentSum, scoreSum float64
	for _, a := range b.Articles {
		sentimentSum += a.SentimentCompound
		scoreSum += a.ThreatScore
		if t, ok := score.ParsePublished(a.PublishedDate); ok {
			if now.Sub(t).Hours() <= 7*24 {
				m.RecentCount++
			}
		}
	}

	m.AvgSentiment = sentimentSum / float64(len(b.Articles))
	m.AvgScore = scoreSum / float64(len(b.Articles))
	return m
}
