package models

import "time"

// Sentinels used when an article carries no usable date or URL.
const (
	DateUnavailable   = "Date not available"
	SourceUnavailable = "Source not available"
)

// RawArticle is one item as returned by the search provider. The core
// never mutates it.
type RawArticle struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	URL        string   `json:"url"`
	Timestamp  string   `json:"timestamp"`
	Highlights []string `json:"highlights"`
	SmartTags  []string `json:"smart_tags"`
}

// ScoredArticle is the scored form of a RawArticle for one topic. It is
// immutable once built; ThreatScore is always within [1,10] and is a
// pure function of the article, the topic and the evaluation time.
type ScoredArticle struct {
	Title             string   `json:"title"`
	Summary           string   `json:"summary"`
	CleanSummary      string   `json:"clean_summary"`
	SentimentCompound float64  `json:"sentiment_compound"`
	SentimentNegative float64  `json:"sentiment_neg"`
	PublishedDate     string   `json:"published_date"`
	Source            string   `json:"source"`
	TopicID           string   `json:"topic_id"`
	Category          string   `json:"category"`
	ThreatScore       float64  `json:"threat_score"`
	Highlights        []string `json:"highlights"`
}

// FeedRecord is one pipeline invocation as persisted to history.
type FeedRecord struct {
	ID                string
	QueryText         string
	TopicCount        int
	TotalArticles     int
	HighSeverityCount int
	TopTopicID        string
	MeanSentiment     float64
	APICalls          int
	LatencyMS         int
	CreatedAt         time.Time
}

// TopicResult is the per-topic article count for one feed invocation.
type TopicResult struct {
	ID           int
	FeedID       string
	TopicID      string
	ArticleCount int
}
