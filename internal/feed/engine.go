package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyberpulse/backend/internal/aggregate"
	"github.com/cyberpulse/backend/internal/catalog"
	"github.com/cyberpulse/backend/internal/extract"
	"github.com/cyberpulse/backend/internal/metrics"
	"github.com/cyberpulse/backend/internal/score"
	"github.com/cyberpulse/backend/internal/search"
	"github.com/cyberpulse/backend/internal/storage/models"
	"github.com/cyberpulse/backend/pkg/logger"
	"github.com/cyberpulse/backend/pkg/utils"
)

// Cache stores finished feed responses keyed by query hash.
type Cache interface {
	GetFeed(ctx context.Context, queryHash string, response interface{}) (bool, error)
	SetFeed(ctx context.Context, queryHash string, response interface{}) error
}

// HistoryStore persists one record per pipeline invocation.
type HistoryStore interface {
	InsertFeedRecord(record *models.FeedRecord) error
	InsertTopicResult(result *models.TopicResult) error
	GetRecentFeeds(limit int) ([]*models.FeedRecord, error)
}

// BriefGenerator produces an optional narrative over the summary.
type BriefGenerator interface {
	GenerateBrief(ctx context.Context, query string, summary aggregate.Summary, alerts []string) (string, error)
}

// ProgressEvent reports per-topic pipeline progress to an observer,
// typically a websocket connection.
type ProgressEvent struct {
	TopicID      string `json:"topic_id"`
	Index        int    `json:"index"`
	Total        int    `json:"total"`
	Stage        string `json:"stage"`
	ArticleCount int    `json:"article_count"`
}

// FeedRequest carries one query through the pipeline. Zero-valued
// options fall back to configured defaults.
type FeedRequest struct {
	Query                 string
	ArticlesPerTopic      int
	SeverityFilter        int
	HighSeverityThreshold float64

	Progress func(ProgressEvent) `json:"-"`
}

// Stats is the explicit per-invocation accumulator. It travels with the
// response instead of living in ambient process state.
type Stats struct {
	APICalls         int `json:"api_calls"`
	ArticlesFetched  int `json:"articles_fetched"`
	ArticlesScored   int `json:"articles_scored"`
	ArticlesFiltered int `json:"articles_filtered"`
	FailedTopics     int `json:"failed_topics"`
}

// FeedResponse is the full pipeline output for one query.
type FeedResponse struct {
	ID                   string                            `json:"id"`
	Query                string                            `json:"query"`
	Topics               []string                          `json:"topics"`
	NoMatch              bool                              `json:"no_match"`
	Guidance             []string                          `json:"guidance,omitempty"`
	Buckets              []aggregate.Bucket                `json:"buckets"`
	Summary              aggregate.Summary                 `json:"summary"`
	SeverityDistribution []aggregate.RangeCount            `json:"severity_distribution"`
	Categories           []aggregate.LabelCount            `json:"categories"`
	TopSources           []aggregate.LabelCount            `json:"top_sources"`
	Timeline             []aggregate.TimelinePoint         `json:"timeline"`
	TopicMetrics         map[string]aggregate.TopicMetrics `json:"topic_metrics"`
	CriticalAlerts       []models.ScoredArticle            `json:"critical_alerts"`
	Brief                string                            `json:"brief,omitempty"`
	Stats                Stats                             `json:"stats"`
	Cached               bool                              `json:"cached"`
	LatencyMS            int                               `json:"latency_ms"`
}

// Suggested example queries returned when extraction finds nothing.
var noMatchGuidance = []string{
	"What ransomware attacks happened recently?",
	"Show me data breaches this week",
	"Any phishing campaigns targeting banks?",
	"Latest zero-day vulnerabilities",
}

// Options wires an Engine. Cache, History and Brief may be nil.
type Options struct {
	Catalog               *catalog.Catalog
	Extractor             *extract.Extractor
	Scorer                *score.Scorer
	Provider              search.Provider
	Cache                 Cache
	History               HistoryStore
	Brief                 BriefGenerator
	FetchDelay            time.Duration
	ArticlesPerTopic      int
	SeverityFilter        int
	HighSeverityThreshold float64
	Now                   func() time.Time
}

// Engine runs the extraction, fetch, scoring and aggregation pipeline.
// Invocations share no mutable state, so concurrent queries need no
// synchronization beyond the read-only catalog.
type Engine struct {
	opts Options
	now  func() time.Time
}

func NewEngine(opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{opts: opts, now: now}
}

// ProcessQuery runs the full pipeline for one free-text query.
func (e *Engine) ProcessQuery(ctx context.Context, req FeedRequest) (*FeedResponse, error) {
	start := e.now()
	feedID := uuid.New().String()
	e.applyDefaults(&req)

	logger.Info("Processing feed query",
		zap.String("feed_id", feedID),
		zap.String("query", req.Query),
	)

	cacheKey := utils.HashString(fmt.Sprintf("%s|%d|%d|%.2f",
		req.Query, req.ArticlesPerTopic, req.SeverityFilter, req.HighSeverityThreshold))

	if e.opts.Cache != nil {
		var cached FeedResponse
		hit, err := e.opts.Cache.GetFeed(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("Feed cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.Inc()
			cached.Cached = true
			return &cached, nil
		}
		metrics.CacheMisses.Inc()
	}

	topics := e.opts.Extractor.Extract(req.Query)
	metrics.TopicsExtracted.Observe(float64(len(topics)))

	if len(topics) == 0 {
		metrics.FeedTotal.WithLabelValues("no_match").Inc()
		logger.Info("No threat topics matched", zap.String("query", req.Query))
		resp := &FeedResponse{
			ID:        feedID,
			Query:     req.Query,
			Topics:    []string{},
			NoMatch:   true,
			Guidance:  noMatchGuidance,
			Summary:   aggregate.Summarize(nil, req.HighSeverityThreshold),
			LatencyMS: int(e.now().Sub(start).Milliseconds()),
		}
		// No-match invocations go to history too, with zero topics.
		e.record(resp)
		return resp, nil
	}

	now := e.now()
	var stats Stats
	buckets := make([]aggregate.Bucket, 0, len(topics))

	for i, topicID := range topics {
		// The provider expects a pause between successive fetches.
		if i > 0 && e.opts.FetchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.opts.FetchDelay):
			}
		}

		e.notify(req, ProgressEvent{TopicID: topicID, Index: i + 1, Total: len(topics), Stage: "fetching"})

		bucket := e.processTopic(ctx, topicID, req, now, &stats)
		buckets = append(buckets, bucket)

		e.notify(req, ProgressEvent{
			TopicID:      topicID,
			Index:        i + 1,
			Total:        len(topics),
			Stage:        "done",
			ArticleCount: bucket.ArticleCount,
		})
	}

	summary := aggregate.Summarize(buckets, req.HighSeverityThreshold)
	alerts := aggregate.CriticalAlerts(buckets, 5)

	topicMetrics := make(map[string]aggregate.TopicMetrics, len(buckets))
	for _, b := range buckets {
		topicMetrics[b.TopicID] = aggregate.MetricsFor(b, now)
	}

	resp := &FeedResponse{
		ID:                   feedID,
		Query:                req.Query,
		Topics:               topics,
		Buckets:              buckets,
		Summary:              summary,
		SeverityDistribution: aggregate.SeverityDistribution(buckets),
		Categories:           aggregate.CategoryDistribution(buckets),
		TopSources:           aggregate.TopSources(buckets, 10),
		Timeline:             aggregate.TimelinePoints(buckets),
		TopicMetrics:         topicMetrics,
		CriticalAlerts:       alerts,
		Stats:                stats,
	}

	if e.opts.Brief != nil {
		titles := make([]string, 0, len(alerts))
		for _, a := range alerts {
			titles = append(titles, a.Title)
		}
		brief, err := e.opts.Brief.GenerateBrief(ctx, req.Query, summary, titles)
		if err != nil {
			logger.Warn("Brief generation failed", zap.Error(err))
		} else {
			resp.Brief = brief
		}
	}

	resp.LatencyMS = int(e.now().Sub(start).Milliseconds())

	e.record(resp)
	if e.opts.Cache != nil {
		if err := e.opts.Cache.SetFeed(ctx, cacheKey, resp); err != nil {
			logger.Warn("Feed cache store failed", zap.Error(err))
		}
	}

	metrics.FeedTotal.WithLabelValues("ok").Inc()
	metrics.FeedDuration.WithLabelValues("ok").Observe(float64(resp.LatencyMS) / 1000)

	logger.Info("Feed query processed",
		zap.String("feed_id", feedID),
		zap.Int("topics", len(topics)),
		zap.Int("total_articles", summary.TotalArticles),
		zap.Int("latency_ms", resp.LatencyMS),
	)

	return resp, nil
}

// processTopic fetches and scores one topic. Fetch failure degrades to
// an empty bucket; it never aborts the batch.
func (e *Engine) processTopic(ctx context.Context, topicID string, req FeedRequest, now time.Time, stats *Stats) aggregate.Bucket {
	bucket := aggregate.Bucket{TopicID: topicID, Articles: []models.ScoredArticle{}}

	topic, ok := e.opts.Catalog.Get(topicID)
	if !ok {
		logger.Warn("Extracted topic missing from catalog", zap.String("topic_id", topicID))
		return bucket
	}

	fetchStart := time.Now()
	stats.APICalls++
	articles, err := e.opts.Provider.Fetch(ctx, topicID, req.ArticlesPerTopic)
	metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		metrics.FetchFailures.Inc()
		stats.FailedTopics++
		logger.Warn("Provider fetch failed, continuing with empty bucket",
			zap.String("topic_id", topicID),
			zap.Error(err),
		)
		return bucket
	}

	stats.ArticlesFetched += len(articles)

	scored := e.opts.Scorer.ScoreBatch(articles, topic, now)
	stats.ArticlesScored += len(scored)
	metrics.ArticlesScored.Add(float64(len(scored)))

	for _, a := range scored {
		metrics.ThreatScores.Observe(a.ThreatScore)
		if a.ThreatScore >= float64(req.SeverityFilter) {
			bucket.Articles = append(bucket.Articles, a)
		} else {
			stats.ArticlesFiltered++
			metrics.ArticlesFiltered.Inc()
		}
	}
	bucket.ArticleCount = len(bucket.Articles)

	return bucket
}

// History returns recent feed invocations, newest first.
func (e *Engine) History(limit int) ([]*models.FeedRecord, error) {
	if e.opts.History == nil {
		return nil, nil
	}
	return e.opts.History.GetRecentFeeds(limit)
}

func (e *Engine) record(resp *FeedResponse) {
	if e.opts.History == nil {
		return
	}

	record := &models.FeedRecord{
		ID:                resp.ID,
		QueryText:         resp.Query,
		TopicCount:        len(resp.Topics),
		TotalArticles:     resp.Summary.TotalArticles,
		HighSeverityCount: resp.Summary.HighSeverityCount,
		TopTopicID:        resp.Summary.TopTopicID,
		MeanSentiment:     resp.Summary.MeanSentiment,
		APICalls:          resp.Stats.APICalls,
		LatencyMS:         resp.LatencyMS,
		CreatedAt:         e.now(),
	}

	if err := e.opts.History.InsertFeedRecord(record); err != nil {
		logger.Warn("Failed to record feed history", zap.Error(err))
		return
	}

	for _, b := range resp.Buckets {
		err := e.opts.History.InsertTopicResult(&models.TopicResult{
			FeedID:       resp.ID,
			TopicID:      b.TopicID,
			ArticleCount: b.ArticleCount,
		})
		if err != nil {
			logger.Warn("Failed to record topic result", zap.Error(err))
		}
	}
}

func (e *Engine) notify(req FeedRequest, event ProgressEvent) {
	if req.Progress != nil {
		req.Progress(event)
	}
}

func (e *Engine) applyDefaults(req *FeedRequest) {
	if req.ArticlesPerTopic == 0 {
		req.ArticlesPerTopic = e.opts.ArticlesPerTopic
	}
	if req.SeverityFilter == 0 {
		req.SeverityFilter = e.opts.SeverityFilter
	}
	if req.HighSeverityThreshold == 0 {
		req.HighSeverityThreshold = e.opts.HighSeverityThreshold
	}
}
