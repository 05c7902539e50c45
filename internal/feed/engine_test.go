package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberpulse/backend/internal/catalog"
	"github.com/cyberpulse/backend/internal/extract"
	"github.com/cyberpulse/backend/internal/score"
	"github.com/cyberpulse/backend/internal/sentiment"
	"github.com/cyberpulse/backend/internal/storage/models"
)

var engineNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type mockProvider struct {
	results map[string][]models.RawArticle
	errs    map[string]error
	calls   []string
}

func (m *mockProvider) Fetch(ctx context.Context, queryText string, resultSize int) ([]models.RawArticle, error) {
	m.calls = append(m.calls, queryText)
	if err := m.errs[queryText]; err != nil {
		return nil, err
	}
	return m.results[queryText], nil
}

type mockHistory struct {
	records []*models.FeedRecord
	topics  []*models.TopicResult
}

func (m *mockHistory) InsertFeedRecord(record *models.FeedRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *mockHistory) InsertTopicResult(result *models.TopicResult) error {
	m.topics = append(m.topics, result)
	return nil
}

func (m *mockHistory) GetRecentFeeds(limit int) ([]*models.FeedRecord, error) {
	if len(m.records) > limit {
		return m.records[:limit], nil
	}
	return m.records, nil
}

type mockCache struct {
	entries map[string][]byte
	sets    int
	gets    int
}

func (m *mockCache) GetFeed(ctx context.Context, queryHash string, response interface{}) (bool, error) {
	m.gets++
	data, ok := m.entries[queryHash]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, response)
}

func (m *mockCache) SetFeed(ctx context.Context, queryHash string, response interface{}) error {
	m.sets++
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	m.entries[queryHash] = data
	return nil
}

type neutralAnalyzer struct{}

func (neutralAnalyzer) Polarity(text string) (sentiment.Scores, error) {
	return sentiment.Scores{}, nil
}

func newTestEngine(t *testing.T, provider *mockProvider, history *mockHistory, cache Cache) *Engine {
	t.Helper()

	c, err := catalog.Default()
	require.NoError(t, err)

	return NewEngine(Options{
		Catalog:               c,
		Extractor:             extract.New(c),
		Scorer:                score.New(c, sentiment.NewAdapter(neutralAnalyzer{})),
		Provider:              provider,
		Cache:                 cache,
		History:               history,
		ArticlesPerTopic:      15,
		SeverityFilter:        3,
		HighSeverityThreshold: 7,
		Now:                   func() time.Time { return engineNow },
	})
}

func phishingArticles() []models.RawArticle {
	return []models.RawArticle{
		{
			Title:     "Fresh critical breach via phishing",
			Summary:   "Critical breach reported after targeted phishing.",
			URL:       "https://krebsonsecurity.com/2024/06/phish",
			Timestamp: engineNow.Add(-48 * time.Hour).Format(time.RFC3339),
		},
		{
			Title:     "Last year's advisory",
			Summary:   "An advisory from long ago.",
			Timestamp: engineNow.Add(-400 * 24 * time.Hour).Format(time.RFC3339),
		},
		{
			// Malformed: no title, must be skipped by scoring.
			Summary: "orphaned summary",
		},
	}
}

func TestProcessQueryFetchFailureYieldsEmptyBucket(t *testing.T) {
	provider := &mockProvider{
		results: map[string][]models.RawArticle{
			"phishing campaign": phishingArticles(),
		},
		errs: map[string]error{
			"ransomware attack": errors.New("provider unavailable"),
		},
	}
	history := &mockHistory{}
	engine := newTestEngine(t, provider, history, nil)

	resp, err := engine.ProcessQuery(context.Background(), FeedRequest{
		Query:          "ransomware and phishing",
		SeverityFilter: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"phishing campaign", "ransomware attack"}, resp.Topics)
	require.Len(t, resp.Buckets, 2)

	assert.Equal(t, "phishing campaign", resp.Buckets[0].TopicID)
	assert.Equal(t, 1, resp.Buckets[0].ArticleCount)
	assert.Equal(t, "Fresh critical breach via phishing", resp.Buckets[0].Articles[0].Title)

	assert.Equal(t, "ransomware attack", resp.Buckets[1].TopicID)
	assert.Empty(t, resp.Buckets[1].Articles)

	assert.Equal(t, Stats{
		APICalls:         2,
		ArticlesFetched:  3,
		ArticlesScored:   2,
		ArticlesFiltered: 1,
		FailedTopics:     1,
	}, resp.Stats)

	assert.Equal(t, 1, resp.Summary.TotalArticles)
	assert.Equal(t, "phishing campaign", resp.Summary.TopTopicID)
	assert.False(t, resp.NoMatch)
	assert.NotEmpty(t, resp.ID)

	require.Len(t, resp.Timeline, 1)
	assert.Equal(t, "Fresh critical breach via phishing", resp.Timeline[0].Title)
	assert.Equal(t, 1, resp.TopicMetrics["phishing campaign"].RecentCount)
	assert.Equal(t, 0, resp.TopicMetrics["ransomware attack"].RecentCount)
}

func TestProcessQueryNoMatch(t *testing.T) {
	provider := &mockProvider{}
	history := &mockHistory{}
	engine := newTestEngine(t, provider, history, nil)

	resp, err := engine.ProcessQuery(context.Background(), FeedRequest{
		Query: "what's the weather today",
	})
	require.NoError(t, err)

	assert.True(t, resp.NoMatch)
	assert.Empty(t, resp.Topics)
	assert.NotEmpty(t, resp.Guidance)
	assert.Empty(t, provider.calls, "no topics means no provider fetches")
	assert.Equal(t, "None", resp.Summary.TopTopicID)

	// A no-match invocation still shows up in feed history.
	require.Len(t, history.records, 1)
	assert.Equal(t, resp.ID, history.records[0].ID)
	assert.Equal(t, 0, history.records[0].TopicCount)
	assert.Equal(t, 0, history.records[0].APICalls)
	assert.Empty(t, history.topics)
}

func TestProcessQueryRecordsHistory(t *testing.T) {
	provider := &mockProvider{
		results: map[string][]models.RawArticle{
			"phishing campaign": phishingArticles(),
			"ransomware attack": nil,
		},
	}
	history := &mockHistory{}
	engine := newTestEngine(t, provider, history, nil)

	resp, err := engine.ProcessQuery(context.Background(), FeedRequest{Query: "ransomware and phishing"})
	require.NoError(t, err)

	require.Len(t, history.records, 1)
	record := history.records[0]
	assert.Equal(t, resp.ID, record.ID)
	assert.Equal(t, "ransomware and phishing", record.QueryText)
	assert.Equal(t, 2, record.TopicCount)
	assert.Equal(t, resp.Summary.TotalArticles, record.TotalArticles)
	assert.Equal(t, 2, record.APICalls)
	assert.Equal(t, engineNow, record.CreatedAt)

	require.Len(t, history.topics, 2)
	assert.Equal(t, "phishing campaign", history.topics[0].TopicID)
	assert.Equal(t, resp.ID, history.topics[0].FeedID)
}

func TestProcessQueryUsesCache(t *testing.T) {
	provider := &mockProvider{
		results: map[string][]models.RawArticle{
			"phishing campaign": phishingArticles(),
			"ransomware attack": nil,
		},
	}
	cache := &mockCache{entries: make(map[string][]byte)}
	engine := newTestEngine(t, provider, &mockHistory{}, cache)

	req := FeedRequest{Query: "ransomware and phishing"}

	first, err := engine.ProcessQuery(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.sets)
	firstCalls := len(provider.calls)

	second, err := engine.ProcessQuery(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, firstCalls, len(provider.calls), "cache hit must not fetch")
	assert.Equal(t, first.Topics, second.Topics)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestProcessQueryProgressEvents(t *testing.T) {
	provider := &mockProvider{
		results: map[string][]models.RawArticle{
			"phishing campaign": phishingArticles(),
			"ransomware attack": nil,
		},
	}
	engine := newTestEngine(t, provider, &mockHistory{}, nil)

	var events []ProgressEvent
	_, err := engine.ProcessQuery(context.Background(), FeedRequest{
		Query:    "ransomware and phishing",
		Progress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.Equal(t, "fetching", events[0].Stage)
	assert.Equal(t, "phishing campaign", events[0].TopicID)
	assert.Equal(t, 1, events[0].Index)
	assert.Equal(t, 2, events[0].Total)
	assert.Equal(t, "done", events[1].Stage)
	assert.Equal(t, "ransomware attack", events[2].TopicID)
	assert.Equal(t, "done", events[3].Stage)
}

func TestProcessQueryHonorsCancelledContext(t *testing.T) {
	provider := &mockProvider{
		results: map[string][]models.RawArticle{
			"phishing campaign": phishingArticles(),
			"ransomware attack": nil,
		},
	}

	c, err := catalog.Default()
	require.NoError(t, err)

	engine := NewEngine(Options{
		Catalog:               c,
		Extractor:             extract.New(c),
		Scorer:                score.New(c, sentiment.NewAdapter(neutralAnalyzer{})),
		Provider:              provider,
		FetchDelay:            time.Minute,
		ArticlesPerTopic:      15,
		SeverityFilter:        3,
		HighSeverityThreshold: 7,
		Now:                   func() time.Time { return engineNow },
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.ProcessQuery(ctx, FeedRequest{Query: "ransomware and phishing"})
	assert.ErrorIs(t, err, context.Canceled)
}

// A progress consumer that goes away mid-run cancels the context, as the
// websocket handler does when a frame write fails. The engine must stop
// before fetching the remaining topics.
func TestProcessQueryCancelledFromProgressCallback(t *testing.T) {
	provider := &mockProvider{
		results: map[string][]models.RawArticle{
			"phishing campaign": phishingArticles(),
			"ransomware attack": nil,
		},
	}

	c, err := catalog.Default()
	require.NoError(t, err)

	engine := NewEngine(Options{
		Catalog:               c,
		Extractor:             extract.New(c),
		Scorer:                score.New(c, sentiment.NewAdapter(neutralAnalyzer{})),
		Provider:              provider,
		FetchDelay:            time.Minute,
		ArticlesPerTopic:      15,
		SeverityFilter:        3,
		HighSeverityThreshold: 7,
		Now:                   func() time.Time { return engineNow },
	})

	ctx, cancel := context.WithCancel(context.Background())

	_, err = engine.ProcessQuery(ctx, FeedRequest{
		Query:    "ransomware and phishing",
		Progress: func(ProgressEvent) { cancel() },
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, provider.calls, 1, "cancellation during the first topic must skip the rest")
}
