package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/cyberpulse/backend/internal/storage/models"
	"github.com/cyberpulse/backend/pkg/circuitbreaker"
	"github.com/cyberpulse/backend/pkg/logger"
	"github.com/cyberpulse/backend/pkg/retry"
)

// Provider fetches raw articles for one query term. The feed engine
// treats any failure as an empty bucket for that topic and moves on.
type Provider interface {
	Fetch(ctx context.Context, queryText string, resultSize int) ([]models.RawArticle, error)
}

// Client talks to the threat-news search API. Retries with backoff and
// a circuit breaker live here, at the boundary, so the core pipeline
// stays synchronous and failure-free.
type Client struct {
	apiURL     string
	apiKey     string
	maxResults int
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
}

func NewClient(apiURL, apiKey string, timeoutSec, maxResults int) *Client {
	cb := circuitbreaker.NewCircuitBreaker("search-provider", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryCfg := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		cb:       cb,
		retryCfg: retryCfg,
	}
}

// Fetch retrieves up to resultSize articles for the query term.
func (c *Client) Fetch(ctx context.Context, queryText string, resultSize int) ([]models.RawArticle, error) {
	if resultSize > c.maxResults {
		resultSize = c.maxResults
	}

	logger.Info("Fetching threat articles",
		zap.String("query", queryText),
		zap.Int("result_size", resultSize),
	)

	payload := map[string]interface{}{
		"query_text":         queryText,
		"result_size":        resultSize,
		"include_highlights": true,
		"include_smart_tags": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search payload: %w", err)
	}

	var articles []models.RawArticle

	err = c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryCfg, func() error {
			result, err := c.doRequest(ctx, body)
			if err != nil {
				return err
			}
			articles = result
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Search completed",
		zap.String("query", queryText),
		zap.Int("results", len(articles)),
	)

	return articles, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) ([]models.RawArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call search provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search provider returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var searchResp struct {
		Results []models.RawArticle `json:"results"`
	}
	if err := json.Unmarshal(data, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	for i := range searchResp.Results {
		searchResp.Results[i].Title = stripMarkup(searchResp.Results[i].Title)
		searchResp.Results[i].Summary = stripMarkup(searchResp.Results[i].Summary)
		for j, h := range searchResp.Results[i].Highlights {
			searchResp.Results[i].Highlights[j] = stripMarkup(h)
		}
	}

	return searchResp.Results, nil
}

// TestConnection performs a small probe fetch and reports how many
// results came back.
func (c *Client) TestConnection(ctx context.Context) (int, error) {
	articles, err := c.Fetch(ctx, "cyber attack", 5)
	if err != nil {
		return 0, err
	}
	return len(articles), nil
}

// stripMarkup drops embedded HTML the provider uses for highlight
// emphasis, keeping plain text.
func stripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
