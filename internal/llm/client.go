package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cyberpulse/backend/internal/aggregate"
	"github.com/cyberpulse/backend/pkg/circuitbreaker"
	"github.com/cyberpulse/backend/pkg/logger"
	"github.com/cyberpulse/backend/pkg/retry"
)

// Client generates a short executive-brief narrative over a computed
// feed summary. Entirely optional: the pipeline never depends on it.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(apiKey, model string, temperature float32, maxTokens int) *Client {
	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized", zap.String("model", model))

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

// GenerateBrief turns the executive summary and top alerts into a short
// situation report.
func (c *Client) GenerateBrief(ctx context.Context, query string, summary aggregate.Summary, alerts []string) (string, error) {
	systemPrompt := `You are a threat intelligence analyst writing a short executive brief.
Summarize the current threat landscape in at most four sentences.
Be factual, reference the numbers you are given, and avoid speculation.`

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n", query)
	fmt.Fprintf(&sb, "Total articles: %d\n", summary.TotalArticles)
	fmt.Fprintf(&sb, "High severity articles: %d\n", summary.HighSeverityCount)
	fmt.Fprintf(&sb, "Top topic: %s\n", summary.TopTopicID)
	fmt.Fprintf(&sb, "Mean sentiment: %.3f\n", summary.MeanSentiment)
	fmt.Fprintf(&sb, "Threat level: %s\n", summary.ThreatLevel)
	if len(alerts) > 0 {
		sb.WriteString("Top alerts:\n")
		for _, a := range alerts {
			fmt.Fprintf(&sb, "- %s\n", a)
		}
	}

	return c.complete(ctx, systemPrompt, sb.String())
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt},
	}

	var content string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model:       c.model,
				Messages:    messages,
				Temperature: c.temperature,
				MaxTokens:   c.maxTokens,
			})
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			logger.Debug("Brief generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			content = strings.TrimSpace(resp.Choices[0].Message.Content)
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	return content, nil
}
