package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cyberpulse/backend/internal/feed"
	"github.com/cyberpulse/backend/pkg/logger"
)

// ConnectionTester is implemented by providers that support a cheap
// credential check.
type ConnectionTester interface {
	TestConnection(ctx context.Context) (int, error)
}

type FeedHandler struct {
	engine *feed.Engine
	tester ConnectionTester
}

func NewFeedHandler(engine *feed.Engine, tester ConnectionTester) *FeedHandler {
	return &FeedHandler{
		engine: engine,
		tester: tester,
	}
}

func (h *FeedHandler) HandleFeed(c *fiber.Ctx) error {
	var req struct {
		Query                 string  `json:"query"`
		ArticlesPerTopic      int     `json:"articles_per_topic"`
		SeverityFilter        int     `json:"severity_filter"`
		HighSeverityThreshold float64 `json:"high_severity_threshold"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	response, err := h.engine.ProcessQuery(c.Context(), feed.FeedRequest{
		Query:                 req.Query,
		ArticlesPerTopic:      req.ArticlesPerTopic,
		SeverityFilter:        req.SeverityFilter,
		HighSeverityThreshold: req.HighSeverityThreshold,
	})
	if err != nil {
		logger.Error("Failed to process feed query", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process feed query",
		})
	}

	return c.JSON(response)
}

func (h *FeedHandler) GetFeedHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}

	records, err := h.engine.History(limit)
	if err != nil {
		logger.Error("Failed to load feed history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load feed history",
		})
	}

	return c.JSON(fiber.Map{
		"history": records,
		"count":   len(records),
	})
}

// TestConnection exercises the search provider with a minimal request so
// operators can verify credentials without running a full feed.
func (h *FeedHandler) TestConnection(c *fiber.Ctx) error {
	count, err := h.tester.TestConnection(c.Context())
	if err != nil {
		logger.Error("Provider connection test failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":       "ok",
		"result_count": count,
	})
}
