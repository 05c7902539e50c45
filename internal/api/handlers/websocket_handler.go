package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/cyberpulse/backend/internal/feed"
	"github.com/cyberpulse/backend/pkg/logger"
)

type WebSocketHandler struct {
	engine *feed.Engine
}

func NewWebSocketHandler(engine *feed.Engine) *WebSocketHandler {
	return &WebSocketHandler{
		engine: engine,
	}
}

// HandleConnection serves feed queries over a websocket, streaming a
// progress frame per topic before the final result frame. The pipeline
// runs under a context tied to the connection: when the read loop exits
// or a progress frame can no longer be written, in-flight work is
// cancelled.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type           string `json:"type"`
			Query          string `json:"query"`
			SeverityFilter int    `json:"severity_filter"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "feed" {
			continue
		}

		logger.Info("Processing WebSocket feed query", zap.String("query", msg.Query))

		err = h.streamFeed(ctx, cancel, c, msg.Query, msg.SeverityFilter)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("Failed to stream feed", zap.Error(err))
			h.sendError(c, "Failed to process feed query")
		}
	}
}

func (h *WebSocketHandler) streamFeed(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, queryText string, severityFilter int) error {
	req := feed.FeedRequest{
		Query:          queryText,
		SeverityFilter: severityFilter,
		Progress: func(event feed.ProgressEvent) {
			// A client that dropped the socket cannot receive the
			// result, so stop fetching for it.
			if err := h.sendProgress(c, event); err != nil {
				cancel()
			}
		},
	}

	response, err := h.engine.ProcessQuery(ctx, req)
	if err != nil {
		return err
	}

	return c.WriteJSON(map[string]interface{}{
		"type": "complete",
		"feed": response,
	})
}

func (h *WebSocketHandler) sendProgress(c *websocket.Conn, event feed.ProgressEvent) error {
	err := c.WriteJSON(map[string]interface{}{
		"type":     "progress",
		"progress": event,
	})
	if err != nil {
		logger.Warn("Failed to send progress frame", zap.Error(err))
	}
	return err
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
