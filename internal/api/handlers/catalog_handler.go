package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cyberpulse/backend/internal/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// ListTopics returns the threat topic catalog so clients can present
// the known topics without hardcoding them.
func (h *CatalogHandler) ListTopics(c *fiber.Ctx) error {
	topics := h.catalog.Topics()

	out := make([]fiber.Map, 0, len(topics))
	for _, t := range topics {
		out = append(out, fiber.Map{
			"id":       t.ID,
			"severity": t.Severity,
			"category": t.Category,
			"synonyms": t.Synonyms,
		})
	}

	return c.JSON(fiber.Map{
		"topics": out,
		"count":  len(out),
	})
}
