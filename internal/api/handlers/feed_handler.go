package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/halknowsaguy/api/internal/service"
)

type FeedHandler struct {
	s service.FeedService
}

func NewFeedHandler(service service.FeedService) *FeedHandler {
	return &FeedHandler{s: service}
}

func (h *FeedHandler) ListFeed(c *fiber.Ctx) error {
	items, err := h.s.ListPublic(c.UserContext())
	if err != nil {
		slog.Error("failed to list feed", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch feed")
	}

	return c.JSON(items)
}
