package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/service"
)

// DevHandler backs the developer panel: data reset and runtime counters.
type DevHandler struct {
	directory *service.DirectoryService
	metrics   *observability.Metrics
}

// NewDevHandler constructs handler.
func NewDevHandler(directory *service.DirectoryService, metrics *observability.Metrics) *DevHandler {
	return &DevHandler{directory: directory, metrics: metrics}
}

// Reset handles POST /dev/reset, restoring the seed state. Repeated calls
// are idempotent.
func (h *DevHandler) Reset(c *fiber.Ctx) error {
	if err := h.directory.Reset(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"message": "application data reset"},
	})
}

// Stats handles GET /dev/stats with the in-memory request counters.
func (h *DevHandler) Stats(c *fiber.Ctx) error {
	requests, errors := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"requests": requests,
			"errors":   errors,
		},
	})
}
