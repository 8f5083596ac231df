package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/service"
)

// SessionsHandler exposes the read-only session ledger to the admin panel.
type SessionsHandler struct {
	ledger *service.LedgerService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(ledger *service.LedgerService) *SessionsHandler {
	return &SessionsHandler{ledger: ledger}
}

// List handles GET /admin/sessions in insertion order.
func (h *SessionsHandler) List(c *fiber.Ctx) error {
	sessions, err := h.ledger.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionViews(sessions)})
}
