package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/engine"
)

// ChatHandler exposes the triage conversation to authenticated clients.
type ChatHandler struct {
	engine   *engine.Engine
	registry *engine.Registry
}

// NewChatHandler constructs handler.
func NewChatHandler(eng *engine.Engine, registry *engine.Registry) *ChatHandler {
	return &ChatHandler{engine: eng, registry: registry}
}

// Start handles POST /portal/chat. Opening a conversation always succeeds;
// model failures surface as the fixed greeting.
func (h *ChatHandler) Start(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Client == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	conv := h.engine.Start(c.UserContext(), *principal.Client)
	h.registry.Add(conv)

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewConversationView(conv.ID(), conv.Status(), conv.Messages()),
	})
}

// Get handles GET /portal/chat/:id.
func (h *ChatHandler) Get(c *fiber.Ctx) error {
	conv, err := h.ownConversation(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewConversationView(conv.ID(), conv.Status(), conv.Messages()),
	})
}

// Send handles POST /portal/chat/:id/messages, one user turn.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	conv, err := h.ownConversation(c)
	if err != nil {
		return err
	}

	var req dto.ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	messages, status, err := conv.SendTurn(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewConversationView(conv.ID(), status, messages),
	})
}

// Leave handles DELETE /portal/chat/:id, discarding an active conversation.
func (h *ChatHandler) Leave(c *fiber.Ctx) error {
	conv, err := h.ownConversation(c)
	if err != nil {
		return err
	}

	conv.Leave(c.UserContext())
	h.registry.Remove(conv.ID())
	return c.SendStatus(http.StatusNoContent)
}

// ownConversation resolves the path conversation and checks it belongs to
// the calling client.
func (h *ChatHandler) ownConversation(c *fiber.Ctx) (*engine.Conversation, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Client == nil {
		return nil, fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	conv, ok := h.registry.Get(c.Params("id"))
	if !ok {
		return nil, fiber.NewError(http.StatusNotFound, "conversation not found")
	}
	if conv.Client().ID != principal.Client.ID {
		return nil, fiber.NewError(http.StatusForbidden, "conversation belongs to another client")
	}
	return conv, nil
}
