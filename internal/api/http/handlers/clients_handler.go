package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/service"
)

// ClientsHandler covers the admin client directory plus the client's own
// profile view.
type ClientsHandler struct {
	directory *service.DirectoryService
}

// NewClientsHandler constructs handler.
func NewClientsHandler(directory *service.DirectoryService) *ClientsHandler {
	return &ClientsHandler{directory: directory}
}

// Me handles GET /portal/me for the authenticated client.
func (h *ClientsHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Client == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	client, err := h.directory.GetClient(c.Context(), principal.Client.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClientView(*client)})
}

// List handles GET /admin/clients.
func (h *ClientsHandler) List(c *fiber.Ctx) error {
	clients, err := h.directory.ListClients(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClientViews(clients)})
}

// Get handles GET /admin/clients/:id.
func (h *ClientsHandler) Get(c *fiber.Ctx) error {
	client, err := h.directory.GetClient(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClientView(*client)})
}

// Create handles POST /admin/clients. New clients start without a
// password and complete the set-password flow on first login.
func (h *ClientsHandler) Create(c *fiber.Ctx) error {
	var req dto.ClientCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	client, err := h.directory.CreateClient(c.Context(), service.ClientCreateInput{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		CNPJ:        req.CNPJ,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewClientView(*client)})
}

// ResetPassword handles POST /admin/clients/:id/password/reset.
func (h *ClientsHandler) ResetPassword(c *fiber.Ctx) error {
	if err := h.directory.ResetClientPassword(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"message": "password reset; client must set a new one on next login"},
	})
}
