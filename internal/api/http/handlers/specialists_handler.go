package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/service"
)

// SpecialistsHandler covers the admin specialist directory, assignment
// management and the specialist's own dashboard.
type SpecialistsHandler struct {
	directory *service.DirectoryService
}

// NewSpecialistsHandler constructs handler.
func NewSpecialistsHandler(directory *service.DirectoryService) *SpecialistsHandler {
	return &SpecialistsHandler{directory: directory}
}

// List handles GET /admin/specialists.
func (h *SpecialistsHandler) List(c *fiber.Ctx) error {
	specialists, err := h.directory.ListSpecialists(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSpecialistViews(specialists)})
}

// Create handles POST /admin/specialists.
func (h *SpecialistsHandler) Create(c *fiber.Ctx) error {
	var req dto.SpecialistCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	department, err := domain.ParseDepartment(req.Department)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	specialist, err := h.directory.CreateSpecialist(c.Context(), service.SpecialistCreateInput{
		Username:   req.Username,
		Name:       req.Name,
		Department: department,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSpecialistView(*specialist)})
}

// Delete handles DELETE /admin/specialists/:id. Assignments pointing at the
// specialist are removed from every client.
func (h *SpecialistsHandler) Delete(c *fiber.Ctx) error {
	if err := h.directory.DeleteSpecialist(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ResetPassword handles POST /admin/specialists/:id/password/reset.
func (h *SpecialistsHandler) ResetPassword(c *fiber.Ctx) error {
	if err := h.directory.ResetSpecialistPassword(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"message": "password reset; specialist must set a new one on next login"},
	})
}

// Assign handles POST /admin/assignments, creating a pending assignment.
func (h *SpecialistsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ClientID == "" || req.SpecialistID == "" {
		return fiber.NewError(http.StatusBadRequest, "client_id and specialist_id required")
	}

	department, err := domain.ParseDepartment(req.Department)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.directory.AssignSpecialist(c.Context(), req.ClientID, req.SpecialistID, department); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"client_id":     req.ClientID,
			"specialist_id": req.SpecialistID,
			"department":    department,
			"status":        domain.AssignmentPending,
		},
	})
}

// AssignedClients handles GET /specialist/clients for the authenticated
// specialist.
func (h *SpecialistsHandler) AssignedClients(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Specialist == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	clients, err := h.directory.ClientsAssignedTo(c.Context(), principal.Specialist.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClientViews(clients)})
}

// AcceptAssignment handles POST /specialist/assignments/accept.
func (h *SpecialistsHandler) AcceptAssignment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Specialist == nil {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.AcceptAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ClientID == "" {
		return fiber.NewError(http.StatusBadRequest, "client_id required")
	}

	accepted, err := h.directory.AcceptAssignment(c.Context(), req.ClientID, principal.Specialist.ID)
	if err != nil {
		return err
	}
	if !accepted {
		return fiber.NewError(http.StatusNotFound, "no pending assignment for this client")
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"client_id": req.ClientID,
			"status":    domain.AssignmentAccepted,
		},
	})
}
