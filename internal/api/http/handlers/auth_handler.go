package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/service"
)

// AuthHandler exposes the portal's login flows: directory principals with
// the three-way outcome, and the fixed admin, developer and owner pairs.
type AuthHandler struct {
	auth      *service.AuthService
	directory *service.DirectoryService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, directory *service.DirectoryService) *AuthHandler {
	return &AuthHandler{auth: authService, directory: directory}
}

// ClientLogin handles POST /auth/clients/login.
func (h *AuthHandler) ClientLogin(c *fiber.Ctx) error {
	var req dto.ClientLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ClientID == "" {
		return fiber.NewError(http.StatusBadRequest, "client_id required")
	}

	result, err := h.auth.LoginClient(c.Context(), req.ClientID, req.Password)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case service.OutcomeNeedsPassword:
		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"outcome": result.Outcome,
				"client":  dto.NewClientView(*result.Client),
			},
		})
	case service.OutcomeAuthenticated:
		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"outcome": result.Outcome,
				"client":  dto.NewClientView(*result.Client),
				"auth":    dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
			},
		})
	default:
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}
}

// SpecialistLogin handles POST /auth/specialists/login.
func (h *AuthHandler) SpecialistLogin(c *fiber.Ctx) error {
	var req dto.SpecialistLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" {
		return fiber.NewError(http.StatusBadRequest, "username required")
	}

	result, err := h.auth.LoginSpecialist(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case service.OutcomeNeedsPassword:
		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"outcome":    result.Outcome,
				"specialist": dto.NewSpecialistView(*result.Specialist),
			},
		})
	case service.OutcomeAuthenticated:
		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"outcome":    result.Outcome,
				"specialist": dto.NewSpecialistView(*result.Specialist),
				"auth":       dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
			},
		})
	default:
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}
}

// AdminLogin handles POST /auth/admin/login.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	return h.fixedLogin(c, domain.SubjectTypeAdmin)
}

// DevLogin handles POST /auth/dev/login.
func (h *AuthHandler) DevLogin(c *fiber.Ctx) error {
	return h.fixedLogin(c, domain.SubjectTypeDeveloper)
}

// OwnerLogin handles POST /auth/owner/login.
func (h *AuthHandler) OwnerLogin(c *fiber.Ctx) error {
	return h.fixedLogin(c, domain.SubjectTypeOwner)
}

func (h *AuthHandler) fixedLogin(c *fiber.Ctx, subject domain.SubjectType) error {
	var req dto.FixedLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	result, err := h.auth.LoginFixed(subject, req.Username, req.Password)
	if err != nil {
		return err
	}
	if result.Outcome != service.OutcomeAuthenticated {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"outcome": result.Outcome,
			"subject": subject,
			"auth":    dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// SetPassword handles POST /auth/password/set, completing the first-login
// flow. It is unauthenticated on purpose: the caller has no token yet.
func (h *AuthHandler) SetPassword(c *fiber.Ctx) error {
	var req dto.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ID == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "id and password required")
	}

	var err error
	switch req.Subject {
	case "client":
		err = h.directory.SetClientPassword(c.Context(), req.ID, req.Password)
	case "specialist":
		err = h.directory.SetSpecialistPassword(c.Context(), req.ID, req.Password)
	default:
		return fiber.NewError(http.StatusBadRequest, "subject must be client or specialist")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"message": "password set"},
	})
}
