package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/domain"
)

// RequireClient ensures a client is authenticated.
func RequireClient() fiber.Handler {
	return requireSubject("client required", domain.SubjectTypeClient)
}

// RequireSpecialist ensures a specialist is authenticated.
func RequireSpecialist() fiber.Handler {
	return requireSubject("specialist required", domain.SubjectTypeSpecialist)
}

// RequireAdmin ensures an administrative principal is authenticated. The
// owner panel sees the same administrative surface.
func RequireAdmin() fiber.Handler {
	return requireSubject("admin required", domain.SubjectTypeAdmin, domain.SubjectTypeOwner)
}

// RequireDeveloper ensures the developer principal is authenticated.
func RequireDeveloper() fiber.Handler {
	return requireSubject("developer required", domain.SubjectTypeDeveloper)
}

func requireSubject(message string, allowed ...domain.SubjectType) fiber.Handler {
	allowedSet := make(map[domain.SubjectType]struct{}, len(allowed))
	for _, subject := range allowed {
		allowedSet[subject] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if _, exists := allowedSet[principal.SubjectType]; !exists {
			return fiber.NewError(http.StatusForbidden, message)
		}
		return c.Next()
	}
}
