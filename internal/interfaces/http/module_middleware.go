package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *usecase.ModuleService; el uso de interfaz evita el import circular.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, userID, companyID string, moduleType entity.ModuleType) (bool, error)
}

// RequireModule devuelve un middleware Fiber que verifica si el usuario del token tiene hoy
// un módulo activo del tier indicado en su empresa. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 Forbidden  → módulo no contratado o vencido.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
//   - Si no hay user_id/company_id en el contexto, responde 401.
func RequireModule(moduleType entity.ModuleType, checker moduleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, companyID := GetUserID(c), GetCompanyID(c)
		if userID == "" || companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id o company_id no encontrado en el token",
			})
		}

		active, err := checker.HasActiveModule(c.Context(), userID, companyID, moduleType)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}

		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + string(moduleType) + "' no está activo para esta empresa",
			})
		}

		return c.Next()
	}
}
