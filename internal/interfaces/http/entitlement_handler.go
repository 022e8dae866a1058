package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/entitlement"
)

// EntitlementHandler expone los módulos activos del usuario en su empresa.
type EntitlementHandler struct {
	resolver *entitlement.Resolver
}

// NewEntitlementHandler construye el handler.
func NewEntitlementHandler(resolver *entitlement.Resolver) *EntitlementHandler {
	return &EntitlementHandler{resolver: resolver}
}

// List godoc
// @Summary      Módulos activos
// @Description  Módulos habilitados hoy para el usuario del token. Nunca null; lista vacía si no hay ninguno.
// @Tags         entitlements
// @Produce      json
// @Security     BearerAuth
// @Param        submodules  query  bool  false  "Incluir submódulos"
// @Success      200  {object}  dto.ModuleListResponse
// @Router       /api/entitlements [get]
func (h *EntitlementHandler) List(c *fiber.Ctx) error {
	userID, companyID := GetUserID(c), GetCompanyID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	out, err := h.resolver.ListEntitlements(c.Context(), userID, companyID, c.QueryBool("submodules", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
