package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/usecase"
)

// ModuleHandler catálogo público de módulos.
type ModuleHandler struct {
	svc *usecase.ModuleService
}

// NewModuleHandler construye el handler.
func NewModuleHandler(svc *usecase.ModuleService) *ModuleHandler {
	return &ModuleHandler{svc: svc}
}

// List godoc
// @Summary      Catálogo de módulos
// @Tags         modules
// @Produce      json
// @Success      200  {object}  dto.ModuleListResponse
// @Router       /api/modules [get]
func (h *ModuleHandler) List(c *fiber.Ctx) error {
	out, err := h.svc.ListCatalog(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
