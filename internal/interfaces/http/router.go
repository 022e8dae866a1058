package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/entitlement"
	"github.com/jhoicas/backoffice-api/internal/application/orders"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC     *usecase.CompanyUseCase
	AuthUC        *auth.AuthUseCase
	ModuleService *usecase.ModuleService
	Orders        *orders.CreateOrderUseCase
	OrderPDF      *orders.PDFUseCase
	Entitlements  *entitlement.Resolver
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público: el alta de empresa precede al registro de usuarios)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Catálogo de módulos (público)
	moduleHandler := NewModuleHandler(deps.ModuleService)
	api.Get("/modules", moduleHandler.List)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Orders: comprar módulos no exige tener módulos activos, pero sí rol de compra;
	// el comprobante PDF exige Basic activo.
	orderGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders, deps.OrderPDF)
	orderGroup.Post("/", RequireRole(entity.RoleAdmin, entity.RoleCompras), orderHandler.Create)
	orderGroup.Get("/:id", orderHandler.GetByID)
	orderGroup.Get("/:id/pdf",
		RequireModule(entity.ModuleTypeBasic, deps.ModuleService),
		orderHandler.DownloadPDF,
	)

	// Entitlements (protegido): lista vacía si no hay módulos activos
	entitlementHandler := NewEntitlementHandler(deps.Entitlements)
	protected.Get("/entitlements", entitlementHandler.List)
}
