package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/entitlement"
	"github.com/jhoicas/backoffice-api/internal/application/orders"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/application/subscription"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/metrics"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/migration"
	infrapdf "github.com/jhoicas/backoffice-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/backoffice-api/internal/interfaces/http"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	clock := ports.SystemClock
	m := metrics.New(nil)

	store, err := openBackend(ctx, cfg.DB, clock, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer store.close()

	// Sin MIGRATION_URL la notificación solo queda en el log.
	var migrations ports.MigrationTrigger = migration.LogTrigger{Logger: log, Metrics: m}
	var dispatcher *migration.Dispatcher
	if cfg.Migration.URL != "" {
		dispatcher = migration.NewDispatcher(
			migration.NewHTTPClient(cfg.Migration.URL, cfg.Migration.Timeout),
			migration.Options{
				QueueSize:   cfg.Migration.QueueSize,
				MaxAttempts: cfg.Migration.MaxAttempts,
				Logger:      log,
				Metrics:     m,
			},
		)
		migrations = dispatcher
	}

	resolver := entitlement.NewResolver(store.entitlements, store.modules, clock, m)
	moduleSvc := usecase.NewModuleService(resolver, store.modules)
	companyUC := usecase.NewCompanyUseCase(store.companies, migrations, clock, log)

	authUC := auth.NewAuthUseCase(auth.Deps{
		UserRepo:    store.users,
		CompanyRepo: store.companies,
		TxRunner:    store.tx,
		Resolver:    resolver,
		Migrations:  migrations,
		Clock:       clock,
		Logger:      log,
		JWT: auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
	})

	ordersUC := orders.NewCreateOrderUseCase(orders.Deps{
		TxRunner:         store.tx,
		Provisioner:      subscription.NewCreditProvisioner(clock),
		ModuleRepo:       store.modules,
		MembershipRepo:   store.memberships,
		OrderRepo:        store.orders,
		SubscriptionRepo: store.subscriptions,
		Migrations:       migrations,
		Clock:            clock,
		Logger:           log,
		Metrics:          m,
	})
	orderPDFUC := orders.NewPDFUseCase(ordersUC, store.companies, infrapdf.NewMarotoPDFGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Backoffice API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:     companyUC,
		AuthUC:        authUC,
		ModuleService: moduleSvc,
		Orders:        ordersUC,
		OrderPDF:      orderPDFUC,
		Entitlements:  resolver,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Las notificaciones encoladas salen después de cerrar HTTP: ya no entran órdenes nuevas.
	if dispatcher != nil {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("cola de migraciones sin vaciar")
		}
	}

	log.Info().Msg("aplicación detenida")
}
