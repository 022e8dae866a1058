package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/orders"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// txRunner agrupa los dos runners transaccionales que implementan ambos backends.
type txRunner interface {
	orders.OrderTxRunner
	auth.RegistrationTxRunner
}

// backend reúne los repositorios del driver elegido en DB_DRIVER.
type backend struct {
	modules       repository.ModuleRepository
	companies     repository.CompanyRepository
	users         repository.UserRepository
	memberships   repository.MembershipRepository
	orders        repository.OrderRepository
	subscriptions repository.SubscriptionRepository
	entitlements  repository.EntitlementRepository
	tx            txRunner
	close         func()
}

func openBackend(ctx context.Context, cfg config.DBConfig, clock ports.Clock, log *logger.Logger) (*backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return openMemory(ctx, clock, log)
	default:
		return openPostgres(ctx, cfg, log)
	}
}

func openMemory(ctx context.Context, clock ports.Clock, log *logger.Logger) (*backend, error) {
	store := memory.New()
	seeded, err := usecase.NewCatalogSeeder(store.Modules(), clock).Seed(ctx, usecase.DefaultCatalog())
	if err != nil {
		return nil, fmt.Errorf("sembrar catálogo en memoria: %w", err)
	}
	log.Warn().Int("modules", len(seeded)).Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")

	return &backend{
		modules:       store.Modules(),
		companies:     store.Companies(),
		users:         store.Users(),
		memberships:   store.Memberships(),
		orders:        store.Orders(),
		subscriptions: store.Subscriptions(),
		entitlements:  store.Entitlements(),
		tx:            store,
		close:         func() {},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*backend, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		log.Info().Ints("applied", applied).Msg("migraciones al día")
	}

	return &backend{
		modules:       postgres.NewModuleRepository(pool),
		companies:     postgres.NewCompanyRepository(pool),
		users:         postgres.NewUserRepository(pool),
		memberships:   postgres.NewMembershipRepository(pool),
		orders:        postgres.NewOrderRepository(pool),
		subscriptions: postgres.NewSubscriptionRepository(pool),
		entitlements:  postgres.NewEntitlementRepository(pool),
		tx:            postgres.NewTxRunner(pool),
		close:         pool.Close,
	}, nil
}
