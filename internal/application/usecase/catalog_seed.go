package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// CatalogEntry módulo del catálogo por defecto con sus submódulos.
type CatalogEntry struct {
	Name       string
	Type       entity.ModuleType
	Price      decimal.Decimal
	Submodules []string
}

// DefaultCatalog catálogo base: un módulo por tier. Precios mensuales en COP.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Name: "Basic", Type: entity.ModuleTypeBasic, Price: decimal.NewFromInt(49900),
			Submodules: []string{"Empresas", "Usuarios", "Configuración"}},
		{Name: "Auth", Type: entity.ModuleTypeAuth, Price: decimal.NewFromInt(19900),
			Submodules: []string{"Roles", "Sesiones"}},
		{Name: "Accounting", Type: entity.ModuleTypeAccounting, Price: decimal.NewFromInt(89900),
			Submodules: []string{"Plan de cuentas", "Asientos", "Reportes"}},
		{Name: "Pos", Type: entity.ModuleTypePos, Price: decimal.NewFromInt(69900),
			Submodules: []string{"Caja", "Ventas"}},
		{Name: "CustomerSupport", Type: entity.ModuleTypeCustomerSupport, Price: decimal.NewFromInt(39900),
			Submodules: []string{"Tickets"}},
		{Name: "Erp", Type: entity.ModuleTypeErp, Price: decimal.NewFromInt(149900),
			Submodules: []string{"Inventario", "Compras", "Facturación"}},
	}
}

// CatalogSeeder carga el catálogo de módulos. Es idempotente: el ID de cada módulo y
// submódulo se deriva de su nombre (UUID v5), así que una segunda corrida actualiza en vez de duplicar.
type CatalogSeeder struct {
	repo  repository.ModuleRepository
	clock ports.Clock
}

// NewCatalogSeeder construye el seeder.
func NewCatalogSeeder(repo repository.ModuleRepository, clock ports.Clock) *CatalogSeeder {
	if clock == nil {
		clock = ports.SystemClock
	}
	return &CatalogSeeder{repo: repo, clock: clock}
}

// Seed inserta o actualiza las entradas y devuelve los módulos resultantes.
func (s *CatalogSeeder) Seed(ctx context.Context, entries []CatalogEntry) ([]*entity.Module, error) {
	now := s.clock.Now()
	out := make([]*entity.Module, 0, len(entries))
	for _, e := range entries {
		if !e.Type.Valid() {
			return nil, fmt.Errorf("catálogo: tier desconocido %q", e.Type)
		}
		m := &entity.Module{
			ID:        ModuleID(e.Name),
			Name:      e.Name,
			Type:      e.Type,
			Price:     e.Price,
			CreatedAt: now,
		}
		if err := s.repo.Upsert(ctx, m); err != nil {
			return nil, fmt.Errorf("catálogo: upsert %s: %w", e.Name, err)
		}
		for _, name := range e.Submodules {
			sub := &entity.Submodule{
				ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte("submodule:"+e.Name+"/"+name)).String(),
				ModuleID: m.ID,
				Name:     name,
			}
			if err := s.repo.UpsertSubmodule(ctx, sub); err != nil {
				return nil, fmt.Errorf("catálogo: upsert submódulo %s/%s: %w", e.Name, name, err)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// ModuleID ID estable de un módulo del catálogo a partir de su nombre.
func ModuleID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("module:"+name)).String()
}
