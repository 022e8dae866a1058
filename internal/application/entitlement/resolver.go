package entitlement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/mapper"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/metrics"
)

// Resolver calcula en cada consulta qué módulos puede usar un usuario en una empresa.
// El resultado nunca se persiste: se deriva de Subscription + Credit en cada llamada,
// por lo que es seguro llamarlo de forma repetida y concurrente.
type Resolver struct {
	repo       repository.EntitlementRepository
	moduleRepo repository.ModuleRepository
	clock      ports.Clock
	metrics    *metrics.Metrics
}

// NewResolver construye el resolver. clock nil usa el reloj del sistema; m puede ser nil.
func NewResolver(
	repo repository.EntitlementRepository,
	moduleRepo repository.ModuleRepository,
	clock ports.Clock,
	m *metrics.Metrics,
) *Resolver {
	if clock == nil {
		clock = ports.SystemClock
	}
	return &Resolver{repo: repo, moduleRepo: moduleRepo, clock: clock, metrics: m}
}

// ResolveActiveModules devuelve los módulos activos ahora.
func (r *Resolver) ResolveActiveModules(ctx context.Context, userID, companyID string) ([]*entity.Module, error) {
	return r.ResolveActiveModulesAt(ctx, userID, companyID, r.clock.Now())
}

// ResolveActiveModulesAt devuelve los módulos distintos que cumplen, en asOf:
// membresía (userID, companyID), suscripción Active de la empresa que cubre asOf y
// crédito activo del módulo en esa suscripción que cubre asOf.
// Sin membresía o sin suscripciones devuelve una lista vacía (no nil) y sin error.
func (r *Resolver) ResolveActiveModulesAt(ctx context.Context, userID, companyID string, asOf time.Time) ([]*entity.Module, error) {
	if userID == "" || companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	modules, err := r.repo.ListActiveModules(ctx, userID, companyID, asOf)
	r.metrics.EntitlementResolved(err)
	if err != nil {
		return nil, fmt.Errorf("resolver módulos activos: %w", err)
	}
	return distinctModules(modules), nil
}

// ActiveModuleTypes devuelve los tiers activos (sin repetir) del usuario en la empresa.
func (r *Resolver) ActiveModuleTypes(ctx context.Context, userID, companyID string) ([]entity.ModuleType, error) {
	modules, err := r.ResolveActiveModules(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	return ModuleTypes(modules), nil
}

// ListEntitlements arma la respuesta del endpoint de entitlements; con withSubmodules
// anida los submódulos de cada módulo activo.
func (r *Resolver) ListEntitlements(ctx context.Context, userID, companyID string, withSubmodules bool) (*dto.ModuleListResponse, error) {
	modules, err := r.ResolveActiveModules(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if !withSubmodules || len(modules) == 0 {
		return &dto.ModuleListResponse{Items: mapper.Modules(modules)}, nil
	}
	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	subs, err := r.moduleRepo.ListSubmodules(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("listar submódulos: %w", err)
	}
	return &dto.ModuleListResponse{Items: mapper.ModulesWithSubmodules(modules, subs)}, nil
}

// ModuleTypes extrae los tiers distintos de una lista de módulos, en orden estable.
func ModuleTypes(modules []*entity.Module) []entity.ModuleType {
	seen := make(map[entity.ModuleType]struct{}, len(modules))
	types := make([]entity.ModuleType, 0, len(modules))
	for _, m := range modules {
		if m == nil {
			continue
		}
		if _, ok := seen[m.Type]; ok {
			continue
		}
		seen[m.Type] = struct{}{}
		types = append(types, m.Type)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// distinctModules elimina repetidos por ID (varias suscripciones o créditos solapados
// sobre el mismo módulo) y ordena por nombre.
func distinctModules(modules []*entity.Module) []*entity.Module {
	seen := make(map[string]struct{}, len(modules))
	out := make([]*entity.Module, 0, len(modules))
	for _, m := range modules {
		if m == nil {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
