package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/mapper"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// ActiveModuleResolver lo implementa entitlement.Resolver.
type ActiveModuleResolver interface {
	ResolveActiveModules(ctx context.Context, userID, companyID string) ([]*entity.Module, error)
}

// ModuleService responde qué módulos tiene activos un usuario en una empresa y expone el catálogo.
// Es el único punto de la capa HTTP que conoce la lógica de activación de módulos.
type ModuleService struct {
	resolver   ActiveModuleResolver
	moduleRepo repository.ModuleRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(resolver ActiveModuleResolver, moduleRepo repository.ModuleRepository) *ModuleService {
	return &ModuleService{resolver: resolver, moduleRepo: moduleRepo}
}

// HasActiveModule informa si el usuario tiene hoy un crédito activo de un módulo del tier indicado.
// Devuelve false (sin error) si no lo tiene contratado o no pertenece a la empresa.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasActiveModule(ctx context.Context, userID, companyID string, moduleType entity.ModuleType) (bool, error) {
	if userID == "" || companyID == "" || moduleType == "" {
		return false, fmt.Errorf("module: userID, companyID y moduleType son obligatorios")
	}
	modules, err := s.resolver.ResolveActiveModules(ctx, userID, companyID)
	if err != nil {
		return false, err
	}
	for _, m := range modules {
		if m.Type == moduleType {
			return true, nil
		}
	}
	return false, nil
}

// ListCatalog devuelve el catálogo completo con sus submódulos.
func (s *ModuleService) ListCatalog(ctx context.Context) (*dto.ModuleListResponse, error) {
	modules, err := s.moduleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar catálogo: %w", err)
	}
	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	var subs []*entity.Submodule
	if len(ids) > 0 {
		subs, err = s.moduleRepo.ListSubmodules(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("listar submódulos: %w", err)
		}
	}
	return &dto.ModuleListResponse{Items: mapper.ModulesWithSubmodules(modules, subs)}, nil
}
