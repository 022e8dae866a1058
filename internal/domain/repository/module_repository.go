package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// ModuleRepository es el catálogo de módulos. Solo lectura para órdenes y entitlements;
// Upsert/UpsertSubmodule los usa únicamente el seeder del catálogo.
type ModuleRepository interface {
	// GetByIDs devuelve los módulos existentes entre ids; los ids desconocidos se ignoran.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Module, error)
	// GetByType devuelve el módulo del tier indicado o (nil, nil) si el catálogo no lo tiene.
	GetByType(ctx context.Context, moduleType entity.ModuleType) (*entity.Module, error)
	List(ctx context.Context) ([]*entity.Module, error)
	ListSubmodules(ctx context.Context, moduleIDs []string) ([]*entity.Submodule, error)
	Upsert(ctx context.Context, module *entity.Module) error
	UpsertSubmodule(ctx context.Context, submodule *entity.Submodule) error
}
