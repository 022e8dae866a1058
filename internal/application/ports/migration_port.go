package ports

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// MigrationTrigger define el puerto de salida hacia el servicio externo que prepara
// los esquemas de un tenant según los tiers de módulo que tiene contratados.
// Es una notificación best-effort posterior al commit: su error nunca anula la
// operación que la originó; el caller solo lo registra.
type MigrationTrigger interface {
	Trigger(ctx context.Context, companyID string, moduleTypes []entity.ModuleType) error
}
