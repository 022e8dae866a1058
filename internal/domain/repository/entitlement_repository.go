package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// EntitlementRepository resuelve el join Membership ⋈ Subscription ⋈ Credit ⋈ Module.
type EntitlementRepository interface {
	// ListActiveModules devuelve los módulos que el usuario puede usar en la empresa en asOf:
	// requiere membresía, suscripción Active que cubra asOf y crédito activo que cubra asOf.
	// Sin membresía o sin suscripciones devuelve una lista vacía, no un error.
	ListActiveModules(ctx context.Context, userID, companyID string, asOf time.Time) ([]*entity.Module, error)
}
