package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.EntitlementRepository = (*EntitlementRepo)(nil)

// EntitlementRepo resuelve los módulos activos con un único join.
type EntitlementRepo struct {
	q Querier
}

// NewEntitlementRepository construye el adaptador.
func NewEntitlementRepository(q Querier) *EntitlementRepo {
	return &EntitlementRepo{q: q}
}

// Ventanas semiabiertas: start_date <= asOf < end_date.
const activeModulesQuery = `
	SELECT DISTINCT m.id, m.name, m.type, m.price, m.created_at
	  FROM memberships ms
	  JOIN subscriptions s ON s.company_id = ms.company_id
	                      AND s.status     = $3
	                      AND s.start_date <= $4 AND $4 < s.end_date
	  JOIN credits c       ON c.subscription_id = s.id
	                      AND c.is_active  = true
	                      AND c.start_date <= $4 AND $4 < c.end_date
	  JOIN modules m       ON m.id = c.module_id
	 WHERE ms.user_id::text = $1
	   AND ms.company_id::text = $2
	 ORDER BY m.name, m.id`

// ListActiveModules devuelve los módulos distintos habilitados en asOf.
func (r *EntitlementRepo) ListActiveModules(ctx context.Context, userID, companyID string, asOf time.Time) ([]*entity.Module, error) {
	rows, err := r.q.Query(ctx, activeModulesQuery, userID, companyID, entity.SubscriptionStatusActive, asOf)
	if err != nil {
		return nil, fmt.Errorf("query active modules: %w", err)
	}
	return scanModules(rows)
}
