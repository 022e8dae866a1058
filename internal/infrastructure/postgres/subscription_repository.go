package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo suscripciones y créditos sobre PostgreSQL (usable con pool o tx).
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// Create persiste la suscripción (sin créditos).
func (r *SubscriptionRepo) Create(ctx context.Context, s *entity.Subscription) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO subscriptions (id, company_id, order_id, status, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.CompanyID, s.OrderID, s.Status, s.StartDate, s.EndDate, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// CreateCredit persiste un crédito.
func (r *SubscriptionRepo) CreateCredit(ctx context.Context, c *entity.Credit) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO credits (id, module_id, subscription_id, order_detail_id, is_active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.ModuleID, c.SubscriptionID, c.OrderDetailID, c.IsActive, c.StartDate, c.EndDate,
	)
	if err != nil {
		return fmt.Errorf("insert credit: %w", err)
	}
	return nil
}

// GetByOrderID devuelve la suscripción de la orden con sus créditos, o (nil, nil).
func (r *SubscriptionRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.Subscription, error) {
	var s entity.Subscription
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, order_id, status, start_date, end_date, created_at
		FROM subscriptions WHERE order_id::text = $1`, orderID).Scan(
		&s.ID, &s.CompanyID, &s.OrderID, &s.Status, &s.StartDate, &s.EndDate, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, module_id, subscription_id, order_detail_id, is_active, start_date, end_date
		FROM credits WHERE subscription_id = $1 ORDER BY id`, s.ID)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	defer rows.Close()
	s.Credits = make([]*entity.Credit, 0)
	for rows.Next() {
		var c entity.Credit
		if err := rows.Scan(&c.ID, &c.ModuleID, &c.SubscriptionID, &c.OrderDetailID, &c.IsActive, &c.StartDate, &c.EndDate); err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		s.Credits = append(s.Credits, &c)
	}
	return &s, rows.Err()
}
