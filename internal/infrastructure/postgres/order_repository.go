package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera de la orden.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (id, user_id, company_id, sale_date, status, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.UserID, o.CompanyID, o.SaleDate, o.Status, o.TotalAmount, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de la orden.
func (r *OrderRepo) CreateDetail(ctx context.Context, d *entity.OrderDetail) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_details (id, order_id, module_id, amount)
		VALUES ($1, $2, $3, $4)`,
		d.ID, d.OrderID, d.ModuleID, d.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert order detail: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de la orden, o (nil, nil).
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(ctx, `
		SELECT id, user_id, company_id, sale_date, status, total_amount, created_at
		FROM orders WHERE id::text = $1`, id).Scan(
		&o.ID, &o.UserID, &o.CompanyID, &o.SaleDate, &o.Status, &o.TotalAmount, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// GetDetailsByOrderID devuelve las líneas de la orden.
func (r *OrderRepo) GetDetailsByOrderID(ctx context.Context, orderID string) ([]*entity.OrderDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, module_id, amount
		FROM order_details WHERE order_id::text = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order details: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.OrderDetail, 0)
	for rows.Next() {
		var d entity.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ModuleID, &d.Amount); err != nil {
			return nil, fmt.Errorf("scan order detail: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
