package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order y sus líneas.
// No hay ruta de actualización: las órdenes son inmutables una vez creadas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateDetail(ctx context.Context, detail *entity.OrderDetail) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetDetailsByOrderID(ctx context.Context, orderID string) ([]*entity.OrderDetail, error)
}
