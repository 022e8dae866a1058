package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Order.
const (
	OrderStatusApproved = "Approved"
)

// Order es una compra de módulos hecha por un usuario para una empresa.
// Se crea una sola vez y no se actualiza después.
type Order struct {
	ID          string
	UserID      string
	CompanyID   string
	SaleDate    time.Time
	Status      string
	TotalAmount decimal.Decimal
	Details     []*OrderDetail
	CreatedAt   time.Time
}

// OrderDetail es una línea de la orden: un módulo distinto y su precio al momento de la compra.
type OrderDetail struct {
	ID       string
	OrderID  string
	ModuleID string
	Amount   decimal.Decimal
}
