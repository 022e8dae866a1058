package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest body para POST /api/orders.
// ModuleIDs puede traer repetidos; se deduplican antes de resolver el catálogo.
type CreateOrderRequest struct {
	ModuleIDs []string `json:"module_ids"`
}

// OrderResponse orden con los módulos resueltos (incluye el Basic inyectado si aplica).
type OrderResponse struct {
	ID           string                `json:"id"`
	UserID       string                `json:"user_id"`
	CompanyID    string                `json:"company_id"`
	Status       string                `json:"status"`
	SaleDate     time.Time             `json:"sale_date"`
	TotalAmount  decimal.Decimal       `json:"total_amount"`
	Modules      []ModuleResponse      `json:"modules"`
	Details      []OrderDetailResponse `json:"details"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
}

// OrderDetailResponse línea de la orden.
type OrderDetailResponse struct {
	ID       string          `json:"id"`
	ModuleID string          `json:"module_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// SubscriptionResponse suscripción abierta por la orden con sus créditos.
type SubscriptionResponse struct {
	ID        string           `json:"id"`
	CompanyID string           `json:"company_id"`
	OrderID   string           `json:"order_id"`
	Status    string           `json:"status"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	Credits   []CreditResponse `json:"credits"`
}

// CreditResponse crédito de un módulo.
type CreditResponse struct {
	ID            string    `json:"id"`
	ModuleID      string    `json:"module_id"`
	OrderDetailID string    `json:"order_detail_id"`
	IsActive      bool      `json:"is_active"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}
