package orders

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// OrderTxRunner ejecuta fn dentro de una transacción que cubre órdenes y suscripciones.
// Orden, líneas, suscripción y créditos se confirman juntos o no se confirma nada.
type OrderTxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		subscriptionRepo repository.SubscriptionRepository,
	) error) error
}

// CreditProvisioner abre la suscripción y los créditos de una orden usando el
// repositorio del caller (misma transacción). Si retorna error, el caller hace rollback.
type CreditProvisioner interface {
	ProvisionCredits(
		ctx context.Context,
		subscriptionRepo repository.SubscriptionRepository,
		order *entity.Order,
		details []*entity.OrderDetail,
		companyID string,
	) (*entity.Subscription, error)
}

// OrderPDFGenerator genera el comprobante PDF de una orden.
type OrderPDFGenerator interface {
	GenerateOrderPDF(ctx context.Context, receipt *OrderReceipt) ([]byte, error)
}
