package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// SubscriptionRepository persiste suscripciones y sus créditos.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	CreateCredit(ctx context.Context, credit *entity.Credit) error
	// GetByOrderID devuelve la suscripción de la orden con sus créditos, o (nil, nil).
	GetByOrderID(ctx context.Context, orderID string) (*entity.Subscription, error)
}
