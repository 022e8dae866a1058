package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// creditValidityMonths duración fija de toda suscripción y de sus créditos.
const creditValidityMonths = 1

// CreditProvisioner abre una suscripción por orden y un crédito por línea de la orden.
type CreditProvisioner struct {
	clock ports.Clock
}

// NewCreditProvisioner construye el provisioner. clock nil usa el reloj del sistema.
func NewCreditProvisioner(clock ports.Clock) *CreditProvisioner {
	if clock == nil {
		clock = ports.SystemClock
	}
	return &CreditProvisioner{clock: clock}
}

// ProvisionCredits crea la suscripción (Active, [now, now+1 mes)) de la orden y un crédito
// activo con la misma ventana por cada línea. Usa el repositorio del caller para quedar
// dentro de su transacción: si retorna error, el caller debe hacer rollback.
// No adjunta créditos a suscripciones existentes.
func (p *CreditProvisioner) ProvisionCredits(
	ctx context.Context,
	subscriptionRepo repository.SubscriptionRepository,
	order *entity.Order,
	details []*entity.OrderDetail,
	companyID string,
) (*entity.Subscription, error) {
	if order == nil || len(details) == 0 {
		return nil, domain.ErrEmptyOrderDetails
	}
	if companyID == "" || order.ID == "" {
		return nil, domain.ErrInvalidInput
	}

	start := p.clock.Now()
	end := AddCalendarMonths(start, creditValidityMonths)

	sub := &entity.Subscription{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Status:    entity.SubscriptionStatusActive,
		StartDate: start,
		EndDate:   end,
		OrderID:   order.ID,
		CreatedAt: start,
		Credits:   make([]*entity.Credit, 0, len(details)),
	}
	if err := subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("crear suscripción: %w", err)
	}

	for _, d := range details {
		if d == nil || d.ModuleID == "" {
			return nil, domain.ErrInvalidInput
		}
		credit := &entity.Credit{
			ID:             uuid.New().String(),
			ModuleID:       d.ModuleID,
			SubscriptionID: sub.ID,
			IsActive:       true,
			StartDate:      start,
			EndDate:        end,
			OrderDetailID:  d.ID,
		}
		if err := subscriptionRepo.CreateCredit(ctx, credit); err != nil {
			return nil, fmt.Errorf("crear crédito del módulo %s: %w", d.ModuleID, err)
		}
		sub.Credits = append(sub.Credits, credit)
	}
	return sub, nil
}

// AddCalendarMonths suma n meses de calendario a t. Si el día no existe en el mes
// destino se usa el último día de ese mes (31-ene + 1 mes = 28/29-feb), sin desbordar
// al mes siguiente como hace time.AddDate.
func AddCalendarMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	hh, mm, ss := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}
