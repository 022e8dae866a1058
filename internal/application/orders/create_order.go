package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/entitlement"
	"github.com/jhoicas/backoffice-api/internal/application/mapper"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/metrics"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// Deps dependencias del caso de uso de órdenes.
type Deps struct {
	TxRunner         OrderTxRunner
	Provisioner      CreditProvisioner
	ModuleRepo       repository.ModuleRepository
	MembershipRepo   repository.MembershipRepository
	OrderRepo        repository.OrderRepository
	SubscriptionRepo repository.SubscriptionRepository
	Migrations       ports.MigrationTrigger
	Clock            ports.Clock
	Logger           *logger.Logger
	Metrics          *metrics.Metrics
}

// CreateOrderUseCase resuelve los módulos pedidos, garantiza el tier Basic y persiste
// orden + líneas + suscripción + créditos en una sola transacción.
type CreateOrderUseCase struct {
	txRunner         OrderTxRunner
	provisioner      CreditProvisioner
	moduleRepo       repository.ModuleRepository
	membershipRepo   repository.MembershipRepository
	orderRepo        repository.OrderRepository
	subscriptionRepo repository.SubscriptionRepository
	migrations       ports.MigrationTrigger
	clock            ports.Clock
	log              *logger.Logger
	metrics          *metrics.Metrics
}

// NewCreateOrderUseCase construye el caso de uso.
func NewCreateOrderUseCase(d Deps) *CreateOrderUseCase {
	if d.Clock == nil {
		d.Clock = ports.SystemClock
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return &CreateOrderUseCase{
		txRunner:         d.TxRunner,
		provisioner:      d.Provisioner,
		moduleRepo:       d.ModuleRepo,
		membershipRepo:   d.MembershipRepo,
		orderRepo:        d.OrderRepo,
		subscriptionRepo: d.SubscriptionRepo,
		migrations:       d.Migrations,
		clock:            d.Clock,
		log:              d.Logger.Component("orders"),
		metrics:          d.Metrics,
	}
}

// CreateOrder crea la orden del usuario para la empresa.
//
// Retorna:
//   - domain.ErrPermissionDenied  si el usuario no tiene membresía en la empresa.
//   - domain.ErrModuleNotFound    si ningún módulo pedido existe o el catálogo no tiene tier Basic.
//   - domain.ErrInvalidInput      si faltan userID/companyID o el provisioner rechaza las líneas.
//   - domain.ErrPersistence       si la transacción no pudo confirmarse (ya con rollback).
//
// La notificación al servicio de migración ocurre después del commit y su fallo solo se registra.
func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, userID, companyID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if userID == "" || companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	ids := uniqueIDs(in.ModuleIDs)

	// Membresía y catálogo son lecturas independientes: se consultan en paralelo,
	// pero la membresía se evalúa primero para que el rechazo no dependa de los módulos.
	// El error del catálogo se guarda aparte: devolverlo desde el grupo cancelaría gctx
	// y ocultaría el resultado de la membresía.
	var (
		isMember   bool
		requested  []*entity.Module
		catalogErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := uc.membershipRepo.Exists(gctx, userID, companyID)
		if err != nil {
			return fmt.Errorf("verificar membresía: %w", err)
		}
		isMember = ok
		return nil
	})
	g.Go(func() error {
		if len(ids) == 0 {
			return nil
		}
		mods, err := uc.moduleRepo.GetByIDs(gctx, ids)
		if err != nil {
			catalogErr = fmt.Errorf("resolver módulos: %w", err)
			return nil
		}
		requested = mods
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !isMember {
		uc.metrics.OrderFailed("permission_denied")
		return nil, domain.ErrPermissionDenied
	}
	if catalogErr != nil {
		return nil, catalogErr
	}

	modules, err := uc.resolveModules(ctx, requested)
	if err != nil {
		uc.metrics.OrderFailed("not_found")
		return nil, err
	}

	now := uc.clock.Now()
	order := &entity.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		CompanyID:   companyID,
		SaleDate:    now,
		Status:      entity.OrderStatusApproved,
		TotalAmount: totalAmount(modules),
		CreatedAt:   now,
	}
	details := make([]*entity.OrderDetail, 0, len(modules))
	for _, m := range modules {
		details = append(details, &entity.OrderDetail{
			ID:       uuid.New().String(),
			OrderID:  order.ID,
			ModuleID: m.ID,
			Amount:   m.Price,
		})
	}
	order.Details = details

	var sub *entity.Subscription
	err = uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		subscriptionRepo repository.SubscriptionRepository,
	) error {
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		for _, d := range details {
			if err := orderRepo.CreateDetail(ctx, d); err != nil {
				return err
			}
		}
		s, err := uc.provisioner.ProvisionCredits(ctx, subscriptionRepo, order, details, companyID)
		if err != nil {
			return err
		}
		sub = s
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			uc.metrics.OrderFailed("validation")
			return nil, err
		}
		uc.metrics.OrderFailed("persistence")
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	uc.metrics.OrderCreated(len(sub.Credits))

	uc.log.Info().
		Str("order_id", order.ID).
		Str("company_id", companyID).
		Str("user_id", userID).
		Str("total", order.TotalAmount.String()).
		Int("modules", len(modules)).
		Msg("orden creada")

	uc.notifyMigrations(ctx, companyID, order.ID, modules)

	return mapper.Order(order, details, modules, sub), nil
}

// resolveModules deduplica por ID y agrega el módulo Basic del catálogo si no viene en el pedido.
func (uc *CreateOrderUseCase) resolveModules(ctx context.Context, requested []*entity.Module) ([]*entity.Module, error) {
	modules := make([]*entity.Module, 0, len(requested)+1)
	seen := make(map[string]struct{}, len(requested))
	hasBasic := false
	for _, m := range requested {
		if m == nil {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		modules = append(modules, m)
		if m.IsBasic() {
			hasBasic = true
		}
	}
	if len(modules) == 0 {
		return nil, domain.ErrModuleNotFound
	}
	if hasBasic {
		return modules, nil
	}

	basic, err := uc.moduleRepo.GetByType(ctx, entity.ModuleTypeBasic)
	if err != nil {
		return nil, fmt.Errorf("buscar módulo Basic: %w", err)
	}
	if basic == nil {
		return nil, domain.ErrModuleNotFound
	}
	return append(modules, basic), nil
}

// notifyMigrations avisa al servicio de migración con los tiers de la orden.
// El contexto se desacopla de la cancelación del request: la orden ya está confirmada.
func (uc *CreateOrderUseCase) notifyMigrations(ctx context.Context, companyID, orderID string, modules []*entity.Module) {
	if uc.migrations == nil {
		return
	}
	types := entitlement.ModuleTypes(modules)
	if err := uc.migrations.Trigger(context.WithoutCancel(ctx), companyID, types); err != nil {
		uc.log.Warn().Err(err).
			Str("order_id", orderID).
			Str("company_id", companyID).
			Msg("no se pudo notificar al servicio de migración")
	}
}

// GetOrder devuelve una orden de la empresa con sus líneas, módulos y suscripción.
// El usuario debe tener membresía en la empresa; una orden de otra empresa es ErrForbidden.
func (uc *CreateOrderUseCase) GetOrder(ctx context.Context, userID, companyID, orderID string) (*dto.OrderResponse, error) {
	order, details, modules, sub, err := uc.loadOrder(ctx, userID, companyID, orderID)
	if err != nil {
		return nil, err
	}
	return mapper.Order(order, details, modules, sub), nil
}

func (uc *CreateOrderUseCase) loadOrder(ctx context.Context, userID, companyID, orderID string) (
	*entity.Order, []*entity.OrderDetail, []*entity.Module, *entity.Subscription, error,
) {
	if userID == "" || companyID == "" || orderID == "" {
		return nil, nil, nil, nil, domain.ErrInvalidInput
	}
	ok, err := uc.membershipRepo.Exists(ctx, userID, companyID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("verificar membresía: %w", err)
	}
	if !ok {
		return nil, nil, nil, nil, domain.ErrPermissionDenied
	}
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("obtener orden: %w", err)
	}
	if order == nil {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	if order.CompanyID != companyID {
		return nil, nil, nil, nil, domain.ErrForbidden
	}
	details, err := uc.orderRepo.GetDetailsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("obtener líneas de la orden: %w", err)
	}
	ids := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ModuleID)
	}
	modules, err := uc.moduleRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("obtener módulos de la orden: %w", err)
	}
	sub, err := uc.subscriptionRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("obtener suscripción de la orden: %w", err)
	}
	order.Details = details
	return order, details, modules, sub, nil
}

// uniqueIDs quita vacíos y repetidos conservando el orden de entrada.
func uniqueIDs(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// totalAmount suma el precio de cada módulo distinto (una sola vez por módulo).
func totalAmount(modules []*entity.Module) decimal.Decimal {
	total := decimal.Zero
	for _, m := range modules {
		total = total.Add(m.Price)
	}
	return total
}
