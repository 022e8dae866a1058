package entitlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/entitlement"
	"github.com/jhoicas/backoffice-api/internal/application/orders"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/application/subscription"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/metrics"
)

const (
	userID    = "00000000-0000-0000-0000-000000000001"
	companyID = "00000000-0000-0000-0000-000000000002"

	basicID      = "10000000-0000-0000-0000-000000000001"
	accountingID = "10000000-0000-0000-0000-000000000002"
	posID        = "10000000-0000-0000-0000-000000000003"
)

// manualClock reloj que los tests adelantan a mano.
type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

type env struct {
	store    *memory.Store
	clock    *manualClock
	orders   *orders.CreateOrderUseCase
	resolver *entitlement.Resolver
	metrics  *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	for _, m := range []*entity.Module{
		{ID: basicID, Name: "Basic", Type: entity.ModuleTypeBasic, Price: decimal.NewFromInt(49900)},
		{ID: accountingID, Name: "Accounting", Type: entity.ModuleTypeAccounting, Price: decimal.NewFromInt(89900)},
		{ID: posID, Name: "Pos", Type: entity.ModuleTypePos, Price: decimal.NewFromInt(69900)},
	} {
		require.NoError(t, store.Modules().Upsert(ctx, m))
	}
	store.SeedSubmodules(
		&entity.Submodule{ID: "sub-asientos", ModuleID: accountingID, Name: "Asientos"},
		&entity.Submodule{ID: "sub-reportes", ModuleID: accountingID, Name: "Reportes"},
		&entity.Submodule{ID: "sub-caja", ModuleID: posID, Name: "Caja"},
	)
	require.NoError(t, store.Memberships().Create(ctx, &entity.Membership{
		ID: "membership-1", UserID: userID, CompanyID: companyID, RoleID: entity.RoleAdmin,
	}))

	clock := &manualClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	m := metrics.New(nil)
	uc := orders.NewCreateOrderUseCase(orders.Deps{
		TxRunner:         store,
		Provisioner:      subscription.NewCreditProvisioner(clock),
		ModuleRepo:       store.Modules(),
		MembershipRepo:   store.Memberships(),
		OrderRepo:        store.Orders(),
		SubscriptionRepo: store.Subscriptions(),
		Clock:            clock,
	})
	return &env{
		store:    store,
		clock:    clock,
		orders:   uc,
		resolver: entitlement.NewResolver(store.Entitlements(), store.Modules(), clock, m),
		metrics:  m,
	}
}

func (e *env) buy(t *testing.T, ids ...string) *dto.OrderResponse {
	t.Helper()
	resp, err := e.orders.CreateOrder(context.Background(), userID, companyID, dto.CreateOrderRequest{ModuleIDs: ids})
	require.NoError(t, err)
	return resp
}

func names(modules []*entity.Module) []string {
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, m.Name)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo: compra de Accounting y vencimiento al mes
// ──────────────────────────────────────────────────────────────────────────────

func TestResolveActiveModules_EscenarioCompraYVencimiento(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.buy(t, accountingID)

	active, err := e.resolver.ResolveActiveModules(ctx, userID, companyID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Accounting", "Basic"}, names(active))

	// Un día antes del vencimiento sigue activo.
	e.clock.now = time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)
	active, err = e.resolver.ResolveActiveModules(ctx, userID, companyID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Accounting", "Basic"}, names(active))

	// En el instante de fin la ventana ya está cerrada.
	e.clock.now = time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)
	active, err = e.resolver.ResolveActiveModules(ctx, userID, companyID)
	require.NoError(t, err)
	assert.NotNil(t, active, "sin módulos activos se devuelve lista vacía, no nil")
	assert.Empty(t, active)
}

func TestResolveActiveModules_SinMembresia_ListaVacia(t *testing.T) {
	e := newEnv(t)
	e.buy(t, accountingID)

	active, err := e.resolver.ResolveActiveModules(context.Background(), "usuario-ajeno", companyID)
	require.NoError(t, err, "sin membresía no es error")
	assert.NotNil(t, active)
	assert.Empty(t, active)
}

func TestResolveActiveModules_SinSuscripciones_ListaVacia(t *testing.T) {
	e := newEnv(t)

	active, err := e.resolver.ResolveActiveModules(context.Background(), userID, companyID)
	require.NoError(t, err)
	assert.NotNil(t, active)
	assert.Empty(t, active)
}

func TestResolveActiveModules_OrdenesSolapadas_SinRepetidos(t *testing.T) {
	e := newEnv(t)
	e.buy(t, accountingID)
	e.clock.now = e.clock.now.Add(72 * time.Hour)
	e.buy(t, accountingID, posID)

	active, err := e.resolver.ResolveActiveModules(context.Background(), userID, companyID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Accounting", "Basic", "Pos"}, names(active), "cada módulo aparece una sola vez")

	types, err := e.resolver.ActiveModuleTypes(context.Background(), userID, companyID)
	require.NoError(t, err)
	assert.Equal(t, []entity.ModuleType{
		entity.ModuleTypeAccounting, entity.ModuleTypeBasic, entity.ModuleTypePos,
	}, types)
}

func TestResolveActiveModulesAt_ConsultaHistorica(t *testing.T) {
	e := newEnv(t)
	e.buy(t, posID)
	ctx := context.Background()

	before, err := e.resolver.ResolveActiveModulesAt(ctx, userID, companyID, e.clock.now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, before, "antes de la compra no hay módulos")

	during, err := e.resolver.ResolveActiveModulesAt(ctx, userID, companyID, e.clock.now.Add(10*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"Basic", "Pos"}, names(during))
}

func TestResolveActiveModules_ArgumentosVacios(t *testing.T) {
	e := newEnv(t)
	_, err := e.resolver.ResolveActiveModules(context.Background(), "", companyID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListEntitlements_AnidaSubmodulos(t *testing.T) {
	e := newEnv(t)
	e.buy(t, accountingID)
	ctx := context.Background()

	plain, err := e.resolver.ListEntitlements(ctx, userID, companyID, false)
	require.NoError(t, err)
	require.Len(t, plain.Items, 2)
	for _, item := range plain.Items {
		assert.Nil(t, item.Submodules)
	}

	nested, err := e.resolver.ListEntitlements(ctx, userID, companyID, true)
	require.NoError(t, err)
	require.Len(t, nested.Items, 2)
	assert.Equal(t, "Accounting", nested.Items[0].Name)
	require.Len(t, nested.Items[0].Submodules, 2)
	assert.Equal(t, "Asientos", nested.Items[0].Submodules[0].Name)
	assert.Empty(t, nested.Items[1].Submodules, "Basic no tiene submódulos sembrados")
}

func TestListEntitlements_SinModulos_ItemsVacioNoNil(t *testing.T) {
	e := newEnv(t)

	out, err := e.resolver.ListEntitlements(context.Background(), userID, companyID, true)
	require.NoError(t, err)
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
}

func TestModuleTypes_DeduplicaYOrdena(t *testing.T) {
	types := entitlement.ModuleTypes([]*entity.Module{
		{Type: entity.ModuleTypePos},
		nil,
		{Type: entity.ModuleTypeBasic},
		{Type: entity.ModuleTypePos},
	})
	assert.Equal(t, []entity.ModuleType{entity.ModuleTypeBasic, entity.ModuleTypePos}, types)
	assert.NotNil(t, entitlement.ModuleTypes(nil))
}

var _ ports.Clock = (*manualClock)(nil)
