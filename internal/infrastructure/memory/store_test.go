package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
)

var (
	t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 = t0.AddDate(0, 1, 0)
)

func newOrder(id string) *entity.Order {
	return &entity.Order{ID: id, UserID: "u", CompanyID: "c", Status: entity.OrderStatusApproved, TotalAmount: decimal.NewFromInt(10)}
}

// ──────────────────────────────────────────────────────────────────────────────
// RunOrder: commit / rollback
// ──────────────────────────────────────────────────────────────────────────────

func TestRunOrder_CommitPublicaTodo(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	err := s.RunOrder(ctx, func(orders repository.OrderRepository, subs repository.SubscriptionRepository) error {
		require.NoError(t, orders.Create(ctx, newOrder("o1")))
		require.NoError(t, orders.CreateDetail(ctx, &entity.OrderDetail{ID: "d1", OrderID: "o1", ModuleID: "m1"}))
		require.NoError(t, subs.Create(ctx, &entity.Subscription{ID: "s1", CompanyID: "c", OrderID: "o1", Status: entity.SubscriptionStatusActive}))
		return subs.CreateCredit(ctx, &entity.Credit{ID: "cr1", SubscriptionID: "s1", ModuleID: "m1", OrderDetailID: "d1", IsActive: true})
	})
	require.NoError(t, err)

	o, err := s.Orders().GetByID(ctx, "o1")
	require.NoError(t, err)
	require.NotNil(t, o)
	sub, err := s.Subscriptions().GetByOrderID(ctx, "o1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Len(t, sub.Credits, 1)
}

func TestRunOrder_ErrorDescartaEscrituras(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunOrder(ctx, func(orders repository.OrderRepository, subs repository.SubscriptionRepository) error {
		require.NoError(t, orders.Create(ctx, newOrder("o1")))
		require.NoError(t, subs.Create(ctx, &entity.Subscription{ID: "s1", OrderID: "o1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	o, err := s.Orders().GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Nil(t, o)
	sub, err := s.Subscriptions().GetByOrderID(ctx, "o1")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestRunOrder_ContextoCanceladoAntesDelCommit(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())

	err := s.RunOrder(ctx, func(orders repository.OrderRepository, _ repository.SubscriptionRepository) error {
		if err := orders.Create(ctx, newOrder("o1")); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	o, err := s.Orders().GetByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Nil(t, o, "con el contexto cancelado no se confirma")
}

func TestRunOrder_IntegridadReferencial(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	err := s.RunOrder(ctx, func(orders repository.OrderRepository, _ repository.SubscriptionRepository) error {
		return orders.CreateDetail(ctx, &entity.OrderDetail{ID: "d1", OrderID: "sin-orden"})
	})
	assert.Error(t, err, "la línea exige orden existente")

	err = s.RunOrder(ctx, func(_ repository.OrderRepository, subs repository.SubscriptionRepository) error {
		return subs.CreateCredit(ctx, &entity.Credit{ID: "cr1", SubscriptionID: "sin-suscripcion"})
	})
	assert.Error(t, err, "el crédito exige suscripción existente")

	err = s.RunOrder(ctx, func(orders repository.OrderRepository, subs repository.SubscriptionRepository) error {
		if err := subs.Create(ctx, &entity.Subscription{ID: "s1", OrderID: "o1"}); err != nil {
			return err
		}
		return subs.Create(ctx, &entity.Subscription{ID: "s2", OrderID: "o1"})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "una sola suscripción por orden")
}

func TestRunOrder_Concurrente(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("o%d", i)
			err := s.RunOrder(ctx, func(orders repository.OrderRepository, _ repository.SubscriptionRepository) error {
				return orders.Create(ctx, newOrder(id))
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		o, err := s.Orders().GetByID(ctx, fmt.Sprintf("o%d", i))
		require.NoError(t, err)
		assert.NotNil(t, o)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Membresías, usuarios, empresas
// ──────────────────────────────────────────────────────────────────────────────

func TestMemberships_ParUnico(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	require.NoError(t, s.Memberships().Create(ctx, &entity.Membership{ID: "m1", UserID: "u", CompanyID: "c"}))
	err := s.Memberships().Create(ctx, &entity.Membership{ID: "m2", UserID: "u", CompanyID: "c"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	ok, err := s.Memberships().Exists(ctx, "u", "c")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Memberships().Exists(ctx, "u", "otra")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunRegistration_RollbackDelUsuario(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Memberships().Create(ctx, &entity.Membership{ID: "m1", UserID: "u1", CompanyID: "c"}))

	err := s.RunRegistration(ctx, func(users repository.UserRepository, members repository.MembershipRepository) error {
		if err := users.Create(ctx, &entity.User{ID: "u1", CompanyID: "c", Email: "a@b.co"}); err != nil {
			return err
		}
		return members.Create(ctx, &entity.Membership{ID: "m2", UserID: "u1", CompanyID: "c"})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	u, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, u, "el usuario se descarta junto con la membresía fallida")
}

func TestUsers_EmailSinDistinguirMayusculas(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, &entity.User{ID: "u1", CompanyID: "c", Email: "Ana@Acme.co"}))

	u, err := s.Users().GetByEmail(ctx, "ana@acme.co")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)

	err = s.Users().Create(ctx, &entity.User{ID: "u2", CompanyID: "c", Email: "ANA@ACME.CO"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestCompanies_ListPaginada(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Companies().Create(ctx, &entity.Company{
			ID: fmt.Sprintf("c%d", i), NIT: fmt.Sprintf("nit-%d", i), CreatedAt: t0.Add(time.Duration(i) * time.Hour),
		}))
	}

	page, err := s.Companies().List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c3", page[0].ID, "orden por fecha de creación descendente")
	assert.Equal(t, "c2", page[1].ID)

	rest, err := s.Companies().List(ctx, 10, 4)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	empty, err := s.Companies().List(ctx, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// ──────────────────────────────────────────────────────────────────────────────
// Módulos y entitlements
// ──────────────────────────────────────────────────────────────────────────────

func TestModules_GetByTypeElMasAntiguo(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Modules().Upsert(ctx, &entity.Module{ID: "b2", Name: "Basic Plus", Type: entity.ModuleTypeBasic, CreatedAt: t1}))
	require.NoError(t, s.Modules().Upsert(ctx, &entity.Module{ID: "b1", Name: "Basic", Type: entity.ModuleTypeBasic, CreatedAt: t0}))

	m, err := s.Modules().GetByType(ctx, entity.ModuleTypeBasic)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "b1", m.ID)

	none, err := s.Modules().GetByType(ctx, entity.ModuleTypeErp)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestModules_SubmoduloRequiereModulo(t *testing.T) {
	s := memory.New()
	err := s.Modules().UpsertSubmodule(context.Background(), &entity.Submodule{ID: "s", ModuleID: "no-existe", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestModules_CopiasAisladas(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Modules().Upsert(ctx, &entity.Module{ID: "m", Name: "Pos", Type: entity.ModuleTypePos}))

	got, err := s.Modules().GetByIDs(ctx, []string{"m"})
	require.NoError(t, err)
	got[0].Name = "mutado"

	again, err := s.Modules().GetByIDs(ctx, []string{"m", "m"})
	require.NoError(t, err)
	require.Len(t, again, 1, "ids repetidos devuelven un solo módulo")
	assert.Equal(t, "Pos", again[0].Name, "mutar el resultado no altera el store")
}

func TestEntitlements_ReglasDeVentanaYEstado(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	for _, m := range []*entity.Module{
		{ID: "acc", Name: "Accounting", Type: entity.ModuleTypeAccounting},
		{ID: "pos", Name: "Pos", Type: entity.ModuleTypePos},
		{ID: "erp", Name: "Erp", Type: entity.ModuleTypeErp},
	} {
		require.NoError(t, s.Modules().Upsert(ctx, m))
	}
	require.NoError(t, s.Memberships().Create(ctx, &entity.Membership{ID: "m", UserID: "u", CompanyID: "c"}))

	err := s.RunOrder(ctx, func(_ repository.OrderRepository, subs repository.SubscriptionRepository) error {
		for _, sub := range []*entity.Subscription{
			{ID: "activa", CompanyID: "c", OrderID: "o1", Status: entity.SubscriptionStatusActive, StartDate: t0, EndDate: t1},
			{ID: "inactiva", CompanyID: "c", OrderID: "o2", Status: entity.SubscriptionStatusInactive, StartDate: t0, EndDate: t1},
			{ID: "otra-empresa", CompanyID: "x", OrderID: "o3", Status: entity.SubscriptionStatusActive, StartDate: t0, EndDate: t1},
		} {
			if err := subs.Create(ctx, sub); err != nil {
				return err
			}
		}
		for _, cr := range []*entity.Credit{
			{ID: "1", SubscriptionID: "activa", ModuleID: "acc", IsActive: true, StartDate: t0, EndDate: t1},
			{ID: "2", SubscriptionID: "activa", ModuleID: "pos", IsActive: false, StartDate: t0, EndDate: t1},
			{ID: "3", SubscriptionID: "inactiva", ModuleID: "erp", IsActive: true, StartDate: t0, EndDate: t1},
			{ID: "4", SubscriptionID: "otra-empresa", ModuleID: "erp", IsActive: true, StartDate: t0, EndDate: t1},
		} {
			if err := subs.CreateCredit(ctx, cr); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	mods, err := s.Entitlements().ListActiveModules(ctx, "u", "c", t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "acc", mods[0].ID, "solo crédito activo en suscripción activa de la empresa")

	mods, err = s.Entitlements().ListActiveModules(ctx, "u", "c", t1)
	require.NoError(t, err)
	assert.Empty(t, mods, "fin de ventana excluido")

	mods, err = s.Entitlements().ListActiveModules(ctx, "otro", "c", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, mods)
	assert.Empty(t, mods, "sin membresía no hay módulos")
}

func TestLecturas_ContextoCancelado(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Modules().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	err = s.Orders().Create(ctx, newOrder("o"))
	assert.ErrorIs(t, err, context.Canceled)
}
