// Package memory implementa todos los puertos de persistencia sobre mapas en memoria.
// Se usa con DB_DRIVER=memory (demo, desarrollo local) y como fake en los tests.
//
// Las escrituras de RunOrder/RunRegistration se aplican sobre una copia del estado y
// solo se publican si fn retorna nil, con la misma semántica de rollback que la transacción pgx.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

type membershipKey struct{ userID, companyID string }

// dataset es el estado completo. Las entidades guardadas son copias y nunca se mutan
// en sitio, así que clonar los mapas (copia superficial) basta para aislar una transacción.
type dataset struct {
	modules       map[string]*entity.Module
	submodules    map[string]*entity.Submodule
	companies     map[string]*entity.Company
	users         map[string]*entity.User
	memberships   map[string]*entity.Membership
	membershipIdx map[membershipKey]struct{}
	orders        map[string]*entity.Order
	details       map[string]*entity.OrderDetail
	subscriptions map[string]*entity.Subscription
	credits       map[string]*entity.Credit
}

func newDataset() *dataset {
	return &dataset{
		modules:       make(map[string]*entity.Module),
		submodules:    make(map[string]*entity.Submodule),
		companies:     make(map[string]*entity.Company),
		users:         make(map[string]*entity.User),
		memberships:   make(map[string]*entity.Membership),
		membershipIdx: make(map[membershipKey]struct{}),
		orders:        make(map[string]*entity.Order),
		details:       make(map[string]*entity.OrderDetail),
		subscriptions: make(map[string]*entity.Subscription),
		credits:       make(map[string]*entity.Credit),
	}
}

func (d *dataset) clone() *dataset {
	return &dataset{
		modules:       maps.Clone(d.modules),
		submodules:    maps.Clone(d.submodules),
		companies:     maps.Clone(d.companies),
		users:         maps.Clone(d.users),
		memberships:   maps.Clone(d.memberships),
		membershipIdx: maps.Clone(d.membershipIdx),
		orders:        maps.Clone(d.orders),
		details:       maps.Clone(d.details),
		subscriptions: maps.Clone(d.subscriptions),
		credits:       maps.Clone(d.credits),
	}
}

// Store guarda el estado y entrega los repositorios.
type Store struct {
	mu   sync.RWMutex
	data *dataset
}

// New crea un store vacío.
func New() *Store {
	return &Store{data: newDataset()}
}

// binding ata un repositorio al store (lecturas/escrituras con lock) o a una
// transacción en curso (tx != nil, el lock ya lo tiene RunOrder/RunRegistration).
type binding struct {
	s  *Store
	tx *dataset
}

func (b binding) read(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	return fn(b.s.data)
}

func (b binding) write(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	staged := b.s.data.clone()
	if err := fn(staged); err != nil {
		return err
	}
	b.s.data = staged
	return nil
}

func (s *Store) bind() binding { return binding{s: s} }

// Modules repositorio del catálogo.
func (s *Store) Modules() *ModuleRepo { return &ModuleRepo{s.bind()} }

// Companies repositorio de empresas.
func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{s.bind()} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s.bind()} }

// Memberships repositorio de membresías.
func (s *Store) Memberships() *MembershipRepo { return &MembershipRepo{s.bind()} }

// Orders repositorio de órdenes.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s.bind()} }

// Subscriptions repositorio de suscripciones y créditos.
func (s *Store) Subscriptions() *SubscriptionRepo { return &SubscriptionRepo{s.bind()} }

// Entitlements resolución de módulos activos.
func (s *Store) Entitlements() *EntitlementRepo { return &EntitlementRepo{s.bind()} }

// RunOrder ejecuta fn con repositorios de órdenes y suscripciones ligados a una copia del estado.
// La copia se publica solo si fn retorna nil y ctx sigue vigente; en otro caso se descarta.
// fn no debe usar repositorios del store fuera de los recibidos (el lock de escritura está tomado).
func (s *Store) RunOrder(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	subscriptionRepo repository.SubscriptionRepository,
) error) error {
	return s.run(ctx, func(tx binding) error {
		return fn(&OrderRepo{tx}, &SubscriptionRepo{tx})
	})
}

// RunRegistration igual que RunOrder para usuario + membresía.
func (s *Store) RunRegistration(ctx context.Context, fn func(
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
) error) error {
	return s.run(ctx, func(tx binding) error {
		return fn(&UserRepo{tx}, &MembershipRepo{tx})
	})
}

func (s *Store) run(ctx context.Context, fn func(tx binding) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(binding{s: s, tx: staged}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = staged
	return nil
}

// SeedSubmodules agrega submódulos directamente (fixtures de tests).
func (s *Store) SeedSubmodules(subs ...*entity.Submodule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range subs {
		c := *sub
		s.data.submodules[c.ID] = &c
	}
}

var (
	_ repository.ModuleRepository       = (*ModuleRepo)(nil)
	_ repository.CompanyRepository      = (*CompanyRepo)(nil)
	_ repository.UserRepository         = (*UserRepo)(nil)
	_ repository.MembershipRepository   = (*MembershipRepo)(nil)
	_ repository.OrderRepository        = (*OrderRepo)(nil)
	_ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)
	_ repository.EntitlementRepository  = (*EntitlementRepo)(nil)
)
