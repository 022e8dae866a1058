package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// ── Módulos ───────────────────────────────────────────────────────────────────

// ModuleRepo implementa repository.ModuleRepository.
type ModuleRepo struct{ b binding }

// GetByIDs devuelve los módulos existentes entre ids, sin repetidos; los ids desconocidos se omiten.
func (r *ModuleRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Module, error) {
	out := make([]*entity.Module, 0, len(ids))
	err := r.b.read(ctx, func(d *dataset) error {
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if m, ok := d.modules[id]; ok {
				c := *m
				out = append(out, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByType obtiene el módulo de un tier. nil si el catálogo no lo tiene.
func (r *ModuleRepo) GetByType(ctx context.Context, moduleType entity.ModuleType) (*entity.Module, error) {
	var found *entity.Module
	err := r.b.read(ctx, func(d *dataset) error {
		for _, m := range d.modules {
			if m.Type != moduleType {
				continue
			}
			// Con varios módulos del mismo tier gana el más antiguo (y luego el menor ID), igual que en SQL.
			if found == nil || m.CreatedAt.Before(found.CreatedAt) ||
				(m.CreatedAt.Equal(found.CreatedAt) && m.ID < found.ID) {
				found = m
			}
		}
		return nil
	})
	if err != nil || found == nil {
		return nil, err
	}
	c := *found
	return &c, nil
}

// List devuelve el catálogo ordenado por nombre.
func (r *ModuleRepo) List(ctx context.Context) ([]*entity.Module, error) {
	var out []*entity.Module
	err := r.b.read(ctx, func(d *dataset) error {
		out = make([]*entity.Module, 0, len(d.modules))
		for _, m := range d.modules {
			c := *m
			out = append(out, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListSubmodules devuelve los submódulos de los módulos indicados.
func (r *ModuleRepo) ListSubmodules(ctx context.Context, moduleIDs []string) ([]*entity.Submodule, error) {
	want := make(map[string]struct{}, len(moduleIDs))
	for _, id := range moduleIDs {
		want[id] = struct{}{}
	}
	out := make([]*entity.Submodule, 0)
	err := r.b.read(ctx, func(d *dataset) error {
		for _, s := range d.submodules {
			if _, ok := want[s.ModuleID]; ok {
				c := *s
				out = append(out, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModuleID != out[j].ModuleID {
			return out[i].ModuleID < out[j].ModuleID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Upsert crea o reemplaza el módulo conservando su CreatedAt original.
func (r *ModuleRepo) Upsert(ctx context.Context, module *entity.Module) error {
	return r.b.write(ctx, func(d *dataset) error {
		c := *module
		if prev, ok := d.modules[c.ID]; ok {
			c.CreatedAt = prev.CreatedAt
		}
		d.modules[c.ID] = &c
		return nil
	})
}

// UpsertSubmodule crea o reemplaza un submódulo. El módulo padre debe existir.
func (r *ModuleRepo) UpsertSubmodule(ctx context.Context, submodule *entity.Submodule) error {
	return r.b.write(ctx, func(d *dataset) error {
		if _, ok := d.modules[submodule.ModuleID]; !ok {
			return fmt.Errorf("submódulo %s: %w", submodule.ID, domain.ErrModuleNotFound)
		}
		c := *submodule
		d.submodules[c.ID] = &c
		return nil
	})
}

// ── Empresas ──────────────────────────────────────────────────────────────────

// CompanyRepo implementa repository.CompanyRepository.
type CompanyRepo struct{ b binding }

// Create persiste una empresa. ID o NIT repetidos son ErrDuplicate.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	return r.b.write(ctx, func(d *dataset) error {
		if _, ok := d.companies[company.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, c := range d.companies {
			if c.NIT == company.NIT {
				return domain.ErrDuplicate
			}
		}
		c := *company
		d.companies[c.ID] = &c
		return nil
	})
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.b.read(ctx, func(d *dataset) error {
		if c, ok := d.companies[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

// GetByNIT obtiene una empresa por NIT.
func (r *CompanyRepo) GetByNIT(ctx context.Context, nit string) (*entity.Company, error) {
	var out *entity.Company
	err := r.b.read(ctx, func(d *dataset) error {
		for _, c := range d.companies {
			if c.NIT == nit {
				cp := *c
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// List lista empresas con paginación, las más recientes primero.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	var all []*entity.Company
	err := r.b.read(ctx, func(d *dataset) error {
		all = make([]*entity.Company, 0, len(d.companies))
		for _, c := range d.companies {
			cp := *c
			all = append(all, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

// ── Usuarios y membresías ─────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ b binding }

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return r.b.write(ctx, func(d *dataset) error {
		if _, ok := d.users[user.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, u := range d.users {
			if u.CompanyID == user.CompanyID && strings.EqualFold(u.Email, user.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		c := *user
		d.users[c.ID] = &c
		return nil
	})
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.find(ctx, func(u *entity.User) bool { return u.ID == id })
}

// GetByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.find(ctx, func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

// GetByEmailAndCompany obtiene un usuario por email dentro de una empresa.
func (r *UserRepo) GetByEmailAndCompany(ctx context.Context, email, companyID string) (*entity.User, error) {
	return r.find(ctx, func(u *entity.User) bool {
		return u.CompanyID == companyID && strings.EqualFold(u.Email, email)
	})
}

func (r *UserRepo) find(ctx context.Context, match func(u *entity.User) bool) (*entity.User, error) {
	var out *entity.User
	err := r.b.read(ctx, func(d *dataset) error {
		for _, u := range d.users {
			if match(u) && (out == nil || u.CreatedAt.Before(out.CreatedAt)) {
				out = u
			}
		}
		return nil
	})
	if err != nil || out == nil {
		return nil, err
	}
	c := *out
	return &c, nil
}

// MembershipRepo implementa repository.MembershipRepository.
type MembershipRepo struct{ b binding }

// Create persiste la membresía. Un segundo vínculo para el mismo par es ErrDuplicate.
func (r *MembershipRepo) Create(ctx context.Context, m *entity.Membership) error {
	return r.b.write(ctx, func(d *dataset) error {
		if _, ok := d.memberships[m.ID]; ok {
			return domain.ErrDuplicate
		}
		key := membershipKey{m.UserID, m.CompanyID}
		if _, ok := d.membershipIdx[key]; ok {
			return domain.ErrDuplicate
		}
		c := *m
		d.memberships[c.ID] = &c
		d.membershipIdx[key] = struct{}{}
		return nil
	})
}

// Exists indica si el usuario pertenece a la empresa.
func (r *MembershipRepo) Exists(ctx context.Context, userID, companyID string) (bool, error) {
	var ok bool
	err := r.b.read(ctx, func(d *dataset) error {
		_, ok = d.membershipIdx[membershipKey{userID, companyID}]
		return nil
	})
	return ok, err
}

// ── Órdenes ───────────────────────────────────────────────────────────────────

// OrderRepo implementa repository.OrderRepository.
type OrderRepo struct{ b binding }

// Create persiste la cabecera de la orden.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	return r.b.write(ctx, func(d *dataset) error {
		if _, ok := d.orders[order.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *order
		c.Details = nil
		d.orders[c.ID] = &c
		return nil
	})
}

// CreateDetail persiste una línea. La orden debe existir.
func (r *OrderRepo) CreateDetail(ctx context.Context, detail *entity.OrderDetail) error {
	return r.b.write(ctx, func(d *dataset) error {
		if _, ok := d.orders[detail.OrderID]; !ok {
			return fmt.Errorf("orden %s inexistente para la línea %s", detail.OrderID, detail.ID)
		}
		if _, ok := d.details[detail.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *detail
		d.details[c.ID] = &c
		return nil
	})
}

// GetByID obtiene una orden por ID.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.b.read(ctx, func(d *dataset) error {
		if o, ok := d.orders[id]; ok {
			c := *o
			out = &c
		}
		return nil
	})
	return out, err
}

// GetDetailsByOrderID lista las líneas de una orden.
func (r *OrderRepo) GetDetailsByOrderID(ctx context.Context, orderID string) ([]*entity.OrderDetail, error) {
	out := make([]*entity.OrderDetail, 0)
	err := r.b.read(ctx, func(d *dataset) error {
		for _, det := range d.details {
			if det.OrderID == orderID {
				c := *det
				out = append(out, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Suscripciones y créditos ──────────────────────────────────────────────────

// SubscriptionRepo implementa repository.SubscriptionRepository.
type SubscriptionRepo struct{ b binding }

// Create persiste la suscripción. Una orden admite una sola suscripción.
func (r *SubscriptionRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	return r.b.write(ctx, func(d *dataset) error {
		if _, ok := d.subscriptions[sub.ID]; ok {
			return domain.ErrDuplicate
		}
		// 1:1 con la orden
		for _, s := range d.subscriptions {
			if sub.OrderID != "" && s.OrderID == sub.OrderID {
				return domain.ErrDuplicate
			}
		}
		c := *sub
		c.Credits = nil
		d.subscriptions[c.ID] = &c
		return nil
	})
}

// CreateCredit persiste un crédito. La suscripción debe existir.
func (r *SubscriptionRepo) CreateCredit(ctx context.Context, credit *entity.Credit) error {
	return r.b.write(ctx, func(d *dataset) error {
		if _, ok := d.subscriptions[credit.SubscriptionID]; !ok {
			return fmt.Errorf("suscripción %s inexistente para el crédito %s", credit.SubscriptionID, credit.ID)
		}
		if _, ok := d.credits[credit.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *credit
		d.credits[c.ID] = &c
		return nil
	})
}

// GetByOrderID obtiene la suscripción de una orden junto con sus créditos.
func (r *SubscriptionRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.Subscription, error) {
	var out *entity.Subscription
	err := r.b.read(ctx, func(d *dataset) error {
		for _, s := range d.subscriptions {
			if s.OrderID != orderID {
				continue
			}
			c := *s
			c.Credits = make([]*entity.Credit, 0)
			for _, cr := range d.credits {
				if cr.SubscriptionID == s.ID {
					cc := *cr
					c.Credits = append(c.Credits, &cc)
				}
			}
			sort.Slice(c.Credits, func(i, j int) bool { return c.Credits[i].ID < c.Credits[j].ID })
			out = &c
			return nil
		}
		return nil
	})
	return out, err
}

// ── Entitlements ──────────────────────────────────────────────────────────────

// EntitlementRepo implementa repository.EntitlementRepository recorriendo
// Membership ⋈ Subscription ⋈ Credit ⋈ Module.
type EntitlementRepo struct{ b binding }

// ListActiveModules devuelve los módulos con crédito vigente en asOf, sin repetidos.
func (r *EntitlementRepo) ListActiveModules(ctx context.Context, userID, companyID string, asOf time.Time) ([]*entity.Module, error) {
	out := make([]*entity.Module, 0)
	err := r.b.read(ctx, func(d *dataset) error {
		if _, ok := d.membershipIdx[membershipKey{userID, companyID}]; !ok {
			return nil
		}
		active := make(map[string]struct{})
		for _, s := range d.subscriptions {
			if s.CompanyID == companyID && s.CoversAt(asOf) {
				active[s.ID] = struct{}{}
			}
		}
		if len(active) == 0 {
			return nil
		}
		seen := make(map[string]struct{})
		for _, cr := range d.credits {
			if _, ok := active[cr.SubscriptionID]; !ok || !cr.CoversAt(asOf) {
				continue
			}
			if _, ok := seen[cr.ModuleID]; ok {
				continue
			}
			m, ok := d.modules[cr.ModuleID]
			if !ok {
				continue
			}
			seen[cr.ModuleID] = struct{}{}
			c := *m
			out = append(out, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset > len(items) {
		offset = len(items)
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
