package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.ModuleRepository = (*ModuleRepo)(nil)

// ModuleRepo catálogo de módulos sobre PostgreSQL (usable con pool o tx).
type ModuleRepo struct {
	q Querier
}

// NewModuleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewModuleRepository(q Querier) *ModuleRepo {
	return &ModuleRepo{q: q}
}

const moduleColumns = `id, name, type, price, created_at`

// GetByIDs devuelve los módulos existentes; los ids desconocidos no generan error.
func (r *ModuleRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Module, error) {
	if len(ids) == 0 {
		return []*entity.Module{}, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE id::text = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, fmt.Errorf("query modules by ids: %w", err)
	}
	return scanModules(rows)
}

// GetByType devuelve el módulo más antiguo del tier, o (nil, nil).
func (r *ModuleRepo) GetByType(ctx context.Context, moduleType entity.ModuleType) (*entity.Module, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE type = $1 ORDER BY created_at, id LIMIT 1`,
		string(moduleType))
	m, err := scanModule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get module by type: %w", err)
	}
	return m, nil
}

// List devuelve el catálogo completo ordenado por nombre.
func (r *ModuleRepo) List(ctx context.Context) ([]*entity.Module, error) {
	rows, err := r.q.Query(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return scanModules(rows)
}

// ListSubmodules devuelve los submódulos de los módulos indicados.
func (r *ModuleRepo) ListSubmodules(ctx context.Context, moduleIDs []string) ([]*entity.Submodule, error) {
	out := make([]*entity.Submodule, 0)
	if len(moduleIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, module_id, name FROM submodules WHERE module_id::text = ANY($1) ORDER BY module_id, name`,
		moduleIDs)
	if err != nil {
		return nil, fmt.Errorf("list submodules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s entity.Submodule
		if err := rows.Scan(&s.ID, &s.ModuleID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan submodule: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Upsert inserta o actualiza nombre, tier y precio (created_at se conserva).
func (r *ModuleRepo) Upsert(ctx context.Context, m *entity.Module) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO modules (id, name, type, price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, type = EXCLUDED.type, price = EXCLUDED.price`,
		m.ID, m.Name, string(m.Type), m.Price, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert module: %w", err)
	}
	return nil
}

// UpsertSubmodule inserta o renombra un submódulo.
func (r *ModuleRepo) UpsertSubmodule(ctx context.Context, s *entity.Submodule) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO submodules (id, module_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, module_id = EXCLUDED.module_id`,
		s.ID, s.ModuleID, s.Name,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("submódulo %s: %w", s.ID, domain.ErrModuleNotFound)
		}
		return fmt.Errorf("upsert submodule: %w", err)
	}
	return nil
}

func scanModule(row pgx.Row) (*entity.Module, error) {
	var m entity.Module
	var t string
	if err := row.Scan(&m.ID, &m.Name, &t, &m.Price, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Type = entity.ModuleType(t)
	return &m, nil
}

func scanModules(rows pgx.Rows) ([]*entity.Module, error) {
	defer rows.Close()
	out := make([]*entity.Module, 0)
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
