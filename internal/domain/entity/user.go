package entity

import "time"

// Roles válidos para User y Membership. Solo admin y compras pueden comprar módulos.
const (
	RoleAdmin   = "admin"
	RoleCompras = "compras"
	RoleMiembro = "miembro"
)

// Estados válidos de User.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User representa un usuario del sistema. CompanyID es la empresa con la que se
// registró; el acceso a otras empresas se concede con filas de Membership.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, compras, miembro
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
