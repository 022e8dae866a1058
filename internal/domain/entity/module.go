package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModuleType es el nivel (tier) de un módulo del catálogo.
type ModuleType string

// Tiers del catálogo. ModuleTypeBasic es obligatorio en toda orden.
const (
	ModuleTypeBasic           ModuleType = "Basic"
	ModuleTypeAuth            ModuleType = "Auth"
	ModuleTypeAccounting      ModuleType = "Accounting"
	ModuleTypePos             ModuleType = "Pos"
	ModuleTypeCustomerSupport ModuleType = "CustomerSupport"
	ModuleTypeErp             ModuleType = "Erp"
)

// Valid informa si t es un tier conocido.
func (t ModuleType) Valid() bool {
	switch t {
	case ModuleTypeBasic, ModuleTypeAuth, ModuleTypeAccounting,
		ModuleTypePos, ModuleTypeCustomerSupport, ModuleTypeErp:
		return true
	}
	return false
}

// Module es un producto del catálogo (dato de referencia, inmutable para este servicio).
type Module struct {
	ID        string
	Name      string
	Type      ModuleType
	Price     decimal.Decimal
	CreatedAt time.Time
}

// IsBasic informa si el módulo pertenece al tier Basic.
func (m *Module) IsBasic() bool {
	return m != nil && m.Type == ModuleTypeBasic
}

// Submodule es una funcionalidad que depende de un Module.
type Submodule struct {
	ID       string
	ModuleID string
	Name     string
}
