package entity

import "time"

// Estados válidos de Company.
const (
	CompanyStatusActive    = "active"
	CompanyStatusSuspended = "suspended"
	CompanyStatusInactive  = "inactive"
)

// Company representa una organización/tenant del sistema. Sus usuarios se
// vinculan vía Membership y sus módulos contratados vía Subscription.
type Company struct {
	ID        string
	Name      string
	NIT       string // identificación tributaria (con o sin dígito de verificación)
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive informa si la empresa puede operar.
func (c *Company) IsActive() bool {
	return c != nil && c.Status == CompanyStatusActive
}
