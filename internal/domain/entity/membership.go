package entity

import "time"

// Membership vincula un usuario con una empresa y el rol que tiene en ella.
// Un usuario puede tener cero, una o varias membresías.
type Membership struct {
	ID        string
	UserID    string
	CompanyID string
	RoleID    string
	CreatedAt time.Time
}
