package entity

import "time"

// Estados de Subscription.
const (
	SubscriptionStatusActive   = "Active"
	SubscriptionStatusInactive = "Inactive"
)

// Subscription agrupa los créditos abiertos por una orden para una empresa.
// La ventana de validez es semiabierta: [StartDate, EndDate).
type Subscription struct {
	ID        string
	CompanyID string
	Status    string
	StartDate time.Time
	EndDate   time.Time
	OrderID   string
	Credits   []*Credit
	CreatedAt time.Time
}

// CoversAt informa si la suscripción está activa y t cae dentro de su ventana.
func (s *Subscription) CoversAt(t time.Time) bool {
	if s == nil || s.Status != SubscriptionStatusActive {
		return false
	}
	return withinWindow(t, s.StartDate, s.EndDate)
}

// Credit concede un módulo a una suscripción durante [StartDate, EndDate).
// Nace de exactamente una línea de orden (OrderDetailID).
type Credit struct {
	ID             string
	ModuleID       string
	SubscriptionID string
	IsActive       bool
	StartDate      time.Time
	EndDate        time.Time
	OrderDetailID  string
}

// CoversAt informa si el crédito está activo y t cae dentro de su ventana.
func (c *Credit) CoversAt(t time.Time) bool {
	if c == nil || !c.IsActive {
		return false
	}
	return withinWindow(t, c.StartDate, c.EndDate)
}

func withinWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
