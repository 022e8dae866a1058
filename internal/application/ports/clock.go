package ports

import "time"

// Clock es la fuente de tiempo de los casos de uso. Las ventanas de suscripción y
// las consultas de entitlement dependen de "ahora"; inyectarlo las hace deterministas en tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapta una función a Clock.
type ClockFunc func() time.Time

// Now implementa Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock usa el reloj del sistema en UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// FixedClock devuelve siempre t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
