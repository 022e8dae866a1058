package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrPersistence        = errors.New("no se pudo confirmar la escritura en la base de datos")
)

// Errores del flujo de órdenes y suscripciones. Envuelven a los genéricos para que
// errors.Is(err, ErrNotFound) / ErrForbidden / ErrInvalidInput sigan funcionando.
var (
	ErrModuleNotFound    = fmt.Errorf("%w: module not found", ErrNotFound)
	ErrPermissionDenied  = fmt.Errorf("%w: user does not exist at the company", ErrForbidden)
	ErrEmptyOrderDetails = fmt.Errorf("%w: la orden no tiene líneas de detalle", ErrInvalidInput)
)
