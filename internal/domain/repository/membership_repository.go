package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// MembershipRepository persiste el vínculo usuario ↔ empresa ↔ rol.
type MembershipRepository interface {
	Create(ctx context.Context, membership *entity.Membership) error
	// Exists informa si hay al menos una membresía para el par (userID, companyID).
	Exists(ctx context.Context, userID, companyID string) (bool, error)
}
