package repository

import (
	"context"
	"time"
)

// Role es el rol de un miembro dentro de una empresa.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleViewer   Role = "viewer"
)

// ValidRole verifica que el rol pertenezca al conjunto fijo.
func ValidRole(r string) bool {
	switch Role(r) {
	case RoleOwner, RoleAdmin, RoleEmployee, RoleViewer:
		return true
	}
	return false
}

// CanInvite indica si el rol autoriza a administrar la membresía de la empresa.
func (r Role) CanInvite() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Membership representa la pertenencia de un usuario a una empresa.
// Unicidad: una fila por (CompanyID, UserID).
type Membership struct {
	ID        string
	CompanyID string
	UserID    string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MembershipRepository define operaciones sobre membresías.
type MembershipRepository interface {
	// Get busca la membresía de un usuario en una empresa.
	// Retorna ErrNotFound si no existe.
	Get(ctx context.Context, companyID, userID string) (*Membership, error)

	// Upsert inserta o actualiza la membresía (conflict-safe sobre company+user).
	// La segunda escritura gana en role/updated_at.
	Upsert(ctx context.Context, companyID, userID string, role Role) (*Membership, error)

	// DeleteByUser elimina todas las membresías de un usuario (teardown).
	DeleteByUser(ctx context.Context, userID string) error
}
