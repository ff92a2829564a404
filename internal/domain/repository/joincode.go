package repository

import (
	"context"
	"time"
)

// JoinCode representa un código de auto-admisión a una empresa.
// Solo se persiste el hash SHA-256 del código normalizado (upper-case).
type JoinCode struct {
	ID        string
	CompanyID string
	Role      Role
	CodeHash  string
	Uses      int
	MaxUses   *int       // nil = ilimitado
	ExpiresAt *time.Time // nil = no expira
	RevokedAt *time.Time
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Redeemable indica si el código sigue siendo canjeable en el instante dado.
func (c *JoinCode) Redeemable(now time.Time) bool {
	if c.RevokedAt != nil {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	if c.MaxUses != nil && c.Uses >= *c.MaxUses {
		return false
	}
	return true
}

// CreateJoinCodeInput contiene los datos para emitir un código.
type CreateJoinCodeInput struct {
	CompanyID string
	Role      Role
	CodeHash  string
	MaxUses   *int
	ExpiresAt *time.Time
	CreatedBy string
}

// RedeemResult es el resultado de un canje exitoso.
type RedeemResult struct {
	CompanyID    string
	Role         Role
	MembershipID string
}

// JoinCodeRepository define operaciones sobre join codes.
type JoinCodeRepository interface {
	// Create emite un código nuevo.
	Create(ctx context.Context, input CreateJoinCodeInput) (*JoinCode, error)

	// GetActiveByHash busca el código activo más reciente con ese hash
	// (los revocados se ignoran; ante colisión gana el emitido más tarde).
	// Retorna ErrNotFound si no hay ninguno.
	GetActiveByHash(ctx context.Context, codeHash string) (*JoinCode, error)

	// Redeem canjea el código para el usuario en UNA transacción:
	// clasifica el estado del código (ErrNotFound / ErrCodeExpired),
	// incrementa `uses` con un UPDATE condicional (cero filas afectadas
	// = ErrCodeExhausted, incluso bajo canjes concurrentes) y hace
	// upsert de la membresía antes de commitear.
	Redeem(ctx context.Context, codeHash, userID string) (*RedeemResult, error)

	// Revoke marca el código como revocado. Retorna ErrNotFound si no existe
	// o no pertenece a la empresa indicada.
	Revoke(ctx context.Context, companyID, codeID string) error
}
