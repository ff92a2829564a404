// invites.go — Implementación PostgreSQL de InviteRepository.
package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
)

type inviteRepo struct {
	pool *pgxpool.Pool
}

func (r *inviteRepo) CreateWithMembership(ctx context.Context, input repository.CreateInviteInput) (*repository.Invite, *repository.Membership, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	// 1. Registrar la invitación
	const qInv = `
		INSERT INTO membership_invites (
			id, company_id, email, role, status, invite_token,
			user_id, invited_by, notes, responded_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, company_id, email, role, status, invite_token,
			user_id, invited_by, notes, responded_at, created_at`
	var inv repository.Invite
	err = tx.QueryRow(ctx, qInv,
		uuid.NewString(), input.CompanyID, input.Email, input.Role, input.Status,
		input.InviteToken, input.UserID, input.InvitedBy, input.Notes, input.RespondedAt,
	).Scan(
		&inv.ID, &inv.CompanyID, &inv.Email, &inv.Role, &inv.Status, &inv.InviteToken,
		&inv.UserID, &inv.InvitedBy, &inv.Notes, &inv.RespondedAt, &inv.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, nil, repository.ErrConflict
	}
	if err != nil {
		return nil, nil, err
	}

	// 2. Membresía en la MISMA transacción: o ambas filas o ninguna
	const qMem = `
		INSERT INTO memberships (id, company_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (company_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
		RETURNING id, company_id, user_id, role, created_at, updated_at`
	var m repository.Membership
	err = tx.QueryRow(ctx, qMem, uuid.NewString(), input.CompanyID, input.UserID, input.Role).Scan(
		&m.ID, &m.CompanyID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &inv, &m, nil
}

func (r *inviteRepo) DeleteByUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM membership_invites WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, q, userID)
	return err
}
