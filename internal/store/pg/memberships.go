// memberships.go — Implementación PostgreSQL de MembershipRepository.
package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
)

type membershipRepo struct {
	pool *pgxpool.Pool
}

func (r *membershipRepo) Get(ctx context.Context, companyID, userID string) (*repository.Membership, error) {
	const q = `
		SELECT id, company_id, user_id, role, created_at, updated_at
		FROM memberships
		WHERE company_id = $1 AND user_id = $2`
	var m repository.Membership
	err := r.pool.QueryRow(ctx, q, companyID, userID).Scan(
		&m.ID, &m.CompanyID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepo) Upsert(ctx context.Context, companyID, userID string, role repository.Role) (*repository.Membership, error) {
	// unique(company_id, user_id); la segunda escritura gana en role
	const q = `
		INSERT INTO memberships (id, company_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (company_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
		RETURNING id, company_id, user_id, role, created_at, updated_at`
	var m repository.Membership
	err := r.pool.QueryRow(ctx, q, uuid.NewString(), companyID, userID, role).Scan(
		&m.ID, &m.CompanyID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepo) DeleteByUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM memberships WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, q, userID)
	return err
}
