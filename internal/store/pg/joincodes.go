// joincodes.go — Implementación PostgreSQL de JoinCodeRepository.
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
)

type joinCodeRepo struct {
	pool *pgxpool.Pool
}

const joinCodeColumns = `
	id, company_id, role, code_hash, uses, max_uses,
	expires_at, revoked_at, created_by, created_at, updated_at`

func (r *joinCodeRepo) Create(ctx context.Context, input repository.CreateJoinCodeInput) (*repository.JoinCode, error) {
	const q = `
		INSERT INTO company_join_codes (
			id, company_id, role, code_hash, uses, max_uses,
			expires_at, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, 0, $5, $6, $7, NOW(), NOW())
		RETURNING` + joinCodeColumns
	row := r.pool.QueryRow(ctx, q,
		uuid.NewString(), input.CompanyID, input.Role, input.CodeHash,
		input.MaxUses, input.ExpiresAt, input.CreatedBy,
	)
	return scanJoinCode(row)
}

func (r *joinCodeRepo) GetActiveByHash(ctx context.Context, codeHash string) (*repository.JoinCode, error) {
	// ante colisión de hash gana el emitido más tarde
	const q = `SELECT` + joinCodeColumns + `
		FROM company_join_codes
		WHERE code_hash = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`
	return scanJoinCode(r.pool.QueryRow(ctx, q, codeHash))
}

func (r *joinCodeRepo) Redeem(ctx context.Context, codeHash, userID string) (*repository.RedeemResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. Clasificar el estado del código (not found / expirado)
	const qGet = `SELECT` + joinCodeColumns + `
		FROM company_join_codes
		WHERE code_hash = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`
	code, err := scanJoinCode(tx.QueryRow(ctx, qGet, codeHash))
	if err != nil {
		return nil, err
	}
	if code.ExpiresAt != nil && !code.ExpiresAt.After(time.Now()) {
		return nil, repository.ErrCodeExpired
	}

	// 2. Incremento condicional: cero filas afectadas = agotado,
	//    también cuando dos canjes compiten por el último cupo.
	const qInc = `
		UPDATE company_join_codes
		SET uses = uses + 1, updated_at = NOW()
		WHERE id = $1
		  AND revoked_at IS NULL
		  AND (max_uses IS NULL OR uses < max_uses)`
	tag, err := tx.Exec(ctx, qInc, code.ID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrCodeExhausted
	}

	// 3. Upsert de la membresía antes de commitear
	const qMem = `
		INSERT INTO memberships (id, company_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (company_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
		RETURNING id`
	var membershipID string
	if err := tx.QueryRow(ctx, qMem, uuid.NewString(), code.CompanyID, userID, code.Role).Scan(&membershipID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &repository.RedeemResult{
		CompanyID:    code.CompanyID,
		Role:         code.Role,
		MembershipID: membershipID,
	}, nil
}

func (r *joinCodeRepo) Revoke(ctx context.Context, companyID, codeID string) error {
	const q = `
		UPDATE company_join_codes
		SET revoked_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND revoked_at IS NULL`
	tag, err := r.pool.Exec(ctx, q, codeID, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanJoinCode(row pgx.Row) (*repository.JoinCode, error) {
	var c repository.JoinCode
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Role, &c.CodeHash, &c.Uses, &c.MaxUses,
		&c.ExpiresAt, &c.RevokedAt, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
