// users.go — Implementación PostgreSQL de UserRepository.
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `
	id, email, password_hash, email_verified,
	first_name, last_name, phone, address,
	metadata, invited_company_id, created_at, updated_at`

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	// lookup indexado sobre lower(email); ver índice en la migración
	const q = `SELECT` + userColumns + `
		FROM app_user
		WHERE lower(email) = lower($1)`
	return r.scanOne(r.pool.QueryRow(ctx, q, strings.TrimSpace(email)))
}

func (r *userRepo) GetByID(ctx context.Context, userID string) (*repository.User, error) {
	const q = `SELECT` + userColumns + `
		FROM app_user
		WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, userID))
}

func (r *userRepo) Create(ctx context.Context, input repository.CreateUserInput) (*repository.User, error) {
	const q = `
		INSERT INTO app_user (
			id, email, password_hash, email_verified,
			first_name, last_name, phone, address,
			metadata, invited_company_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING` + userColumns

	meta, err := marshalMeta(input.Metadata)
	if err != nil {
		return nil, err
	}
	var invitedBy *string
	if input.InvitedCompanyID != "" {
		invitedBy = &input.InvitedCompanyID
	}

	row := r.pool.QueryRow(ctx, q,
		uuid.NewString(), strings.TrimSpace(input.Email), input.PasswordHash, input.EmailVerified,
		input.FirstName, input.LastName, input.Phone, input.Address,
		meta, invitedBy,
	)
	u, err := r.scanOne(row)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	return u, err
}

func (r *userRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	const q = `UPDATE app_user SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, userID, newHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) MergeProfile(ctx context.Context, userID string, patch repository.ProfilePatch) error {
	// first-write-wins: COALESCE(NULLIF(actual,''), nuevo) conserva lo ya poblado
	const q = `
		UPDATE app_user SET
			first_name = COALESCE(NULLIF(first_name, ''), $2),
			last_name  = COALESCE(NULLIF(last_name, ''), $3),
			phone      = COALESCE(NULLIF(phone, ''), $4),
			address    = COALESCE(NULLIF(address, ''), $5),
			updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, userID,
		patch.FirstName, patch.LastName, patch.Phone, patch.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, userID string) error {
	const q = `DELETE FROM app_user WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) scanOne(row pgx.Row) (*repository.User, error) {
	var u repository.User
	var meta []byte
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.EmailVerified,
		&u.FirstName, &u.LastName, &u.Phone, &u.Address,
		&meta, &u.InvitedCompanyID, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &u.Metadata)
	}
	return &u, nil
}

func marshalMeta(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(m)
}

// isUniqueViolation detecta el código 23505 de Postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
