// companies.go — Implementación PostgreSQL de CompanyRepository.
package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
)

type companyRepo struct {
	pool *pgxpool.Pool
}

func (r *companyRepo) GetByID(ctx context.Context, companyID string) (*repository.Company, error) {
	const q = `SELECT id, name, created_at FROM companies WHERE id = $1`
	var c repository.Company
	err := r.pool.QueryRow(ctx, q, companyID).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
