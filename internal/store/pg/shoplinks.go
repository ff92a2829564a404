// shoplinks.go — Implementación PostgreSQL de ShopLinkRepository.
package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
)

type shopLinkRepo struct {
	pool *pgxpool.Pool
}

const shopLinkColumns = `
	id, company_id, shop_domain, access_token, scope, status, connected_at, updated_at`

func (r *shopLinkRepo) Upsert(ctx context.Context, link repository.ShopLink) (*repository.ShopLink, error) {
	// keyed por shop_domain: reconectar refresca credenciales, nunca duplica
	const q = `
		INSERT INTO shopify_shops (
			id, company_id, shop_domain, access_token, scope, status, connected_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, 'active', NOW(), NOW())
		ON CONFLICT (shop_domain) DO UPDATE SET
			company_id   = EXCLUDED.company_id,
			access_token = EXCLUDED.access_token,
			scope        = EXCLUDED.scope,
			status       = 'active',
			connected_at = NOW(),
			updated_at   = NOW()
		RETURNING` + shopLinkColumns
	row := r.pool.QueryRow(ctx, q,
		uuid.NewString(), link.CompanyID, link.ShopDomain, link.AccessToken, link.Scope,
	)
	return scanShopLink(row)
}

func (r *shopLinkRepo) GetByDomain(ctx context.Context, shopDomain string) (*repository.ShopLink, error) {
	const q = `SELECT` + shopLinkColumns + `
		FROM shopify_shops
		WHERE shop_domain = $1`
	return scanShopLink(r.pool.QueryRow(ctx, q, shopDomain))
}

func scanShopLink(row pgx.Row) (*repository.ShopLink, error) {
	var l repository.ShopLink
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.ShopDomain, &l.AccessToken, &l.Scope,
		&l.Status, &l.ConnectedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
