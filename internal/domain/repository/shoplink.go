package repository

import (
	"context"
	"time"
)

// ShopLink representa el vínculo entre una empresa y una tienda Shopify.
// Unicidad: una fila por shop_domain; re-ejecutar el flujo de conexión
// refresca credenciales en lugar de fallar.
type ShopLink struct {
	ID          string
	CompanyID   string
	ShopDomain  string
	AccessToken string
	Scope       string
	Status      string // "active"
	ConnectedAt time.Time
	UpdatedAt   time.Time
}

// ShopLinkRepository define operaciones sobre vínculos de tiendas.
type ShopLinkRepository interface {
	// Upsert inserta o refresca el vínculo, keyed por shop_domain.
	// La segunda corrida gana en access_token/scope/status/connected_at.
	Upsert(ctx context.Context, link ShopLink) (*ShopLink, error)

	// GetByDomain busca un vínculo por dominio de tienda.
	// Retorna ErrNotFound si no existe.
	GetByDomain(ctx context.Context, shopDomain string) (*ShopLink, error)
}
