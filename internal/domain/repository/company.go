package repository

import (
	"context"
	"time"
)

// Company representa una empresa del directorio multi-tenant.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// CompanyRepository define operaciones de lectura sobre empresas.
type CompanyRepository interface {
	// GetByID busca una empresa por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, companyID string) (*Company, error)
}
