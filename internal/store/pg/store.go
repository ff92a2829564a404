// store.go — Pool PostgreSQL y acceso a los repositorios del dominio.
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
)

type Store struct{ pool *pgxpool.Pool }

// Tuning opcional del pool.
type Tuning struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, t Tuning) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if t.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(t.MaxOpenConns)
	}
	// Mapear MaxIdleConns → MinConns (pgxpool)
	if t.MaxIdleConns > 0 {
		pcfg.MinConns = int32(t.MaxIdleConns)
	}
	if t.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(t.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (migraciones/metrics).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Ping verifica conectividad. No es fatal en el arranque.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Users() repository.UserRepository             { return &userRepo{pool: s.pool} }
func (s *Store) Companies() repository.CompanyRepository      { return &companyRepo{pool: s.pool} }
func (s *Store) Memberships() repository.MembershipRepository { return &membershipRepo{pool: s.pool} }
func (s *Store) Invites() repository.InviteRepository         { return &inviteRepo{pool: s.pool} }
func (s *Store) JoinCodes() repository.JoinCodeRepository     { return &joinCodeRepo{pool: s.pool} }
func (s *Store) ShopLinks() repository.ShopLinkRepository     { return &shopLinkRepo{pool: s.pool} }
