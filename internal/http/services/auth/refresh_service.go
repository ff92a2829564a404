package auth

import (
	"context"
	"errors"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
	"github.com/dropDatabas3/stocklink/internal/jwt"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
)

var ErrInvalidRefresh = errors.New("invalid refresh token")

// RefreshService renueva la sesión a partir de un refresh token stateless.
type RefreshService struct {
	Users  repository.UserRepository
	Issuer *jwt.Issuer
}

func NewRefreshService(users repository.UserRepository, issuer *jwt.Issuer) *RefreshService {
	return &RefreshService{Users: users, Issuer: issuer}
}

// Refresh valida el token (audiencia propia) y verifica que el usuario siga
// existiendo antes de emitir un par nuevo.
func (s *RefreshService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("refresh"))

	claims, err := s.Issuer.Parse(refreshToken, jwt.AudienceRefresh)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidRefresh
	}

	user, err := s.Users.GetByID(ctx, sub)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	access, _, err := s.Issuer.IssueAccess(user.ID, map[string]any{"email": user.Email})
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.Issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	log.Info("session refreshed", logger.UserID(user.ID))
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.Issuer.AccessTTL.Seconds()),
		UserID:       user.ID,
	}, nil
}
