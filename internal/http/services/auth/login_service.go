// Package auth implementa la reconciliación de identidades: las credenciales
// se validan contra la tienda (Storefront) y la sesión se emite sobre el
// usuario de primera parte, aprovisionándolo si no existe.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
	"github.com/dropDatabas3/stocklink/internal/jwt"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
	"github.com/dropDatabas3/stocklink/internal/security/password"
	"github.com/dropDatabas3/stocklink/internal/shopify"
)

var (
	ErrMissingCredentials = errors.New("email and password required")
	ErrProvisionFailed    = errors.New("could not provision user")
)

// Storefront es la porción del cliente Storefront que usan estos services.
type Storefront interface {
	CustomerAccessTokenCreate(ctx context.Context, email, password string) (*shopify.CustomerToken, error)
	CustomerCreate(ctx context.Context, input shopify.CustomerInput) (*shopify.Customer, error)
	CustomerAddressCreate(ctx context.Context, customerToken string, addr shopify.MailingAddressInput) error
}

// Session es el resultado interno de login/signup/refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	UserID       string
	IsNewUser    bool
}

// Profile acompaña al login para fusionar datos de perfil conocidos.
type Profile struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// LoginService valida credenciales contra la tienda y emite la sesión local.
type LoginService struct {
	Storefront Storefront
	Users      repository.UserRepository
	Issuer     *jwt.Issuer
}

func NewLoginService(sf Storefront, users repository.UserRepository, issuer *jwt.Issuer) *LoginService {
	return &LoginService{Storefront: sf, Users: users, Issuer: issuer}
}

// Login ejecuta el flujo completo. La tienda es la autoridad de credenciales:
// un password válido allí siempre produce una sesión local.
func (s *LoginService) Login(ctx context.Context, email, pass string, profile Profile) (*Session, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("shopify_login"))

	if email == "" || pass == "" {
		return nil, ErrMissingCredentials
	}

	// Paso 1: validar credenciales contra la tienda. El userError de la
	// plataforma viaja intacto: su mensaje es el feedback de credenciales
	// que ve el usuario final.
	if _, err := s.Storefront.CustomerAccessTokenCreate(ctx, email, pass); err != nil {
		if ue, ok := shopify.IsUserError(err); ok {
			log.Info("storefront rejected credentials", logger.String("code", ue.Code))
			return nil, ue
		}
		log.Error("storefront unavailable", logger.Err(err))
		return nil, err
	}

	// Paso 2: buscar o aprovisionar el usuario de primera parte
	user, isNew, err := s.findOrCreate(ctx, email, profile)
	if err != nil {
		log.Error("user provisioning failed", logger.Email(email), logger.Err(err))
		return nil, ErrProvisionFailed
	}

	// Paso 3: sincronizar el hash local con el password recién validado,
	// así el usuario también puede autenticarse sin pasar por la tienda
	if !password.Verify(pass, user.PasswordHash) {
		hash, err := password.Hash(password.Default, pass)
		if err == nil {
			if err := s.Users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				// best-effort: la sesión igual se emite
				log.Warn("password rehash failed", logger.UserID(user.ID), logger.Err(err))
			}
		}
	}

	// Paso 4: fusionar perfil first-write-wins (best-effort)
	if !isNew && (profile != Profile{}) {
		if err := s.Users.MergeProfile(ctx, user.ID, repository.ProfilePatch{
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Phone:     profile.Phone,
			Address:   profile.Address,
		}); err != nil {
			log.Warn("profile merge failed", logger.UserID(user.ID), logger.Err(err))
		}
	}

	// Paso 5: emitir sesión
	sess, err := s.issue(user.ID, email)
	if err != nil {
		return nil, err
	}
	sess.IsNewUser = isNew

	log.Info("login ok", logger.UserID(user.ID), logger.Bool("new_user", isNew))
	return sess, nil
}

func (s *LoginService) findOrCreate(ctx context.Context, email string, profile Profile) (*repository.User, bool, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	// placeholder aleatorio: el hash real se sincroniza en el paso 3
	hash, err := password.Hash(password.Default, uuid.NewString())
	if err != nil {
		return nil, false, err
	}
	user, err = s.Users.Create(ctx, repository.CreateUserInput{
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: true, // la tienda ya validó la credencial
		FirstName:     profile.FirstName,
		LastName:      profile.LastName,
		Phone:         profile.Phone,
		Address:       profile.Address,
	})
	if err != nil {
		// carrera con otro login simultáneo: releer
		if repository.IsConflict(err) {
			user, err = s.Users.GetByEmail(ctx, email)
			return user, false, err
		}
		return nil, false, err
	}
	return user, true, nil
}

func (s *LoginService) issue(userID, email string) (*Session, error) {
	access, _, err := s.Issuer.IssueAccess(userID, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.Issuer.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.Issuer.AccessTTL.Seconds()),
		UserID:       userID,
	}, nil
}
