package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/stocklink/internal/observability/logger"
	"github.com/dropDatabas3/stocklink/internal/shopify"
)

var ErrAddressFailed = errors.New("could not register address")

// SignupInput agrupa todos los campos del alta de cuenta.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
	Province  string
	Zip       string
	Country   string
}

// SignupService da de alta al cliente en la tienda y reusa el flujo de
// login para el usuario de primera parte.
type SignupService struct {
	Storefront Storefront
	Login      *LoginService
}

func NewSignupService(sf Storefront, login *LoginService) *SignupService {
	return &SignupService{Storefront: sf, Login: login}
}

// Signup ejecuta el alta completa.
//
// Política por paso, deliberadamente asimétrica:
//   - customerCreate con email ya tomado NO es fatal: se sigue como login.
//   - la dirección SÍ es fatal si falla: el cliente quedó creado pero el
//     caller debe enterarse de que el perfil quedó incompleto.
func (s *SignupService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("shopify_signup"))

	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}

	// Paso 1: crear el cliente en la tienda
	_, err := s.Storefront.CustomerCreate(ctx, shopify.CustomerInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	})
	switch {
	case err == nil:
		// cliente nuevo
	case errors.Is(err, shopify.ErrCustomerExists):
		// ya existe en la tienda: el login resuelve si el password es correcto
		log.Info("customer already exists, continuing as login", logger.Email(in.Email))
	default:
		if ue, ok := shopify.IsUserError(err); ok {
			return nil, ue
		}
		log.Error("customer create failed", logger.Err(err))
		return nil, err
	}

	// Paso 2: login (valida credenciales y aprovisiona el usuario local)
	sess, err := s.Login.Login(ctx, in.Email, in.Password, Profile{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Address:   joinAddress(in),
	})
	if err != nil {
		return nil, err
	}

	// Paso 3: registrar la dirección en la tienda si vino alguna
	addr := shopify.MailingAddressInput{
		Address1:  in.Address,
		City:      in.City,
		Province:  in.Province,
		Zip:       in.Zip,
		Country:   in.Country,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	}
	if !addr.Empty() {
		token, err := s.Storefront.CustomerAccessTokenCreate(ctx, in.Email, in.Password)
		if err != nil {
			log.Error("could not get customer token for address", logger.Err(err))
			return nil, ErrAddressFailed
		}
		if err := s.Storefront.CustomerAddressCreate(ctx, token.AccessToken, addr); err != nil {
			log.Error("address create failed", logger.Err(err))
			return nil, ErrAddressFailed
		}
	}

	return sess, nil
}

func joinAddress(in SignupInput) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{in.Address, in.City, in.Province, in.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}
