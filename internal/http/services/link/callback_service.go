package link

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
	"github.com/dropDatabas3/stocklink/internal/shopify"
)

var (
	ErrBadSignature   = errors.New("invalid callback signature")
	ErrMissingParams  = errors.New("missing callback parameters")
	ErrExchangeFailed = errors.New("code exchange failed")
	ErrPersistFailed  = errors.New("could not persist shop link")
)

// Exchanger canjea el código de autorización por un access token de Admin API.
type Exchanger interface {
	ExchangeCode(ctx context.Context, shopDomain, code string) (*shopify.ExchangeResult, error)
}

// CallbackService procesa el retorno del flujo de autorización:
// verifica la firma, valida el state, canjea el código y persiste el vínculo.
type CallbackService struct {
	Secret    string
	Codec     *Codec
	Exchanger Exchanger
	ShopLinks repository.ShopLinkRepository

	now func() time.Time
}

func NewCallbackService(secret string, codec *Codec, ex Exchanger, links repository.ShopLinkRepository) *CallbackService {
	return &CallbackService{
		Secret:    secret,
		Codec:     codec,
		Exchanger: ex,
		ShopLinks: links,
		now:       time.Now,
	}
}

// LinkResult describe el vínculo recién creado o refrescado.
type LinkResult struct {
	CompanyID  string
	ShopDomain string
}

// HandleCallback ejecuta el pipeline completo del callback.
// Cualquier error corta el flujo; el controller traduce a un redirect de error.
func (s *CallbackService) HandleCallback(ctx context.Context, query url.Values) (*LinkResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("shopify_callback"))

	// Paso 1: firma HMAC sobre los query params
	if !VerifyCallback(s.Secret, query) {
		log.Warn("callback signature mismatch")
		return nil, ErrBadSignature
	}

	code := query.Get("code")
	shop := query.Get("shop")
	rawState := query.Get("state")
	if code == "" || shop == "" || rawState == "" {
		return nil, ErrMissingParams
	}

	// Paso 2: state firmado por nosotros en /connect
	st, err := s.Codec.Decode(rawState)
	if err != nil {
		log.Warn("state rejected", logger.Err(err))
		return nil, err
	}
	if st.Expired(s.now()) {
		return nil, ErrStateExpired
	}

	shopDomain := shopify.NormalizeShopDomain(shop)
	if shopDomain != st.ShopDomain {
		log.Warn("shop mismatch between query and state",
			logger.ShopDomain(shopDomain))
		return nil, ErrStateInvalid
	}

	// Paso 3: canje del código por credenciales
	res, err := s.Exchanger.ExchangeCode(ctx, shopDomain, code)
	if err != nil {
		// el detalle del upstream queda en logs, nunca en la respuesta
		log.Error("token exchange failed", logger.ShopDomain(shopDomain), logger.Err(err))
		return nil, ErrExchangeFailed
	}

	// Paso 4: upsert del vínculo (reconectar refresca credenciales)
	_, err = s.ShopLinks.Upsert(ctx, repository.ShopLink{
		CompanyID:   st.CompanyID,
		ShopDomain:  shopDomain,
		AccessToken: res.AccessToken,
		Scope:       res.Scope,
	})
	if err != nil {
		log.Error("shop link upsert failed", logger.CompanyID(st.CompanyID), logger.Err(err))
		return nil, ErrPersistFailed
	}

	log.Info("shop linked",
		logger.CompanyID(st.CompanyID),
		logger.ShopDomain(shopDomain),
	)
	return &LinkResult{CompanyID: st.CompanyID, ShopDomain: shopDomain}, nil
}
