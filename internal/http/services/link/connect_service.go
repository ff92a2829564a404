package link

import (
	"errors"
	"net/url"
	"strings"

	"github.com/dropDatabas3/stocklink/internal/shopify"
)

var ErrShopMissing = errors.New("shop domain required")

// ConnectService construye la URL de autorización hacia la tienda.
type ConnectService struct {
	APIKey       string
	Scopes       string
	RedirectBase string
	Codec        *Codec
}

func NewConnectService(apiKey, scopes, redirectBase string, codec *Codec) *ConnectService {
	return &ConnectService{
		APIKey:       apiKey,
		Scopes:       scopes,
		RedirectBase: redirectBase,
		Codec:        codec,
	}
}

// AuthorizeURL normaliza el dominio, emite un state firmado y arma el
// redirect al endpoint de autorización de la tienda.
func (s *ConnectService) AuthorizeURL(companyID, shop string) (string, error) {
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return "", ErrShopMissing
	}
	shopDomain := shopify.NormalizeShopDomain(shop)

	state, err := s.Codec.Encode(companyID, shopDomain)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("client_id", s.APIKey)
	q.Set("scope", s.Scopes)
	q.Set("redirect_uri", strings.TrimRight(s.RedirectBase, "/")+"/v2/shopify/callback")
	q.Set("state", state)

	return "https://" + shopDomain + "/admin/oauth/authorize?" + q.Encode(), nil
}
