// Package link implementa el flujo de conexión de tiendas Shopify:
// generación del redirect de autorización, verificación del callback
// firmado y canje del código por credenciales de Admin API.
package link

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// StateTTL es la ventana de frescura del state: un callback que llega
// después de esto se rechaza aunque la firma sea válida.
const StateTTL = 10 * time.Minute

var (
	ErrStateInvalid = errors.New("invalid state token")
	ErrStateExpired = errors.New("state token expired")
)

// State es el payload que viaja por el parámetro state del flujo OAuth.
type State struct {
	CompanyID  string `json:"company_id"`
	ShopDomain string `json:"shop_domain"`
	IssuedAt   int64  `json:"issued_at"` // unix millis
}

// Codec codifica y valida states firmados con el secret de la integración.
// El tag HMAC evita que un tercero fabrique states con otro company_id.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode serializa el state y le añade un tag HMAC-SHA256.
// Formato: base64url(JSON) + "." + base64url(tag).
func (c *Codec) Encode(companyID, shopDomain string) (string, error) {
	payload, err := json.Marshal(State{
		CompanyID:  companyID,
		ShopDomain: shopDomain,
		IssuedAt:   time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + c.tag(body), nil
}

// Decode verifica el tag y deserializa el payload.
// La frescura (StateTTL) la chequea el caller con State.Expired.
func (c *Codec) Decode(token string) (*State, error) {
	body, tag, ok := strings.Cut(token, ".")
	if !ok || body == "" || tag == "" {
		return nil, ErrStateInvalid
	}
	if !hmac.Equal([]byte(tag), []byte(c.tag(body))) {
		return nil, ErrStateInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, ErrStateInvalid
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, ErrStateInvalid
	}
	if st.CompanyID == "" || st.ShopDomain == "" {
		return nil, ErrStateInvalid
	}
	return &st, nil
}

// Expired indica si el state quedó fuera de la ventana de frescura.
func (s *State) Expired(now time.Time) bool {
	issued := time.UnixMilli(s.IssuedAt)
	return now.Sub(issued) > StateTTL
}

func (c *Codec) tag(body string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
