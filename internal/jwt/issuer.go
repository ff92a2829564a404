package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Audiencias fijas de los tokens emitidos por este servicio.
const (
	AudienceAccess  = "stocklink"
	AudienceRefresh = "stocklink-refresh"
)

// Issuer firma tokens de sesión con una clave ed25519 del proceso.
type Issuer struct {
	Iss        string // "iss"
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	kid  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewIssuer construye un Issuer a partir de un seed ed25519 en base64.
// Si seedB64 está vacío genera una clave efímera (solo para dev/tests:
// los tokens dejan de validar al reiniciar el proceso).
func NewIssuer(iss, seedB64 string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	var priv ed25519.PrivateKey
	if seedB64 == "" {
		_, p, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		priv = p
	} else {
		seed, err := base64.StdEncoding.DecodeString(seedB64)
		if err != nil {
			return nil, fmt.Errorf("jwt: invalid key seed: %w", err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("jwt: key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
		}
		priv = ed25519.NewKeyFromSeed(seed)
	}
	pub := priv.Public().(ed25519.PublicKey)

	// kid estable derivado de la clave pública
	sum := sha256.Sum256(pub)
	kid := base64.RawURLEncoding.EncodeToString(sum[:8])

	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 720 * time.Hour // 30d
	}

	return &Issuer{
		Iss:        iss,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		kid:        kid,
		priv:       priv,
		pub:        pub,
	}, nil
}

// Keyfunc devuelve un jwt.Keyfunc para validar tokens emitidos por este Issuer.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		return i.pub, nil
	}
}

// IssueAccess emite un Access Token con claims estándar + extras.
func (i *Issuer) IssueAccess(sub string, extra map[string]any) (string, time.Time, error) {
	return i.sign(sub, AudienceAccess, i.AccessTTL, extra)
}

// IssueRefresh emite un Refresh Token (stateless, audiencia propia).
func (i *Issuer) IssueRefresh(sub string) (string, time.Time, error) {
	return i.sign(sub, AudienceRefresh, i.RefreshTTL, nil)
}

func (i *Issuer) sign(sub, aud string, ttl time.Duration, extra map[string]any) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": sub,
		"aud": aud,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = i.kid
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
