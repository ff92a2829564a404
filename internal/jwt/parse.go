package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid_jwt")
	ErrInvalidIssuer = errors.New("invalid_issuer")
	ErrWrongAudience = errors.New("wrong_audience")
)

// Parse valida firma (EdDSA), iss y audiencia esperada, y chequea exp/nbf
// con una pequeña tolerancia. Devuelve las claims como map[string]any.
func (i *Issuer) Parse(token, expectedAud string) (map[string]any, error) {
	tok, err := jwtv5.Parse(token, i.Keyfunc(), jwtv5.WithValidMethods([]string{"EdDSA"}))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if iss, _ := claims["iss"].(string); i.Iss != "" && iss != i.Iss {
		return nil, ErrInvalidIssuer
	}
	if aud, _ := claims["aud"].(string); expectedAud != "" && aud != expectedAud {
		return nil, ErrWrongAudience
	}

	now := time.Now()
	if expf, ok := claims["exp"].(float64); ok {
		if time.Unix(int64(expf), 0).Before(now.Add(-30 * time.Second)) {
			return nil, ErrInvalidToken
		}
	}
	if nbff, ok := claims["nbf"].(float64); ok {
		if time.Unix(int64(nbff), 0).After(now.Add(30 * time.Second)) {
			return nil, ErrInvalidToken
		}
	}

	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}
