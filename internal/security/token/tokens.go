package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"fmt"
)

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateJoinCode genera un código legible (base32 sin padding, upper-case).
// El llamador guarda solo SHA256Hex(code); el plaintext se muestra una vez.
func GenerateJoinCode(nChars int) (string, error) {
	// base32 produce 8 chars por cada 5 bytes
	raw := make([]byte, (nChars*5+7)/8)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	code := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
	if len(code) > nChars {
		code = code[:nChars]
	}
	return code, nil
}

// SHA256Hex devuelve sha256(input) en hexadecimal (lower-case).
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)
}
