package link

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifyCallback valida la firma HMAC del callback OAuth de Shopify.
// Se excluyen los parámetros hmac y signature, el resto se ordena
// lexicográficamente como k=v unidos por &, y se compara en tiempo
// constante contra el parámetro hmac (hex lower-case).
func VerifyCallback(secret string, query url.Values) bool {
	provided := query.Get("hmac")
	if provided == "" {
		return false
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+query.Get(k))
	}
	message := strings.Join(pairs, "&")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(strings.ToLower(provided)), []byte(expected))
}
