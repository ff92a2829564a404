// Package shopify contains HTTP clients for the Shopify Admin OAuth and
// Storefront GraphQL APIs. It is the only package that talks to the
// external commerce platform.
package shopify

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExchangeFailed indicates the one-time code could not be exchanged
	// for an access token.
	ErrExchangeFailed = errors.New("shopify: token exchange failed")

	// ErrCustomerExists indicates customerCreate failed because the email
	// is already registered on the shop ("email taken"). Callers treat this
	// as non-fatal and fall through to the login path.
	ErrCustomerExists = errors.New("shopify: customer already exists")
)

// UserError is a user-facing error returned by the Storefront API
// (invalid credentials, locked account, malformed address...). Its message
// comes from the platform verbatim and is safe to surface to the client.
type UserError struct {
	Code    string
	Message string
	Field   string
}

func (e *UserError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("shopify: %s (%s)", e.Message, e.Code)
	}
	return "shopify: " + e.Message
}

// IsUserError reports whether err carries a platform user error and returns it.
func IsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// NormalizeShopDomain lowercases the shop parameter, strips a scheme if the
// caller pasted a full URL and appends .myshopify.com when only the shop
// handle was given.
func NormalizeShopDomain(shop string) string {
	shop = strings.ToLower(strings.TrimSpace(shop))
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	shop = strings.TrimSuffix(shop, "/")
	if shop == "" {
		return ""
	}
	if strings.HasSuffix(shop, ".myshopify.com") {
		return shop
	}
	return shop + ".myshopify.com"
}
