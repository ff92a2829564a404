package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AdminClient exchanges authorization codes against the shop's Admin OAuth
// endpoint. One instance per process; safe for concurrent use.
type AdminClient struct {
	ClientID     string
	ClientSecret string

	// BaseURL overrides the per-shop https://{shop} base. Tests point it at
	// an httptest server; empty in production.
	BaseURL string

	http *http.Client
}

// NewAdminClient creates an AdminClient with a bounded-timeout HTTP client.
func NewAdminClient(clientID, clientSecret string) *AdminClient {
	return &AdminClient{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

// ExchangeResult contains the long-lived credential from a code exchange.
type ExchangeResult struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// ExchangeCode performs the server-to-server exchange of a one-time
// authorization code. The code is single-use by Shopify's own semantics;
// nothing is enforced locally. Non-2xx responses and responses without an
// access token are ErrExchangeFailed.
func (c *AdminClient) ExchangeCode(ctx context.Context, shopDomain, code string) (*ExchangeResult, error) {
	base := c.BaseURL
	if base == "" {
		base = "https://" + shopDomain
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"code":          code,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/admin/oauth/access_token", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// El detalle va al log del caller, nunca al cliente final.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return nil, fmt.Errorf("%w: status %d: %s", ErrExchangeFailed, resp.StatusCode, string(detail))
	}

	var out ExchangeResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: invalid response body", ErrExchangeFailed)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access_token", ErrExchangeFailed)
	}
	return &out, nil
}
