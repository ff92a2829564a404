package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const storefrontAPIVersion = "2024-04"

const customerTokenMutation = `
mutation customerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
  customerAccessTokenCreate(input: $input) {
    customerAccessToken { accessToken expiresAt }
    customerUserErrors { code message field }
  }
}`

const customerCreateMutation = `
mutation customerCreate($input: CustomerCreateInput!) {
  customerCreate(input: $input) {
    customer { id email }
    customerUserErrors { code message field }
  }
}`

const customerAddressCreateMutation = `
mutation customerAddressCreate($address: MailingAddressInput!, $token: String!) {
  customerAddressCreate(address: $address, customerAccessToken: $token) {
    customerAddress { id }
    customerUserErrors { code message field }
  }
}`

// StorefrontClient talks to the shop's Storefront GraphQL API. It validates
// customer credentials and provisions customers/addresses during signup.
type StorefrontClient struct {
	ShopDomain string
	Token      string // X-Shopify-Storefront-Access-Token

	// BaseURL overrides https://{ShopDomain} for tests.
	BaseURL string

	http *http.Client
}

// NewStorefrontClient creates a StorefrontClient with a bounded-timeout
// HTTP client.
func NewStorefrontClient(shopDomain, token string) *StorefrontClient {
	return &StorefrontClient{
		ShopDomain: shopDomain,
		Token:      token,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// CustomerToken is a Storefront customer access token.
type CustomerToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
}

// Customer identifies a Storefront customer.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CustomerInput contains the fields for customerCreate.
type CustomerInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// MailingAddressInput contains the fields for customerAddressCreate.
type MailingAddressInput struct {
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Empty reports whether no address field was provided.
func (a MailingAddressInput) Empty() bool {
	return a.Address1 == "" && a.Address2 == "" && a.City == "" &&
		a.Province == "" && a.Zip == "" && a.Country == ""
}

// CustomerAccessTokenCreate validates credentials against the platform.
// Platform user errors (invalid credential, locked account) come back as
// *UserError carrying the platform's own message.
func (c *StorefrontClient) CustomerAccessTokenCreate(ctx context.Context, email, password string) (*CustomerToken, error) {
	data, err := c.do(ctx, customerTokenMutation, map[string]any{
		"input": map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		CustomerAccessTokenCreate struct {
			CustomerAccessToken *CustomerToken `json:"customerAccessToken"`
			CustomerUserErrors  []userError    `json:"customerUserErrors"`
		} `json:"customerAccessTokenCreate"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("shopify: invalid storefront response: %w", err)
	}
	if err := firstUserError(out.CustomerAccessTokenCreate.CustomerUserErrors); err != nil {
		return nil, err
	}
	tok := out.CustomerAccessTokenCreate.CustomerAccessToken
	if tok == nil || tok.AccessToken == "" {
		return nil, &UserError{Message: "No se pudo autenticar con la plataforma."}
	}
	return tok, nil
}

// CustomerCreate provisions a customer on the shop. An "email taken" user
// error maps to ErrCustomerExists so signup can degrade to login.
func (c *StorefrontClient) CustomerCreate(ctx context.Context, input CustomerInput) (*Customer, error) {
	data, err := c.do(ctx, customerCreateMutation, map[string]any{"input": input})
	if err != nil {
		return nil, err
	}

	var out struct {
		CustomerCreate struct {
			Customer           *Customer   `json:"customer"`
			CustomerUserErrors []userError `json:"customerUserErrors"`
		} `json:"customerCreate"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("shopify: invalid storefront response: %w", err)
	}
	for _, ue := range out.CustomerCreate.CustomerUserErrors {
		if ue.Code == "TAKEN" || strings.Contains(strings.ToLower(ue.Message), "taken") {
			return nil, ErrCustomerExists
		}
	}
	if err := firstUserError(out.CustomerCreate.CustomerUserErrors); err != nil {
		return nil, err
	}
	if out.CustomerCreate.Customer == nil || out.CustomerCreate.Customer.ID == "" {
		return nil, &UserError{Message: "No se pudo crear el cliente en la plataforma."}
	}
	return out.CustomerCreate.Customer, nil
}

// CustomerAddressCreate attaches a mailing address to the customer owning
// the token.
func (c *StorefrontClient) CustomerAddressCreate(ctx context.Context, customerToken string, addr MailingAddressInput) error {
	data, err := c.do(ctx, customerAddressCreateMutation, map[string]any{
		"address": addr,
		"token":   customerToken,
	})
	if err != nil {
		return err
	}

	var out struct {
		CustomerAddressCreate struct {
			CustomerAddress    *struct{ ID string } `json:"customerAddress"`
			CustomerUserErrors []userError          `json:"customerUserErrors"`
		} `json:"customerAddressCreate"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("shopify: invalid storefront response: %w", err)
	}
	return firstUserError(out.CustomerAddressCreate.CustomerUserErrors)
}

type userError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   any    `json:"field"`
}

func firstUserError(errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return &UserError{Code: errs[0].Code, Message: strings.Join(msgs, ", ")}
}

// do posts one GraphQL operation and returns the raw "data" payload.
func (c *StorefrontClient) do(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	base := c.BaseURL
	if base == "" {
		base = "https://" + c.ShopDomain
	}

	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/%s/graphql.json", base, storefrontAPIVersion), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify: storefront request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return nil, fmt.Errorf("shopify: storefront status %d: %s", resp.StatusCode, string(detail))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("shopify: invalid storefront response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("shopify: graphql error: %s", envelope.Errors[0].Message)
	}
	return envelope.Data, nil
}
