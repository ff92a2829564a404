package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// storefrontServer returns an httptest server that answers every GraphQL post
// with the given data payload.
func storefrontServer(t *testing.T, data string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/"+storefrontAPIVersion+"/graphql.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Shopify-Storefront-Access-Token"); got != "sf-token" {
			t.Errorf("storefront token header = %q", got)
		}
		fmt.Fprintf(w, `{"data":%s}`, data)
	}))
}

func TestCustomerAccessTokenCreateOK(t *testing.T) {
	srv := storefrontServer(t, `{
		"customerAccessTokenCreate": {
			"customerAccessToken": {"accessToken":"cat_abc","expiresAt":"2026-01-01T00:00:00Z"},
			"customerUserErrors": []
		}
	}`)
	defer srv.Close()

	c := NewStorefrontClient("acme.myshopify.com", "sf-token")
	c.BaseURL = srv.URL

	tok, err := c.CustomerAccessTokenCreate(context.Background(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("CustomerAccessTokenCreate: %v", err)
	}
	if tok.AccessToken != "cat_abc" {
		t.Errorf("token = %+v", tok)
	}
}

func TestCustomerAccessTokenCreateUserError(t *testing.T) {
	srv := storefrontServer(t, `{
		"customerAccessTokenCreate": {
			"customerAccessToken": null,
			"customerUserErrors": [{"code":"UNIDENTIFIED_CUSTOMER","message":"Unidentified customer"}]
		}
	}`)
	defer srv.Close()

	c := NewStorefrontClient("acme.myshopify.com", "sf-token")
	c.BaseURL = srv.URL

	_, err := c.CustomerAccessTokenCreate(context.Background(), "a@b.com", "wrong")
	ue, ok := IsUserError(err)
	if !ok {
		t.Fatalf("err = %v, want *UserError", err)
	}
	if ue.Code != "UNIDENTIFIED_CUSTOMER" || ue.Message != "Unidentified customer" {
		t.Errorf("user error = %+v", ue)
	}
}

func TestCustomerAccessTokenCreateNullTokenNoErrors(t *testing.T) {
	srv := storefrontServer(t, `{
		"customerAccessTokenCreate": {"customerAccessToken": null, "customerUserErrors": []}
	}`)
	defer srv.Close()

	c := NewStorefrontClient("acme.myshopify.com", "sf-token")
	c.BaseURL = srv.URL

	if _, err := c.CustomerAccessTokenCreate(context.Background(), "a@b.com", "x"); err == nil {
		t.Fatal("expected error on null token")
	} else if _, ok := IsUserError(err); !ok {
		t.Errorf("err = %v, want *UserError", err)
	}
}

func TestCustomerCreateOK(t *testing.T) {
	srv := storefrontServer(t, `{
		"customerCreate": {
			"customer": {"id":"gid://shopify/Customer/1","email":"a@b.com"},
			"customerUserErrors": []
		}
	}`)
	defer srv.Close()

	c := NewStorefrontClient("acme.myshopify.com", "sf-token")
	c.BaseURL = srv.URL

	cust, err := c.CustomerCreate(context.Background(), CustomerInput{Email: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("CustomerCreate: %v", err)
	}
	if cust.ID != "gid://shopify/Customer/1" {
		t.Errorf("customer = %+v", cust)
	}
}

func TestCustomerCreateTaken(t *testing.T) {
	srv := storefrontServer(t, `{
		"customerCreate": {
			"customer": null,
			"customerUserErrors": [{"code":"TAKEN","message":"Email has already been taken","field":["input","email"]}]
		}
	}`)
	defer srv.Close()

	c := NewStorefrontClient("acme.myshopify.com", "sf-token")
	c.BaseURL = srv.URL

	if _, err := c.CustomerCreate(context.Background(), CustomerInput{Email: "a@b.com", Password: "x"}); !errors.Is(err, ErrCustomerExists) {
		t.Fatalf("err = %v, want ErrCustomerExists", err)
	}
}

func TestCustomerAddressCreateUserError(t *testing.T) {
	srv := storefrontServer(t, `{
		"customerAddressCreate": {
			"customerAddress": null,
			"customerUserErrors": [{"code":"INVALID","message":"Country is not supported"}]
		}
	}`)
	defer srv.Close()

	c := NewStorefrontClient("acme.myshopify.com", "sf-token")
	c.BaseURL = srv.URL

	err := c.CustomerAddressCreate(context.Background(), "cat_abc", MailingAddressInput{Country: "??"})
	if ue, ok := IsUserError(err); !ok || ue.Message != "Country is not supported" {
		t.Fatalf("err = %v, want platform user error", err)
	}
}

func TestStorefrontGraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"Throttled"}]}`)
	}))
	defer srv.Close()

	c := NewStorefrontClient("acme.myshopify.com", "sf-token")
	c.BaseURL = srv.URL

	if _, err := c.CustomerAccessTokenCreate(context.Background(), "a@b.com", "x"); err == nil {
		t.Fatal("expected error from graphql errors envelope")
	}
}
