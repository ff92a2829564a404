package link

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dropDatabas3/stocklink/internal/config"
	svc "github.com/dropDatabas3/stocklink/internal/http/services/link"
)

func linkedConfig() *config.Config {
	cfg, _ := config.Load("")
	cfg.Shopify.APIKey = "key"
	cfg.Shopify.APISecret = "hush"
	cfg.Shopify.Scopes = "read_products,read_orders"
	cfg.Shopify.RedirectBase = "https://api.stocklink.dev"
	cfg.Storage.DSN = "postgres://x"
	return cfg
}

func newConnectController(cfg *config.Config) *ConnectController {
	codec := svc.NewCodec(cfg.Shopify.APISecret)
	service := svc.NewConnectService(cfg.Shopify.APIKey, cfg.Shopify.Scopes, cfg.Shopify.RedirectBase, codec)
	return NewConnectController(service, cfg)
}

func TestConnectRedirectsToAuthorize(t *testing.T) {
	ctrl := newConnectController(linkedConfig())

	req := httptest.NewRequest(http.MethodGet, "/v2/shopify/connect?companyId=c-1&shop=acme", nil)
	rec := httptest.NewRecorder()
	ctrl.Connect(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad location: %v", err)
	}
	if loc.Host != "acme.myshopify.com" || loc.Path != "/admin/oauth/authorize" {
		t.Errorf("location = %s", loc)
	}
	q := loc.Query()
	if q.Get("client_id") != "key" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "https://api.stocklink.dev/v2/shopify/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if q.Get("state") == "" {
		t.Error("state param missing")
	}
}

func TestConnectWithoutCompanyRendersInstructions(t *testing.T) {
	ctrl := newConnectController(linkedConfig())

	req := httptest.NewRequest(http.MethodGet, "/v2/shopify/connect?shop=acme", nil)
	rec := httptest.NewRecorder()
	ctrl.Connect(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "companyId") {
		t.Error("instructions page should mention the companyId parameter")
	}
}

func TestConnectWithoutShopIsBadRequest(t *testing.T) {
	ctrl := newConnectController(linkedConfig())

	req := httptest.NewRequest(http.MethodGet, "/v2/shopify/connect?companyId=c-1", nil)
	rec := httptest.NewRecorder()
	ctrl.Connect(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestConnectConfigIncomplete(t *testing.T) {
	cfg := linkedConfig()
	cfg.Shopify.APISecret = ""
	ctrl := newConnectController(cfg)

	req := httptest.NewRequest(http.MethodGet, "/v2/shopify/connect?companyId=c-1&shop=acme", nil)
	rec := httptest.NewRecorder()
	ctrl.Connect(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestConnectAcceptsJSONBody(t *testing.T) {
	ctrl := newConnectController(linkedConfig())

	body := strings.NewReader(`{"company_id":"c-1","shopDomain":"acme"}`)
	req := httptest.NewRequest(http.MethodPost, "/v2/shopify/connect", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ctrl.Connect(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
}

func TestConnectAcceptsFormBody(t *testing.T) {
	ctrl := newConnectController(linkedConfig())

	form := url.Values{"companyId": {"c-1"}, "shop": {"acme"}}
	req := httptest.NewRequest(http.MethodPost, "/v2/shopify/connect", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ctrl.Connect(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
}

func TestConnectMethodNotAllowed(t *testing.T) {
	ctrl := newConnectController(linkedConfig())

	req := httptest.NewRequest(http.MethodDelete, "/v2/shopify/connect", nil)
	rec := httptest.NewRecorder()
	ctrl.Connect(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
