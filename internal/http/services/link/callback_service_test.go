package link

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
	"github.com/dropDatabas3/stocklink/internal/shopify"
)

type fakeExchanger struct {
	result *shopify.ExchangeResult
	err    error
	calls  int
}

func (f *fakeExchanger) ExchangeCode(_ context.Context, _, _ string) (*shopify.ExchangeResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeShopLinks struct {
	rows     map[string]*repository.ShopLink // por shop_domain, como el índice único
	upserted *repository.ShopLink
	err      error
}

func (f *fakeShopLinks) Upsert(_ context.Context, link repository.ShopLink) (*repository.ShopLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.rows == nil {
		f.rows = map[string]*repository.ShopLink{}
	}
	f.rows[link.ShopDomain] = &link
	f.upserted = &link
	link.ID = "link-1"
	return &link, nil
}

func (f *fakeShopLinks) GetByDomain(_ context.Context, _ string) (*repository.ShopLink, error) {
	return nil, repository.ErrNotFound
}

func newCallbackFixture(t *testing.T) (*CallbackService, *fakeExchanger, *fakeShopLinks) {
	t.Helper()
	ex := &fakeExchanger{result: &shopify.ExchangeResult{AccessToken: "shpat_abc", Scope: "read_products"}}
	links := &fakeShopLinks{}
	svc := NewCallbackService(testSecret, NewCodec(testSecret), ex, links)
	return svc, ex, links
}

func signedCallbackQuery(t *testing.T, svc *CallbackService, companyID, shop string) url.Values {
	t.Helper()
	state, err := svc.Codec.Encode(companyID, shopify.NormalizeShopDomain(shop))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	q := url.Values{
		"code":      {"authcode"},
		"shop":      {shopify.NormalizeShopDomain(shop)},
		"state":     {state},
		"timestamp": {"1700000000"},
	}
	return signQuery(testSecret, q)
}

func TestHandleCallbackHappyPath(t *testing.T) {
	svc, ex, links := newCallbackFixture(t)

	res, err := svc.HandleCallback(context.Background(), signedCallbackQuery(t, svc, "company-1", "acme"))
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if res.CompanyID != "company-1" || res.ShopDomain != "acme.myshopify.com" {
		t.Errorf("result = %+v", res)
	}
	if ex.calls != 1 {
		t.Errorf("exchange calls = %d, want 1", ex.calls)
	}
	if links.upserted == nil || links.upserted.AccessToken != "shpat_abc" {
		t.Errorf("upserted = %+v", links.upserted)
	}
}

func TestHandleCallbackRelinkIdempotent(t *testing.T) {
	svc, ex, links := newCallbackFixture(t)

	if _, err := svc.HandleCallback(context.Background(), signedCallbackQuery(t, svc, "company-1", "acme")); err != nil {
		t.Fatalf("first callback: %v", err)
	}

	// segunda vuelta del flujo para la misma tienda, con credenciales nuevas
	ex.result = &shopify.ExchangeResult{AccessToken: "shpat_rotated", Scope: "read_products,write_products"}
	if _, err := svc.HandleCallback(context.Background(), signedCallbackQuery(t, svc, "company-1", "acme")); err != nil {
		t.Fatalf("second callback: %v", err)
	}

	if len(links.rows) != 1 {
		t.Fatalf("links = %d, want a single row per shop", len(links.rows))
	}
	row := links.rows["acme.myshopify.com"]
	if row == nil {
		t.Fatal("missing link for acme.myshopify.com")
	}
	// gana la segunda corrida
	if row.AccessToken != "shpat_rotated" || row.Scope != "read_products,write_products" {
		t.Errorf("row = %+v", row)
	}
	if ex.calls != 2 {
		t.Errorf("exchange calls = %d, want 2", ex.calls)
	}
}

func TestHandleCallbackBadSignature(t *testing.T) {
	svc, ex, _ := newCallbackFixture(t)

	q := signedCallbackQuery(t, svc, "company-1", "acme")
	q.Set("code", "altered-after-signing")

	if _, err := svc.HandleCallback(context.Background(), q); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
	if ex.calls != 0 {
		t.Error("no debe canjearse el código con firma inválida")
	}
}

func TestHandleCallbackForeignState(t *testing.T) {
	svc, _, _ := newCallbackFixture(t)

	// state emitido con otra clave: firma del query válida, state no
	foreign, _ := NewCodec("other").Encode("company-1", "acme.myshopify.com")
	q := url.Values{
		"code":  {"authcode"},
		"shop":  {"acme.myshopify.com"},
		"state": {foreign},
	}
	q = signQuery(testSecret, q)

	if _, err := svc.HandleCallback(context.Background(), q); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("err = %v, want ErrStateInvalid", err)
	}
}

func TestHandleCallbackExpiredState(t *testing.T) {
	svc, _, _ := newCallbackFixture(t)
	svc.now = func() time.Time { return time.Now().Add(StateTTL + time.Minute) }

	q := signedCallbackQuery(t, svc, "company-1", "acme")
	if _, err := svc.HandleCallback(context.Background(), q); !errors.Is(err, ErrStateExpired) {
		t.Fatalf("err = %v, want ErrStateExpired", err)
	}
}

func TestHandleCallbackShopMismatch(t *testing.T) {
	svc, _, _ := newCallbackFixture(t)

	state, _ := svc.Codec.Encode("company-1", "acme.myshopify.com")
	q := url.Values{
		"code":  {"authcode"},
		"shop":  {"otra.myshopify.com"},
		"state": {state},
	}
	q = signQuery(testSecret, q)

	if _, err := svc.HandleCallback(context.Background(), q); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("err = %v, want ErrStateInvalid", err)
	}
}

func TestHandleCallbackExchangeFails(t *testing.T) {
	svc, ex, links := newCallbackFixture(t)
	ex.result = nil
	ex.err = shopify.ErrExchangeFailed

	q := signedCallbackQuery(t, svc, "company-1", "acme")
	if _, err := svc.HandleCallback(context.Background(), q); !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("err = %v, want ErrExchangeFailed", err)
	}
	if links.upserted != nil {
		t.Error("no debe persistirse nada si el canje falla")
	}
}

func TestHandleCallbackMissingParams(t *testing.T) {
	svc, _, _ := newCallbackFixture(t)

	q := signedCallbackQuery(t, svc, "company-1", "acme")
	q.Del("code")
	q = signQuery(testSecret, q)

	if _, err := svc.HandleCallback(context.Background(), q); !errors.Is(err, ErrMissingParams) {
		t.Fatalf("err = %v, want ErrMissingParams", err)
	}
}
