package link

import (
	"strings"
	"testing"
	"time"
)

func TestStateRoundTrip(t *testing.T) {
	c := NewCodec("shhh")

	token, err := c.Encode("company-1", "acme.myshopify.com")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	st, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if st.CompanyID != "company-1" {
		t.Errorf("CompanyID = %q, want company-1", st.CompanyID)
	}
	if st.ShopDomain != "acme.myshopify.com" {
		t.Errorf("ShopDomain = %q, want acme.myshopify.com", st.ShopDomain)
	}
	if st.Expired(time.Now()) {
		t.Error("token recién emitido no debería estar expirado")
	}
}

func TestStateTamperedPayload(t *testing.T) {
	c := NewCodec("shhh")
	token, _ := c.Encode("company-1", "acme.myshopify.com")

	body, tag, _ := strings.Cut(token, ".")
	// cambiar un byte del payload invalida el tag
	mutated := "A" + body[1:]
	if _, err := c.Decode(mutated + "." + tag); err != ErrStateInvalid {
		t.Fatalf("Decode tampered = %v, want ErrStateInvalid", err)
	}
}

func TestStateWrongKey(t *testing.T) {
	token, _ := NewCodec("key-a").Encode("company-1", "acme.myshopify.com")
	if _, err := NewCodec("key-b").Decode(token); err != ErrStateInvalid {
		t.Fatalf("Decode con otra clave = %v, want ErrStateInvalid", err)
	}
}

func TestStateGarbage(t *testing.T) {
	c := NewCodec("shhh")
	for _, tok := range []string{"", "sintag", "a.b.c", "!!!.###"} {
		if _, err := c.Decode(tok); err == nil {
			t.Errorf("Decode(%q) aceptó basura", tok)
		}
	}
}

func TestStateExpiry(t *testing.T) {
	st := &State{
		CompanyID:  "c",
		ShopDomain: "s.myshopify.com",
		IssuedAt:   time.Now().Add(-11 * time.Minute).UnixMilli(),
	}
	if !st.Expired(time.Now()) {
		t.Error("state de hace 11 minutos debería estar expirado")
	}

	st.IssuedAt = time.Now().Add(-9 * time.Minute).UnixMilli()
	if st.Expired(time.Now()) {
		t.Error("state de hace 9 minutos no debería estar expirado")
	}
}
