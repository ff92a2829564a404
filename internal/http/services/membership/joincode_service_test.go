package membership

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
	"github.com/dropDatabas3/stocklink/internal/security/token"
)

type fakeJoinCodes struct {
	mu    sync.Mutex
	codes map[string]*repository.JoinCode // por hash

	redeemed  []string // userIDs que canjearon
	revokeErr error
}

func newFakeJoinCodes() *fakeJoinCodes {
	return &fakeJoinCodes{codes: map[string]*repository.JoinCode{}}
}

func (f *fakeJoinCodes) Create(ctx context.Context, in repository.CreateJoinCodeInput) (*repository.JoinCode, error) {
	c := &repository.JoinCode{
		ID:        "jc-1",
		CompanyID: in.CompanyID,
		Role:      in.Role,
		CodeHash:  in.CodeHash,
		MaxUses:   in.MaxUses,
		ExpiresAt: in.ExpiresAt,
		CreatedBy: in.CreatedBy,
		CreatedAt: time.Now(),
	}
	f.codes[in.CodeHash] = c
	return c, nil
}

func (f *fakeJoinCodes) GetActiveByHash(ctx context.Context, hash string) (*repository.JoinCode, error) {
	if c, ok := f.codes[hash]; ok && c.RevokedAt == nil {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

// Redeem replica la clasificación y el incremento condicional del store.
// El lock cumple el rol de la transacción: clasificación e incremento
// son un solo paso atómico.
func (f *fakeJoinCodes) Redeem(ctx context.Context, hash, userID string) (*repository.RedeemResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.codes[hash]
	if !ok || c.RevokedAt != nil {
		return nil, repository.ErrNotFound
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(time.Now()) {
		return nil, repository.ErrCodeExpired
	}
	if c.MaxUses != nil && c.Uses >= *c.MaxUses {
		return nil, repository.ErrCodeExhausted
	}
	c.Uses++
	f.redeemed = append(f.redeemed, userID)
	return &repository.RedeemResult{
		CompanyID:    c.CompanyID,
		Role:         c.Role,
		MembershipID: "m-" + userID,
	}, nil
}

func (f *fakeJoinCodes) Revoke(ctx context.Context, companyID, codeID string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	for _, c := range f.codes {
		if c.ID == codeID && c.CompanyID == companyID {
			now := time.Now()
			c.RevokedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func newJoinCodeFixture() (*JoinCodeService, *fakeMemberships, *fakeJoinCodes) {
	mems := newFakeMemberships()
	mems.rows[memKey{"c-1", "admin-1"}] = &repository.Membership{
		ID: "m-admin", CompanyID: "c-1", UserID: "admin-1", Role: repository.RoleOwner,
	}
	mems.rows[memKey{"c-1", "emp-1"}] = &repository.Membership{
		ID: "m-emp", CompanyID: "c-1", UserID: "emp-1", Role: repository.RoleViewer,
	}
	codes := newFakeJoinCodes()
	return NewJoinCodeService(mems, codes), mems, codes
}

func seedCode(codes *fakeJoinCodes, plain string, mutate func(*repository.JoinCode)) {
	c := &repository.JoinCode{
		ID:        "jc-seed",
		CompanyID: "c-1",
		Role:      repository.RoleEmployee,
		CodeHash:  token.SHA256Hex(plain),
	}
	if mutate != nil {
		mutate(c)
	}
	codes.codes[c.CodeHash] = c
}

func TestRedeemOK(t *testing.T) {
	svc, _, codes := newJoinCodeFixture()
	seedCode(codes, "ABCD2345", nil)

	res, err := svc.Redeem(context.Background(), "u-9", "ABCD2345")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if res.CompanyID != "c-1" || res.Role != repository.RoleEmployee {
		t.Errorf("result = %+v", res)
	}
}

func TestRedeemNormalizesInput(t *testing.T) {
	svc, _, codes := newJoinCodeFixture()
	seedCode(codes, "ABCD2345", nil)

	// minúsculas y espacios alrededor deben canjear igual
	if _, err := svc.Redeem(context.Background(), "u-9", "  abcd2345 "); err != nil {
		t.Fatalf("Redeem normalized: %v", err)
	}
}

func TestRedeemNotFound(t *testing.T) {
	svc, _, _ := newJoinCodeFixture()
	if _, err := svc.Redeem(context.Background(), "u-9", "NOPE1234"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("err = %v, want ErrCodeNotFound", err)
	}
}

func TestRedeemExpired(t *testing.T) {
	svc, _, codes := newJoinCodeFixture()
	seedCode(codes, "ABCD2345", func(c *repository.JoinCode) {
		past := time.Now().Add(-time.Minute)
		c.ExpiresAt = &past
	})

	if _, err := svc.Redeem(context.Background(), "u-9", "ABCD2345"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("err = %v, want ErrCodeExpired", err)
	}
}

func TestRedeemExhausted(t *testing.T) {
	svc, _, codes := newJoinCodeFixture()
	one := 1
	seedCode(codes, "ABCD2345", func(c *repository.JoinCode) { c.MaxUses = &one })

	if _, err := svc.Redeem(context.Background(), "u-1", "ABCD2345"); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if _, err := svc.Redeem(context.Background(), "u-2", "ABCD2345"); !errors.Is(err, ErrCodeExhausted) {
		t.Fatalf("second redeem err = %v, want ErrCodeExhausted", err)
	}
}

func TestRedeemConcurrentLastUse(t *testing.T) {
	svc, _, codes := newJoinCodeFixture()
	one := 1
	seedCode(codes, "ABCD2345", func(c *repository.JoinCode) { c.MaxUses = &one })

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Redeem(context.Background(), fmt.Sprintf("u-%d", i), "ABCD2345")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrCodeExhausted):
		default:
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("successful redeems = %d, want exactly 1", wins)
	}
	if len(codes.redeemed) != 1 {
		t.Fatalf("memberships granted = %d, want 1", len(codes.redeemed))
	}
}

func TestRedeemMissingCode(t *testing.T) {
	svc, _, _ := newJoinCodeFixture()
	if _, err := svc.Redeem(context.Background(), "u-9", "   "); !errors.Is(err, ErrCodeMissing) {
		t.Fatalf("err = %v, want ErrCodeMissing", err)
	}
}

func TestCreateJoinCode(t *testing.T) {
	svc, _, codes := newJoinCodeFixture()
	five := 5

	created, err := svc.Create(context.Background(), "admin-1", "c-1", "employee", &five, time.Hour)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created.Code) != joinCodeLength {
		t.Errorf("code length = %d, want %d", len(created.Code), joinCodeLength)
	}
	// el store solo conoce el hash del código emitido
	stored, ok := codes.codes[token.SHA256Hex(created.Code)]
	if !ok {
		t.Fatal("stored hash does not match issued code")
	}
	if stored.MaxUses == nil || *stored.MaxUses != 5 {
		t.Errorf("MaxUses = %v", stored.MaxUses)
	}
	if stored.ExpiresAt == nil {
		t.Error("ExpiresAt not set")
	}
}

func TestCreateRequiresManager(t *testing.T) {
	svc, _, _ := newJoinCodeFixture()

	if _, err := svc.Create(context.Background(), "emp-1", "c-1", "employee", nil, 0); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("viewer create err = %v, want ErrNotAuthorized", err)
	}
	if _, err := svc.Create(context.Background(), "ghost", "c-1", "employee", nil, 0); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("stranger create err = %v, want ErrNotAuthorized", err)
	}
}

func TestCreateValidatesRole(t *testing.T) {
	svc, _, _ := newJoinCodeFixture()
	if _, err := svc.Create(context.Background(), "admin-1", "c-1", "root", nil, 0); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
}

func TestRevoke(t *testing.T) {
	svc, _, codes := newJoinCodeFixture()
	seedCode(codes, "ABCD2345", nil)

	if err := svc.Revoke(context.Background(), "admin-1", "c-1", "jc-seed"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	// un código revocado no se canjea
	if _, err := svc.Redeem(context.Background(), "u-9", "ABCD2345"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("redeem after revoke err = %v, want ErrCodeNotFound", err)
	}
}

func TestRevokeNotFound(t *testing.T) {
	svc, _, _ := newJoinCodeFixture()
	if err := svc.Revoke(context.Background(), "admin-1", "c-1", "jc-ghost"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("err = %v, want ErrCodeNotFound", err)
	}
}

func TestRevokeRequiresManager(t *testing.T) {
	svc, _, codes := newJoinCodeFixture()
	seedCode(codes, "ABCD2345", nil)

	if err := svc.Revoke(context.Background(), "emp-1", "c-1", "jc-seed"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}
