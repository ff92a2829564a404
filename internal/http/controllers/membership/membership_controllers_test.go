package membership

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
	"github.com/dropDatabas3/stocklink/internal/http/middlewares"
	svc "github.com/dropDatabas3/stocklink/internal/http/services/membership"
)

// Stubs mínimos para armar los services reales detrás de los controllers.

type stubCompanies struct{}

func (stubCompanies) GetByID(_ context.Context, id string) (*repository.Company, error) {
	return &repository.Company{ID: id, Name: "Acme SA"}, nil
}

type stubUsers struct {
	byEmail map[string]*repository.User
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	if u, ok := s.byEmail[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*repository.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubUsers) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	u := &repository.User{ID: "u-new", Email: strings.ToLower(in.Email)}
	s.byEmail[u.Email] = u
	return u, nil
}

func (s *stubUsers) UpdatePasswordHash(context.Context, string, string) error { return nil }
func (s *stubUsers) MergeProfile(context.Context, string, repository.ProfilePatch) error {
	return nil
}
func (s *stubUsers) Delete(context.Context, string) error { return nil }

type stubMemberships struct {
	rows map[[2]string]*repository.Membership
}

func (s *stubMemberships) Get(_ context.Context, companyID, userID string) (*repository.Membership, error) {
	if m, ok := s.rows[[2]string{companyID, userID}]; ok {
		return m, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubMemberships) Upsert(_ context.Context, companyID, userID string, role repository.Role) (*repository.Membership, error) {
	return &repository.Membership{ID: "mem-1", CompanyID: companyID, UserID: userID, Role: role}, nil
}

func (s *stubMemberships) DeleteByUser(context.Context, string) error { return nil }

type stubInvites struct{}

func (stubInvites) CreateWithMembership(_ context.Context, in repository.CreateInviteInput) (*repository.Invite, *repository.Membership, error) {
	inv := &repository.Invite{ID: "inv-1", CompanyID: in.CompanyID, Email: in.Email, Role: in.Role, Status: in.Status, UserID: in.UserID}
	mem := &repository.Membership{ID: "mem-1", CompanyID: in.CompanyID, UserID: in.UserID, Role: in.Role}
	return inv, mem, nil
}

func (stubInvites) DeleteByUser(context.Context, string) error { return nil }

type stubMailer struct{}

func (stubMailer) SendInvite(context.Context, string, string, string) error { return nil }

type stubJoinCodes struct {
	revoked []string
}

func (s *stubJoinCodes) Create(_ context.Context, in repository.CreateJoinCodeInput) (*repository.JoinCode, error) {
	now := time.Now()
	return &repository.JoinCode{
		ID: "jc-1", CompanyID: in.CompanyID, Role: in.Role, CodeHash: in.CodeHash,
		MaxUses: in.MaxUses, ExpiresAt: in.ExpiresAt, CreatedBy: in.CreatedBy, CreatedAt: now,
	}, nil
}

func (s *stubJoinCodes) GetActiveByHash(context.Context, string) (*repository.JoinCode, error) {
	return nil, repository.ErrNotFound
}

func (s *stubJoinCodes) Redeem(context.Context, string, string) (*repository.RedeemResult, error) {
	return nil, repository.ErrNotFound
}

func (s *stubJoinCodes) Revoke(_ context.Context, companyID, codeID string) error {
	s.revoked = append(s.revoked, codeID)
	return nil
}

func managerMemberships() *stubMemberships {
	return &stubMemberships{rows: map[[2]string]*repository.Membership{
		{"c-1", "admin-1"}: {ID: "m-admin", CompanyID: "c-1", UserID: "admin-1", Role: repository.RoleAdmin},
	}}
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	return r.WithContext(middlewares.WithUserID(r.Context(), "admin-1"))
}

func TestInviteWireFormat(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*repository.User{
		"bob@example.com": {ID: "u-2", Email: "bob@example.com"},
	}}
	ctrl := NewInviteController(svc.NewInviteService(stubCompanies{}, users, managerMemberships(), stubInvites{}, stubMailer{}))

	w := httptest.NewRecorder()
	ctrl.Invite(w, authedRequest(http.MethodPost, "/v2/companies/invite",
		`{"companyId":"c-1","email":"bob@example.com","role":"employee"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"inviteId", "membershipId", "alreadyRegistered", "status", "role"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("response sin clave %q: %s", key, w.Body.String())
		}
	}
	if got, _ := resp["alreadyRegistered"].(bool); !got {
		t.Error("alreadyRegistered = false, want true para usuario existente")
	}
	if resp["status"] != "accepted" {
		t.Errorf("status = %v", resp["status"])
	}
}

func TestInviteRejectsMissingCamelCaseFields(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*repository.User{}}
	ctrl := NewInviteController(svc.NewInviteService(stubCompanies{}, users, managerMemberships(), stubInvites{}, stubMailer{}))

	// claves desconocidas no aportan campos: companyId es la única forma
	w := httptest.NewRecorder()
	ctrl.Invite(w, authedRequest(http.MethodPost, "/v2/companies/invite",
		`{"company_id":"c-1","email":"bob@example.com","role":"employee"}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for body without companyId", w.Code)
	}
}

func TestCreateJoinCodeWireFormat(t *testing.T) {
	ctrl := NewJoinCodeController(svc.NewJoinCodeService(managerMemberships(), &stubJoinCodes{}))

	w := httptest.NewRecorder()
	ctrl.Create(w, authedRequest(http.MethodPost, "/v2/companies/join-codes",
		`{"companyId":"c-1","role":"employee","maxUses":5,"expiresIn":"24h"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"id", "code", "companyId", "role", "maxUses", "expiresAt"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("response sin clave %q: %s", key, w.Body.String())
		}
	}
	if code, _ := resp["code"].(string); len(code) != 8 {
		t.Errorf("code = %v, want 8 chars en claro", resp["code"])
	}
}

func TestRevokeJoinCodeNoContent(t *testing.T) {
	codes := &stubJoinCodes{}
	ctrl := NewJoinCodeController(svc.NewJoinCodeService(managerMemberships(), codes))

	mux := http.NewServeMux()
	mux.Handle("DELETE /v2/companies/join-codes/{id}", http.HandlerFunc(ctrl.Revoke))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, authedRequest(http.MethodDelete, "/v2/companies/join-codes/jc-1?companyId=c-1", ""))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
	if len(codes.revoked) != 1 || codes.revoked[0] != "jc-1" {
		t.Errorf("revoked = %v", codes.revoked)
	}
}
