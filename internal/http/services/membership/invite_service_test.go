package membership

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
)

type fakeCompanies struct {
	companies map[string]*repository.Company
}

func (f *fakeCompanies) GetByID(ctx context.Context, id string) (*repository.Company, error) {
	if c, ok := f.companies[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type fakeUsers struct {
	byEmail   map[string]*repository.User
	createErr error
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	if u, ok := f.byEmail[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*repository.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[strings.ToLower(in.Email)]; ok {
		return nil, repository.ErrConflict
	}
	u := &repository.User{ID: "u-" + in.Email, Email: in.Email, EmailVerified: in.EmailVerified}
	if in.InvitedCompanyID != "" {
		cid := in.InvitedCompanyID
		u.InvitedCompanyID = &cid
	}
	f.byEmail[strings.ToLower(in.Email)] = u
	return u, nil
}

func (f *fakeUsers) UpdatePasswordHash(ctx context.Context, id, hash string) error { return nil }
func (f *fakeUsers) MergeProfile(ctx context.Context, id string, p repository.ProfilePatch) error {
	return nil
}
func (f *fakeUsers) Delete(ctx context.Context, id string) error { return nil }

type memKey struct{ company, user string }

type fakeMemberships struct {
	rows map[memKey]*repository.Membership
}

func newFakeMemberships() *fakeMemberships {
	return &fakeMemberships{rows: map[memKey]*repository.Membership{}}
}

func (f *fakeMemberships) Get(ctx context.Context, companyID, userID string) (*repository.Membership, error) {
	if m, ok := f.rows[memKey{companyID, userID}]; ok {
		return m, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMemberships) Upsert(ctx context.Context, companyID, userID string, role repository.Role) (*repository.Membership, error) {
	m := &repository.Membership{ID: "m-" + userID, CompanyID: companyID, UserID: userID, Role: role}
	f.rows[memKey{companyID, userID}] = m
	return m, nil
}

func (f *fakeMemberships) DeleteByUser(ctx context.Context, userID string) error { return nil }

type fakeInvites struct {
	memberships *fakeMemberships
	createErr   error
	created     []repository.CreateInviteInput
}

func (f *fakeInvites) CreateWithMembership(ctx context.Context, in repository.CreateInviteInput) (*repository.Invite, *repository.Membership, error) {
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	f.created = append(f.created, in)
	mem, _ := f.memberships.Upsert(ctx, in.CompanyID, in.UserID, in.Role)
	inv := &repository.Invite{
		ID:        "inv-1",
		CompanyID: in.CompanyID,
		Email:     in.Email,
		Role:      in.Role,
		Status:    in.Status,
		UserID:    in.UserID,
		InvitedBy: in.InvitedBy,
	}
	return inv, mem, nil
}

func (f *fakeInvites) DeleteByUser(ctx context.Context, userID string) error { return nil }

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendInvite(ctx context.Context, to, companyName, role string) error {
	f.sent = append(f.sent, to)
	return f.err
}

func newInviteFixture() (*InviteService, *fakeUsers, *fakeMemberships, *fakeInvites, *fakeMailer) {
	mems := newFakeMemberships()
	mems.rows[memKey{"c-1", "admin-1"}] = &repository.Membership{
		ID: "m-admin", CompanyID: "c-1", UserID: "admin-1", Role: repository.RoleAdmin,
	}
	mems.rows[memKey{"c-1", "emp-1"}] = &repository.Membership{
		ID: "m-emp", CompanyID: "c-1", UserID: "emp-1", Role: repository.RoleEmployee,
	}
	users := &fakeUsers{byEmail: map[string]*repository.User{}}
	invites := &fakeInvites{memberships: mems}
	mailer := &fakeMailer{}
	companies := &fakeCompanies{companies: map[string]*repository.Company{
		"c-1": {ID: "c-1", Name: "Acme SA"},
	}}
	svc := NewInviteService(companies, users, mems, invites, mailer)
	return svc, users, mems, invites, mailer
}

func TestInviteProvisionsNewUser(t *testing.T) {
	svc, users, _, invites, mailer := newInviteFixture()

	res, err := svc.Invite(context.Background(), "admin-1", "c-1", "Nuevo@Example.com", "employee", "bienvenido")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if res.AlreadyRegistered {
		t.Error("AlreadyRegistered = true for a provisioned user")
	}
	if res.Status != repository.InviteStatusPending {
		t.Errorf("Status = %s, want pending", res.Status)
	}
	u, err := users.GetByEmail(context.Background(), "nuevo@example.com")
	if err != nil {
		t.Fatalf("user not provisioned: %v", err)
	}
	if u.InvitedCompanyID == nil || *u.InvitedCompanyID != "c-1" {
		t.Errorf("InvitedCompanyID = %v", u.InvitedCompanyID)
	}
	if len(invites.created) != 1 || invites.created[0].Email != "nuevo@example.com" {
		t.Errorf("created invites = %+v", invites.created)
	}
	if invites.created[0].InviteToken == "" {
		t.Error("invite token must be generated")
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "nuevo@example.com" {
		t.Errorf("mailer.sent = %v", mailer.sent)
	}
}

func TestInviteExistingUserAccepted(t *testing.T) {
	svc, users, _, _, mailer := newInviteFixture()
	users.byEmail["ana@example.com"] = &repository.User{ID: "u-ana", Email: "ana@example.com"}

	res, err := svc.Invite(context.Background(), "admin-1", "c-1", "ana@example.com", "viewer", "")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if !res.AlreadyRegistered || res.Status != repository.InviteStatusAccepted {
		t.Errorf("result = %+v", res)
	}
	// usuarios ya registrados no reciben el correo de alta
	if len(mailer.sent) != 0 {
		t.Errorf("mailer.sent = %v, want none", mailer.sent)
	}
}

func TestInviteRequesterNotAuthorized(t *testing.T) {
	svc, _, _, _, _ := newInviteFixture()

	// employee no puede invitar
	if _, err := svc.Invite(context.Background(), "emp-1", "c-1", "x@example.com", "viewer", ""); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
	// sin membresía tampoco
	if _, err := svc.Invite(context.Background(), "ghost", "c-1", "x@example.com", "viewer", ""); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestInviteAlreadyMember(t *testing.T) {
	svc, users, mems, _, _ := newInviteFixture()
	users.byEmail["emp@example.com"] = &repository.User{ID: "emp-1", Email: "emp@example.com"}
	_ = mems // emp-1 ya es miembro de c-1 desde el fixture

	if _, err := svc.Invite(context.Background(), "admin-1", "c-1", "emp@example.com", "viewer", ""); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestInviteConflictOnTxMapsToAlreadyMember(t *testing.T) {
	svc, users, _, invites, _ := newInviteFixture()
	users.byEmail["ana@example.com"] = &repository.User{ID: "u-ana", Email: "ana@example.com"}
	invites.createErr = repository.ErrConflict

	if _, err := svc.Invite(context.Background(), "admin-1", "c-1", "ana@example.com", "viewer", ""); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestInviteValidation(t *testing.T) {
	svc, _, _, _, _ := newInviteFixture()

	if _, err := svc.Invite(context.Background(), "admin-1", "", "x@example.com", "viewer", ""); !errors.Is(err, ErrMissingFields) {
		t.Errorf("missing company: err = %v", err)
	}
	if _, err := svc.Invite(context.Background(), "admin-1", "c-1", "x@example.com", "superuser", ""); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("bad role: err = %v", err)
	}
}

func TestInviteCompanyMissing(t *testing.T) {
	svc, _, mems, _, _ := newInviteFixture()
	mems.rows[memKey{"c-ghost", "admin-1"}] = &repository.Membership{
		ID: "m-x", CompanyID: "c-ghost", UserID: "admin-1", Role: repository.RoleOwner,
	}

	if _, err := svc.Invite(context.Background(), "admin-1", "c-ghost", "x@example.com", "viewer", ""); !errors.Is(err, ErrCompanyMissing) {
		t.Fatalf("err = %v, want ErrCompanyMissing", err)
	}
}

func TestInviteMailFailureIsNotFatal(t *testing.T) {
	svc, _, _, _, mailer := newInviteFixture()
	mailer.err = errors.New("smtp down")

	if _, err := svc.Invite(context.Background(), "admin-1", "c-1", "nuevo@example.com", "employee", ""); err != nil {
		t.Fatalf("Invite: %v (mail errors must be best-effort)", err)
	}
}
