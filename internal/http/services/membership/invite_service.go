// Package membership implementa la admisión a empresas: invitación directa
// con autorización por rol y auto-admisión por join code.
package membership

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
	"github.com/dropDatabas3/stocklink/internal/email"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
	"github.com/dropDatabas3/stocklink/internal/security/password"
	"github.com/dropDatabas3/stocklink/internal/security/token"
)

var (
	ErrMissingFields  = errors.New("company, email and role required")
	ErrInvalidRole    = errors.New("invalid role")
	ErrNotAuthorized  = errors.New("requester cannot manage members")
	ErrCompanyMissing = errors.New("company not found")
	ErrAlreadyMember  = errors.New("user is already a member")
)

// InviteResult describe la invitación creada.
type InviteResult struct {
	InviteID          string
	MembershipID      string
	UserID            string
	Status            repository.InviteStatus
	Role              repository.Role
	AlreadyRegistered bool
}

// InviteService procesa invitaciones directas.
type InviteService struct {
	Companies   repository.CompanyRepository
	Users       repository.UserRepository
	Memberships repository.MembershipRepository
	Invites     repository.InviteRepository
	Mailer      email.Sender
}

func NewInviteService(
	companies repository.CompanyRepository,
	users repository.UserRepository,
	memberships repository.MembershipRepository,
	invites repository.InviteRepository,
	mailer email.Sender,
) *InviteService {
	return &InviteService{
		Companies:   companies,
		Users:       users,
		Memberships: memberships,
		Invites:     invites,
		Mailer:      mailer,
	}
}

// Invite invita a targetEmail a la empresa con el rol dado.
// requesterID debe ser owner o admin de esa empresa.
func (s *InviteService) Invite(ctx context.Context, requesterID, companyID, targetEmail, role, notes string) (*InviteResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("invite"))

	targetEmail = strings.TrimSpace(strings.ToLower(targetEmail))
	if companyID == "" || targetEmail == "" || role == "" {
		return nil, ErrMissingFields
	}
	if !repository.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	// Paso 1: autorización del solicitante sobre la empresa destino
	reqMem, err := s.Memberships.Get(ctx, companyID, requesterID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}
	if !reqMem.Role.CanInvite() {
		return nil, ErrNotAuthorized
	}

	company, err := s.Companies.GetByID(ctx, companyID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCompanyMissing
		}
		return nil, err
	}

	// Paso 2: resolver el invitado; si no existe se aprovisiona pre-confirmado
	status := repository.InviteStatusAccepted
	alreadyRegistered := true
	target, err := s.Users.GetByEmail(ctx, targetEmail)
	if repository.IsNotFound(err) {
		target, err = s.provision(ctx, targetEmail, companyID)
		status = repository.InviteStatusPending
		alreadyRegistered = false
	}
	if err != nil {
		log.Error("target resolution failed", logger.Email(targetEmail), logger.Err(err))
		return nil, err
	}

	// Paso 3: membresía existente → conflicto
	if _, err := s.Memberships.Get(ctx, companyID, target.ID); err == nil {
		return nil, ErrAlreadyMember
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	// Paso 4: invitación + membresía en una sola transacción
	inviteToken, err := token.GenerateOpaqueToken(32)
	if err != nil {
		return nil, err
	}
	inv, mem, err := s.Invites.CreateWithMembership(ctx, repository.CreateInviteInput{
		CompanyID:   companyID,
		Email:       targetEmail,
		Role:        repository.Role(role),
		Status:      status,
		InviteToken: inviteToken,
		UserID:      target.ID,
		InvitedBy:   requesterID,
		Notes:       notes,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	// Paso 5: correo de cortesía (best-effort)
	if !alreadyRegistered && s.Mailer != nil {
		if err := s.Mailer.SendInvite(ctx, targetEmail, company.Name, role); err != nil {
			log.Warn("invite email failed", logger.Email(targetEmail), logger.Err(err))
		}
	}

	log.Info("member invited",
		logger.CompanyID(companyID),
		logger.UserID(target.ID),
		logger.Role(role),
		logger.Bool("already_registered", alreadyRegistered),
	)
	return &InviteResult{
		InviteID:          inv.ID,
		MembershipID:      mem.ID,
		UserID:            target.ID,
		Status:            inv.Status,
		Role:              inv.Role,
		AlreadyRegistered: alreadyRegistered,
	}, nil
}

func (s *InviteService) provision(ctx context.Context, email, companyID string) (*repository.User, error) {
	hash, err := password.Hash(password.Default, uuid.NewString())
	if err != nil {
		return nil, err
	}
	u, err := s.Users.Create(ctx, repository.CreateUserInput{
		Email:            email,
		PasswordHash:     hash,
		EmailVerified:    true,
		InvitedCompanyID: companyID,
	})
	if repository.IsConflict(err) {
		// carrera con un registro simultáneo: releer
		return s.Users.GetByEmail(ctx, email)
	}
	return u, err
}
