package membership

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/stocklink/internal/domain/repository"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
	"github.com/dropDatabas3/stocklink/internal/security/token"
)

var (
	ErrCodeMissing   = errors.New("code required")
	ErrCodeNotFound  = errors.New("join code not found")
	ErrCodeExpired   = errors.New("join code expired")
	ErrCodeExhausted = errors.New("join code exhausted")
)

const joinCodeLength = 8

// JoinCodeService emite, canjea y revoca códigos de auto-admisión.
type JoinCodeService struct {
	Memberships repository.MembershipRepository
	JoinCodes   repository.JoinCodeRepository
}

func NewJoinCodeService(memberships repository.MembershipRepository, codes repository.JoinCodeRepository) *JoinCodeService {
	return &JoinCodeService{Memberships: memberships, JoinCodes: codes}
}

// JoinResult describe la membresía resultante de un canje.
type JoinResult struct {
	CompanyID    string
	Role         repository.Role
	MembershipID string
}

// Redeem canjea el código para el usuario. La comparación es sobre el hash
// del código normalizado; el incremento de usos es atómico en el store, así
// que dos canjes simultáneos del último cupo nunca lo exceden.
func (s *JoinCodeService) Redeem(ctx context.Context, userID, code string) (*JoinResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("join_code_redeem"))

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCodeMissing
	}
	hash := token.SHA256Hex(code)

	res, err := s.JoinCodes.Redeem(ctx, hash, userID)
	if err != nil {
		switch {
		case repository.IsNotFound(err):
			return nil, ErrCodeNotFound
		case errors.Is(err, repository.ErrCodeExpired):
			return nil, ErrCodeExpired
		case errors.Is(err, repository.ErrCodeExhausted):
			return nil, ErrCodeExhausted
		}
		log.Error("redeem failed", logger.Err(err))
		return nil, err
	}

	log.Info("join code redeemed",
		logger.CompanyID(res.CompanyID),
		logger.UserID(userID),
		logger.Role(string(res.Role)),
	)
	return &JoinResult{
		CompanyID:    res.CompanyID,
		Role:         res.Role,
		MembershipID: res.MembershipID,
	}, nil
}

// CreatedCode es el resultado de emitir un código: el texto en claro
// solo existe acá, después únicamente queda el hash.
type CreatedCode struct {
	ID        string
	Code      string
	CompanyID string
	Role      repository.Role
	MaxUses   *int
	ExpiresAt *time.Time
}

// Create emite un código nuevo. requesterID debe ser owner o admin.
func (s *JoinCodeService) Create(ctx context.Context, requesterID, companyID, role string, maxUses *int, expiresIn time.Duration) (*CreatedCode, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("join_code_create"))

	if companyID == "" || role == "" {
		return nil, ErrMissingFields
	}
	if !repository.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if err := s.requireManager(ctx, companyID, requesterID); err != nil {
		return nil, err
	}

	plain, err := token.GenerateJoinCode(joinCodeLength)
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if expiresIn > 0 {
		t := time.Now().Add(expiresIn)
		expiresAt = &t
	}

	created, err := s.JoinCodes.Create(ctx, repository.CreateJoinCodeInput{
		CompanyID: companyID,
		Role:      repository.Role(role),
		CodeHash:  token.SHA256Hex(plain),
		MaxUses:   maxUses,
		ExpiresAt: expiresAt,
		CreatedBy: requesterID,
	})
	if err != nil {
		return nil, err
	}

	log.Info("join code created",
		logger.CompanyID(companyID),
		logger.JoinCodeID(created.ID),
		logger.Role(role),
	)
	return &CreatedCode{
		ID:        created.ID,
		Code:      plain,
		CompanyID: created.CompanyID,
		Role:      created.Role,
		MaxUses:   created.MaxUses,
		ExpiresAt: created.ExpiresAt,
	}, nil
}

// Revoke invalida un código. requesterID debe ser owner o admin.
func (s *JoinCodeService) Revoke(ctx context.Context, requesterID, companyID, codeID string) error {
	if companyID == "" || codeID == "" {
		return ErrMissingFields
	}
	if err := s.requireManager(ctx, companyID, requesterID); err != nil {
		return err
	}

	if err := s.JoinCodes.Revoke(ctx, companyID, codeID); err != nil {
		if repository.IsNotFound(err) {
			return ErrCodeNotFound
		}
		return err
	}

	logger.From(ctx).Info("join code revoked",
		logger.Layer("service"),
		logger.CompanyID(companyID),
		logger.JoinCodeID(codeID),
	)
	return nil
}

func (s *JoinCodeService) requireManager(ctx context.Context, companyID, requesterID string) error {
	mem, err := s.Memberships.Get(ctx, companyID, requesterID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotAuthorized
		}
		return err
	}
	if !mem.Role.CanInvite() {
		return ErrNotAuthorized
	}
	return nil
}
