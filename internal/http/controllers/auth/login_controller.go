// Package auth exposes the credential-based session endpoints.
package auth

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/stocklink/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/stocklink/internal/http/errors"
	"github.com/dropDatabas3/stocklink/internal/http/helpers"
	svc "github.com/dropDatabas3/stocklink/internal/http/services/auth"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
	"github.com/dropDatabas3/stocklink/internal/shopify"
	"go.uber.org/zap"
)

// LoginController handles POST /v2/auth/shopify/login
type LoginController struct {
	service *svc.LoginService
}

// NewLoginController creates a new LoginController.
func NewLoginController(service *svc.LoginService) *LoginController {
	return &LoginController{service: service}
}

func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	sess, err := c.service.Login(ctx, req.Email, req.Password, svc.Profile{})
	if err != nil {
		writeAuthError(w, log, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, sessionResponse(sess))
}

// sessionResponse maps the internal session to the wire format.
func sessionResponse(s *svc.Session) dto.SessionResponse {
	return dto.SessionResponse{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.ExpiresIn,
		RefreshToken: s.RefreshToken,
		UserID:       s.UserID,
		IsNewUser:    s.IsNewUser,
	}
}

// writeAuthError maps auth service errors to HTTP responses.
// Platform user errors keep the platform's message (credential feedback);
// everything else is generic so upstream details never leak.
func writeAuthError(w http.ResponseWriter, log *zap.Logger, err error) {
	if ue, ok := shopify.IsUserError(err); ok {
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials.WithDetail(ue.Message))
		return
	}
	switch {
	case errors.Is(err, svc.ErrMissingCredentials):
		httperrors.WriteError(w, httperrors.ErrMissingFields)
	case errors.Is(err, svc.ErrInvalidRefresh):
		httperrors.WriteError(w, httperrors.ErrTokenInvalid)
	case errors.Is(err, svc.ErrAddressFailed):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("no se pudo registrar la dirección"))
	case errors.Is(err, svc.ErrProvisionFailed):
		log.Error("provisioning failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrPersistence)
	default:
		log.Error("auth flow failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrUpstream)
	}
}
