// Package membership exposes the company admission endpoints.
package membership

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/stocklink/internal/http/dto/membership"
	httperrors "github.com/dropDatabas3/stocklink/internal/http/errors"
	"github.com/dropDatabas3/stocklink/internal/http/helpers"
	"github.com/dropDatabas3/stocklink/internal/http/middlewares"
	svc "github.com/dropDatabas3/stocklink/internal/http/services/membership"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
	"go.uber.org/zap"
)

// InviteController handles POST /v2/companies/invite
type InviteController struct {
	service *svc.InviteService
}

// NewInviteController creates a new InviteController.
func NewInviteController(service *svc.InviteService) *InviteController {
	return &InviteController{service: service}
}

func (c *InviteController) Invite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("InviteController.Invite"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	requesterID := middlewares.GetUserID(ctx)
	if requesterID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.InviteRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Invite(ctx, requesterID, req.CompanyID, req.Email, req.Role, req.Notes)
	if err != nil {
		writeMembershipError(w, log, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.InviteResponse{
		InviteID:          result.InviteID,
		MembershipID:      result.MembershipID,
		UserID:            result.UserID,
		AlreadyRegistered: result.AlreadyRegistered,
		Status:            string(result.Status),
		Role:              string(result.Role),
	})
}

// writeMembershipError maps membership service errors to HTTP responses.
func writeMembershipError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields), errors.Is(err, svc.ErrCodeMissing):
		httperrors.WriteError(w, httperrors.ErrMissingFields)
	case errors.Is(err, svc.ErrInvalidRole):
		httperrors.WriteError(w, httperrors.ErrInvalidRole)
	case errors.Is(err, svc.ErrNotAuthorized):
		httperrors.WriteError(w, httperrors.ErrRoleRequired)
	case errors.Is(err, svc.ErrCompanyMissing):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("empresa inexistente"))
	case errors.Is(err, svc.ErrAlreadyMember):
		httperrors.WriteError(w, httperrors.ErrAlreadyMember)
	case errors.Is(err, svc.ErrCodeNotFound):
		httperrors.WriteError(w, httperrors.ErrJoinCodeNotFound)
	case errors.Is(err, svc.ErrCodeExpired):
		httperrors.WriteError(w, httperrors.ErrJoinCodeExpired)
	case errors.Is(err, svc.ErrCodeExhausted):
		httperrors.WriteError(w, httperrors.ErrJoinCodeExhausted)
	default:
		log.Error("membership operation failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrPersistence)
	}
}
