package membership

import (
	"net/http"
	"time"

	dto "github.com/dropDatabas3/stocklink/internal/http/dto/membership"
	httperrors "github.com/dropDatabas3/stocklink/internal/http/errors"
	"github.com/dropDatabas3/stocklink/internal/http/helpers"
	"github.com/dropDatabas3/stocklink/internal/http/middlewares"
	svc "github.com/dropDatabas3/stocklink/internal/http/services/membership"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
)

// JoinCodeController handles the join code endpoints.
type JoinCodeController struct {
	service *svc.JoinCodeService
}

// NewJoinCodeController creates a new JoinCodeController.
func NewJoinCodeController(service *svc.JoinCodeService) *JoinCodeController {
	return &JoinCodeController{service: service}
}

// Join handles POST /v2/companies/join-code
func (c *JoinCodeController) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("JoinCodeController.Join"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.JoinRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Redeem(ctx, userID, req.Code)
	if err != nil {
		writeMembershipError(w, log, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.JoinResponse{
		CompanyID:    result.CompanyID,
		MembershipID: result.MembershipID,
		Role:         string(result.Role),
	})
}

// Create handles POST /v2/companies/join-codes
func (c *JoinCodeController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("JoinCodeController.Create"))

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

	var req dto.CreateJoinCodeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	var expiresIn time.Duration
	if req.ExpiresIn != "" {
		d, err := time.ParseDuration(req.ExpiresIn)
		if err != nil || d <= 0 {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("expiresIn inválido"))
			return
		}
		expiresIn = d
	}

	created, err := c.service.Create(ctx, requesterID, req.CompanyID, req.Role, req.MaxUses, expiresIn)
	if err != nil {
		writeMembershipError(w, log, err)
		return
	}

	resp := dto.CreateJoinCodeResponse{
		ID:        created.ID,
		Code:      created.Code,
		CompanyID: created.CompanyID,
		Role:      string(created.Role),
		MaxUses:   created.MaxUses,
	}
	if created.ExpiresAt != nil {
		resp.ExpiresAt = created.ExpiresAt.UTC().Format(time.RFC3339)
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Revoke handles DELETE /v2/companies/join-codes/{id}
func (c *JoinCodeController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("JoinCodeController.Revoke"))

	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	requesterID := middlewares.GetUserID(ctx)
	if requesterID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	codeID := r.PathValue("id")
	companyID := r.URL.Query().Get("companyId")
	if codeID == "" || companyID == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("id y companyId requeridos"))
		return
	}

	if err := c.service.Revoke(ctx, requesterID, companyID, codeID); err != nil {
		writeMembershipError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
