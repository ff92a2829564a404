package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/stocklink/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/stocklink/internal/http/errors"
	"github.com/dropDatabas3/stocklink/internal/http/helpers"
	svc "github.com/dropDatabas3/stocklink/internal/http/services/auth"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
)

// RefreshController handles POST /v2/auth/refresh
type RefreshController struct {
	service *svc.RefreshService
}

// NewRefreshController creates a new RefreshController.
func NewRefreshController(service *svc.RefreshService) *RefreshController {
	return &RefreshController{service: service}
}

func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RefreshController.Refresh"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	var req dto.RefreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("refresh_token requerido"))
		return
	}

	sess, err := c.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		writeAuthError(w, log, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, sessionResponse(sess))
}
