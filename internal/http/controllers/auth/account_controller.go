package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/stocklink/internal/http/errors"
	"github.com/dropDatabas3/stocklink/internal/http/helpers"
	"github.com/dropDatabas3/stocklink/internal/http/middlewares"
	svc "github.com/dropDatabas3/stocklink/internal/http/services/auth"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
)

// AccountController handles DELETE /v2/account
type AccountController struct {
	service *svc.AccountService
}

// NewAccountController creates a new AccountController.
func NewAccountController(service *svc.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AccountController.Delete"))

	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	if err := c.service.Delete(ctx, userID); err != nil {
		log.Error("account teardown failed", logger.UserID(userID), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrPersistence)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
