package auth

import (
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/stocklink/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/stocklink/internal/http/errors"
	"github.com/dropDatabas3/stocklink/internal/http/helpers"
	svc "github.com/dropDatabas3/stocklink/internal/http/services/auth"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
)

// SignupController handles POST /v2/auth/shopify/signup
type SignupController struct {
	service *svc.SignupService
}

// NewSignupController creates a new SignupController.
func NewSignupController(service *svc.SignupService) *SignupController {
	return &SignupController{service: service}
}

func (c *SignupController) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SignupController.Signup"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	var req dto.SignupRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email y password son obligatorios"))
		return
	}

	sess, err := c.service.Signup(ctx, svc.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		Province:  req.Province,
		Zip:       req.Zip,
		Country:   req.Country,
	})
	if err != nil {
		writeAuthError(w, log, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, sessionResponse(sess))
}
