package link

import (
	"errors"
	"net/http"
	"net/url"

	svc "github.com/dropDatabas3/stocklink/internal/http/services/link"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
)

// CallbackController finishes the shop authorization flow.
// It never renders errors: the browser is always redirected back to the
// app with a status, so upstream details stay in the logs.
type CallbackController struct {
	service         *svc.CallbackService
	successRedirect string
	errorRedirect   string
}

// NewCallbackController creates a new CallbackController.
func NewCallbackController(service *svc.CallbackService, successRedirect, errorRedirect string) *CallbackController {
	return &CallbackController{
		service:         service,
		successRedirect: successRedirect,
		errorRedirect:   errorRedirect,
	}
}

// Callback handles GET /v2/shopify/callback
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Redirect(w, r, c.errorURL("method"), http.StatusFound)
		return
	}

	result, err := c.service.HandleCallback(ctx, r.URL.Query())
	if err != nil {
		log.Warn("callback rejected", logger.Err(err))
		http.Redirect(w, r, c.errorURL(reasonFor(err)), http.StatusFound)
		return
	}

	target := c.successRedirect
	if u, perr := url.Parse(target); perr == nil {
		q := u.Query()
		q.Set("shop", result.ShopDomain)
		u.RawQuery = q.Encode()
		target = u.String()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// reasonFor maps service errors to an opaque reason code for the app.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, svc.ErrBadSignature):
		return "signature"
	case errors.Is(err, svc.ErrMissingParams):
		return "params"
	case errors.Is(err, svc.ErrStateInvalid):
		return "state"
	case errors.Is(err, svc.ErrStateExpired):
		return "expired"
	case errors.Is(err, svc.ErrExchangeFailed):
		return "exchange"
	case errors.Is(err, svc.ErrPersistFailed):
		return "storage"
	}
	return "unknown"
}

func (c *CallbackController) errorURL(reason string) string {
	u, err := url.Parse(c.errorRedirect)
	if err != nil {
		return c.errorRedirect
	}
	q := u.Query()
	q.Set("reason", reason)
	u.RawQuery = q.Encode()
	return u.String()
}
