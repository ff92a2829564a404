// Package router contains the route aggregator.
package router

import (
	"net/http"

	authctrl "github.com/dropDatabas3/stocklink/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/stocklink/internal/http/controllers/health"
	linkctrl "github.com/dropDatabas3/stocklink/internal/http/controllers/link"
	membershipctrl "github.com/dropDatabas3/stocklink/internal/http/controllers/membership"
	mw "github.com/dropDatabas3/stocklink/internal/http/middlewares"
	"github.com/dropDatabas3/stocklink/internal/rate"
)

// Deps contains all dependencies for the router.
type Deps struct {
	Mux *http.ServeMux

	// Controllers
	Connect   *linkctrl.ConnectController
	Callback  *linkctrl.CallbackController
	Login     *authctrl.LoginController
	Signup    *authctrl.SignupController
	Refresh   *authctrl.RefreshController
	Account   *authctrl.AccountController
	Invite    *membershipctrl.InviteController
	JoinCodes *membershipctrl.JoinCodeController
	Health    *healthctrl.Controller

	// Middlewares
	AuthMiddleware mw.Middleware // JWT validation
	LoginLimiter   rate.Limiter  // optional, nil = no limit

	// Metrics handler for /metrics (nil = not exposed)
	Metrics http.Handler
}

// Register registers all routes on the mux.
func Register(deps Deps) {
	mux := deps.Mux
	if mux == nil {
		return
	}

	// common middlewares, outermost first
	base := func(h http.Handler) http.Handler {
		return mw.Chain(h,
			mw.WithRecover(),
			mw.WithRequestID(),
			mw.WithSecurityHeaders(),
			mw.WithLogging(),
		)
	}
	authed := func(h http.Handler) http.Handler {
		return base(mw.Chain(h, deps.AuthMiddleware, mw.WithNoStore()))
	}
	limited := func(h http.Handler) http.Handler {
		return base(mw.Chain(h, mw.WithRateLimit(deps.LoginLimiter), mw.WithNoStore()))
	}

	// ── Shop connection (browser flow, no bearer auth) ──
	mux.Handle("/v2/shopify/connect", base(http.HandlerFunc(deps.Connect.Connect)))
	mux.Handle("/v2/shopify/callback", base(http.HandlerFunc(deps.Callback.Callback)))

	// ── Credential auth (rate-limited, tokens in response) ──
	mux.Handle("/v2/auth/shopify/login", limited(http.HandlerFunc(deps.Login.Login)))
	mux.Handle("/v2/auth/shopify/signup", limited(http.HandlerFunc(deps.Signup.Signup)))
	mux.Handle("/v2/auth/refresh", limited(http.HandlerFunc(deps.Refresh.Refresh)))

	// ── Authenticated surface ──
	mux.Handle("/v2/account", authed(http.HandlerFunc(deps.Account.Delete)))
	mux.Handle("/v2/companies/invite", authed(http.HandlerFunc(deps.Invite.Invite)))
	mux.Handle("/v2/companies/join-code", authed(http.HandlerFunc(deps.JoinCodes.Join)))
	mux.Handle("/v2/companies/join-codes", authed(http.HandlerFunc(deps.JoinCodes.Create)))
	mux.Handle("DELETE /v2/companies/join-codes/{id}", authed(http.HandlerFunc(deps.JoinCodes.Revoke)))

	// ── Probes y metrics ──
	mux.HandleFunc("/healthz", deps.Health.Healthz)
	mux.HandleFunc("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}
}
