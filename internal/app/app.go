// Package app wires configuration, storage and HTTP surface into a handler.
package app

import (
	nethttp "net/http"

	"github.com/dropDatabas3/stocklink/internal/config"
	"github.com/dropDatabas3/stocklink/internal/email"
	httpx "github.com/dropDatabas3/stocklink/internal/http"
	authctrl "github.com/dropDatabas3/stocklink/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/stocklink/internal/http/controllers/health"
	linkctrl "github.com/dropDatabas3/stocklink/internal/http/controllers/link"
	membershipctrl "github.com/dropDatabas3/stocklink/internal/http/controllers/membership"
	mw "github.com/dropDatabas3/stocklink/internal/http/middlewares"
	"github.com/dropDatabas3/stocklink/internal/http/router"
	authsvc "github.com/dropDatabas3/stocklink/internal/http/services/auth"
	linksvc "github.com/dropDatabas3/stocklink/internal/http/services/link"
	membershipsvc "github.com/dropDatabas3/stocklink/internal/http/services/membership"
	jwtx "github.com/dropDatabas3/stocklink/internal/jwt"
	"github.com/dropDatabas3/stocklink/internal/rate"
	"github.com/dropDatabas3/stocklink/internal/shopify"
	"github.com/dropDatabas3/stocklink/internal/store/pg"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps holds raw dependencies required to build the app.
type Deps struct {
	Config       *config.Config
	Store        *pg.Store
	Issuer       *jwtx.Issuer
	Mailer       email.Sender
	LoginLimiter rate.Limiter
}

// App represents the wired application.
type App struct {
	Handler nethttp.Handler
}

// New creates and wires the application.
func New(deps Deps) (*App, error) {
	cfg := deps.Config

	// 1. External clients
	admin := shopify.NewAdminClient(cfg.Shopify.APIKey, cfg.Shopify.APISecret)
	storefront := shopify.NewStorefrontClient(
		shopify.NormalizeShopDomain(cfg.Shopify.Domain),
		cfg.Shopify.StorefrontToken,
	)

	// 2. Services
	codec := linksvc.NewCodec(cfg.Shopify.APISecret)
	connectSvc := linksvc.NewConnectService(cfg.Shopify.APIKey, cfg.Shopify.Scopes, cfg.Shopify.RedirectBase, codec)
	callbackSvc := linksvc.NewCallbackService(cfg.Shopify.APISecret, codec, admin, deps.Store.ShopLinks())

	loginSvc := authsvc.NewLoginService(storefront, deps.Store.Users(), deps.Issuer)
	signupSvc := authsvc.NewSignupService(storefront, loginSvc)
	refreshSvc := authsvc.NewRefreshService(deps.Store.Users(), deps.Issuer)
	accountSvc := authsvc.NewAccountService(deps.Store.Users(), deps.Store.Memberships(), deps.Store.Invites())

	inviteSvc := membershipsvc.NewInviteService(
		deps.Store.Companies(),
		deps.Store.Users(),
		deps.Store.Memberships(),
		deps.Store.Invites(),
		deps.Mailer,
	)
	joinCodeSvc := membershipsvc.NewJoinCodeService(deps.Store.Memberships(), deps.Store.JoinCodes())

	// 3. Metrics
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{
		Pool: func() *pgxpool.Pool { return deps.Store.Pool() },
	})
	if err != nil {
		return nil, err
	}

	// 4. Controllers + routes
	mux := nethttp.NewServeMux()
	router.Register(router.Deps{
		Mux:            mux,
		Connect:        linkctrl.NewConnectController(connectSvc, cfg),
		Callback:       linkctrl.NewCallbackController(callbackSvc, cfg.Shopify.SuccessRedirect, cfg.Shopify.ErrorRedirect),
		Login:          authctrl.NewLoginController(loginSvc),
		Signup:         authctrl.NewSignupController(signupSvc),
		Refresh:        authctrl.NewRefreshController(refreshSvc),
		Account:        authctrl.NewAccountController(accountSvc),
		Invite:         membershipctrl.NewInviteController(inviteSvc),
		JoinCodes:      membershipctrl.NewJoinCodeController(joinCodeSvc),
		Health:         healthctrl.NewController(deps.Store),
		AuthMiddleware: mw.RequireAuth(deps.Issuer),
		LoginLimiter:   deps.LoginLimiter,
		Metrics:        metricsHandler,
	})

	return &App{Handler: httpx.WithMetrics(mux)}, nil
}
