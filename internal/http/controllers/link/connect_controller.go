// Package link exposes the shop connection endpoints.
package link

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/dropDatabas3/stocklink/internal/config"
	httperrors "github.com/dropDatabas3/stocklink/internal/http/errors"
	svc "github.com/dropDatabas3/stocklink/internal/http/services/link"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
)

// ConnectController starts the shop authorization flow.
type ConnectController struct {
	service *svc.ConnectService
	cfg     *config.Config
}

// NewConnectController creates a new ConnectController.
func NewConnectController(service *svc.ConnectService, cfg *config.Config) *ConnectController {
	return &ConnectController{service: service, cfg: cfg}
}

var instructionsTmpl = template.Must(template.New("connect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Conectar tienda</title></head>
<body>
  <h1>Conectar tienda Shopify</h1>
  <p>Falta el identificador de empresa. Volvé a la aplicación y usá el
  botón <strong>Conectar Shopify</strong> desde la configuración de tu
  empresa, que incluye el parámetro <code>companyId</code>.</p>
</body>
</html>`))

type connectBody struct {
	CompanyID  string `json:"companyId"`
	CompanyID2 string `json:"company_id"`
	Shop       string `json:"shop"`
	ShopDomain string `json:"shopDomain"`
}

// Connect handles GET/POST /v2/shopify/connect
func (c *ConnectController) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ConnectController.Connect"))

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	companyID, shop := extractParams(r)

	// Without a company the flow cannot be attributed: render instructions
	// instead of an error page (the link may come from a pasted URL).
	if companyID == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = instructionsTmpl.Execute(w, nil)
		return
	}

	if missing := c.cfg.MissingLinkKeys(); len(missing) > 0 {
		log.Error("integration config incomplete", logger.String("missing", strings.Join(missing, ",")))
		httperrors.WriteError(w, httperrors.ErrConfigMissing)
		return
	}

	authURL, err := c.service.AuthorizeURL(companyID, shop)
	if err != nil {
		if err == svc.ErrShopMissing {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("shop required"))
			return
		}
		log.Error("authorize url build failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	log.Info("redirecting to shop authorization", logger.CompanyID(companyID))
	http.Redirect(w, r, authURL, http.StatusFound)
}

// extractParams accepts both naming conventions, from query string or body.
func extractParams(r *http.Request) (companyID, shop string) {
	q := r.URL.Query()
	companyID = firstNonEmpty(q.Get("companyId"), q.Get("company_id"))
	shop = firstNonEmpty(q.Get("shop"), q.Get("shopDomain"))

	if r.Method == http.MethodPost && (companyID == "" || shop == "") {
		ct := strings.ToLower(r.Header.Get("Content-Type"))
		switch {
		case strings.Contains(ct, "application/json"):
			var body connectBody
			r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				companyID = firstNonEmpty(companyID, body.CompanyID, body.CompanyID2)
				shop = firstNonEmpty(shop, body.Shop, body.ShopDomain)
			}
		case strings.Contains(ct, "application/x-www-form-urlencoded"):
			if err := r.ParseForm(); err == nil {
				companyID = firstNonEmpty(companyID, r.PostFormValue("companyId"), r.PostFormValue("company_id"))
				shop = firstNonEmpty(shop, r.PostFormValue("shop"), r.PostFormValue("shopDomain"))
			}
		}
	}
	return strings.TrimSpace(companyID), strings.TrimSpace(shop)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
