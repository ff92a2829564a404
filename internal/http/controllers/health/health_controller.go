// Package health exposes liveness/readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/stocklink/internal/http/helpers"
)

// Pinger abstracts the storage health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller handles /healthz and /readyz.
type Controller struct {
	store Pinger
}

// NewController creates a new health Controller.
func NewController(store Pinger) *Controller {
	return &Controller{store: store}
}

// Healthz reports process liveness.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness: storage must answer a ping.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if c.store != nil {
		if err := c.store.Ping(ctx); err != nil {
			helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"reason": "storage",
			})
			return
		}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
