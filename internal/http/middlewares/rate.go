package middlewares

import (
	"net"
	"net/http"
	"strings"

	"github.com/dropDatabas3/stocklink/internal/http/errors"
	"github.com/dropDatabas3/stocklink/internal/observability/logger"
	"github.com/dropDatabas3/stocklink/internal/rate"
)

// clientIP extrae la IP del cliente, considerando proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// WithRateLimit limita por IP + path usando el limiter dado.
// Si limiter es nil el middleware es un passthrough.
func WithRateLimit(limiter rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r) + ":" + r.URL.Path
			ok, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// el limiter no debe tumbar el endpoint
				logger.From(r.Context()).Warn("rate limiter error",
					logger.Op("rate_limit"), logger.Err(err))
			}
			if !ok {
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
