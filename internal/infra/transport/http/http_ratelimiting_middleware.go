package http

import (
	"net"
	"net/http"
	"time"

	"github.com/mkrupp/taskcase/internal/infra/logging"
	"github.com/mkrupp/taskcase/internal/ratelimit"
)

// RatelimitingMiddleware creates middleware that gates every request through
// the rate limiter, keyed by the client's source address. It runs before
// authentication; rejected requests receive 429 and never reach a handler.
func RatelimitingMiddleware(
	next http.Handler,
	limiter *ratelimit.Limiter,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := clientAddr(r)

		if !limiter.Admit(clientID, time.Now()) {
			log.WarnContext(r.Context(), "rate limit exceeded", "client", clientID)
			Error(w, "Rate limit exceeded", http.StatusTooManyRequests)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
