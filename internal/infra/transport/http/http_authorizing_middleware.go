package http

import (
	"net/http"
	"strings"

	context_ "github.com/mkrupp/taskcase/internal/infra/context"
	"github.com/mkrupp/taskcase/internal/infra/logging"
	"github.com/mkrupp/taskcase/internal/svc/authsvc/authclient"
)

// AuthorizingMiddleware creates middleware that validates bearer tokens.
// It requires an AuthClient for token-to-identity resolution.
// Requests without a valid token in the Authorization header are rejected
// with 401; a missing, invalid, or expired token all force re-login since
// no refresh mechanism exists.
// On successful validation, the resolved identity is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	authClient authclient.AuthClient,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			log.WarnContext(r.Context(), "no token provided")
			Error(w, "Not authenticated", http.StatusUnauthorized)

			return
		}

		identity, ok, err := authClient.Validate(r.Context(), token)
		if err != nil {
			log.ErrorContext(r.Context(), "validate token failed", "error", err)
			Error(w, "Could not validate credentials", http.StatusUnauthorized)

			return
		} else if !ok {
			log.WarnContext(r.Context(), "invalid token")
			Error(w, "Could not validate credentials", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithIdentity(r.Context(), identity)))
	})
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	token, _ := strings.CutPrefix(authHeader, "Bearer")

	return strings.TrimSpace(token)
}
