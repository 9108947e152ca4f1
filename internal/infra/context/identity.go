package context

import (
	"context"

	"github.com/mkrupp/taskcase/internal/domain"
)

const contextKeyIdentity = contextKey("identity")

// IdentityFromContext extracts the authenticated user from the context.
// Returns the user and true if present, or a zero user and false if not present.
func IdentityFromContext(ctx context.Context) (domain.User, bool) {
	identity, ok := ctx.Value(contextKeyIdentity).(domain.User)

	return identity, ok
}

// WithIdentity creates a new context carrying the authenticated user.
// Handlers downstream of the authorizing middleware read the acting
// identity from here; it is the sole input to authorization decisions.
func WithIdentity(ctx context.Context, identity domain.User) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, identity)
}
