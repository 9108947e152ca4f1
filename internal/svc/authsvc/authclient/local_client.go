package authclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/taskcase/internal/domain"
	"github.com/mkrupp/taskcase/internal/infra/logging"
)

// TokenValidator resolves a bearer token to the account it authenticates.
// It is implemented by the auth service.
type TokenValidator interface {
	// ValidateToken verifies the token and returns the user it belongs to.
	// Returns ErrInvalidAuthToken for bad or expired tokens, ErrUserNotFound
	// if the subject no longer exists, and ErrUserInactive for deactivated
	// accounts.
	ValidateToken(ctx context.Context, token string) (domain.User, error)
}

// LocalClient implements AuthClient by calling the auth service in-process.
type LocalClient struct {
	validator TokenValidator
	log       logging.Logger
}

var _ AuthClient = (*LocalClient)(nil)

// NewLocalClient creates a new LocalClient backed by the given validator.
func NewLocalClient(validator TokenValidator) *LocalClient {
	return &LocalClient{
		validator: validator,
		log:       logging.GetLogger("svc.authsvc.local_client"),
	}
}

// Validate implements AuthClient.Validate. Tokens that fail verification,
// reference a deleted account, or reference a deactivated account are
// reported as invalid rather than as errors.
func (lc *LocalClient) Validate(ctx context.Context, token string) (domain.User, bool, error) {
	identity, err := lc.validator.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAuthToken) ||
			errors.Is(err, domain.ErrUserNotFound) ||
			errors.Is(err, domain.ErrUserInactive) {
			lc.log.DebugContext(ctx, "token rejected", "error", err)

			return domain.User{}, false, nil
		}

		return domain.User{}, false, fmt.Errorf("validate token: %w", err)
	}

	return identity, true, nil
}
