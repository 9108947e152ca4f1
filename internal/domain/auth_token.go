package domain

import "errors"

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token's signature is invalid, its payload is
	// malformed, or it has expired. There is no refresh path; the client must log in again.
	ErrInvalidAuthToken = errors.New("invalid or expired auth token, re-authentication required")
	// ErrForbidden is returned when the authenticated user lacks permission for an
	// operation where disclosing the target's existence is acceptable.
	ErrForbidden = errors.New("not enough permissions")
)

// TokenKindBearer is the token kind issued on login.
const TokenKindBearer = "bearer"

// AuthTokenResponse is the response body returned on successful login.
type AuthTokenResponse struct {
	Token     string `json:"access_token"`
	TokenKind string `json:"token_type"`
	User      User   `json:"user"`
}
