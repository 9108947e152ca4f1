package authsvc

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/taskcase/internal/domain"
)

// ErrUnsupportedAlgorithm is returned when the configured token algorithm is
// not an HMAC variant.
var ErrUnsupportedAlgorithm = errors.New("unsupported token algorithm")

// TokenSigner issues and verifies HMAC-signed JWT bearer tokens. Tokens are
// stateless: the only claims are the subject (the username) and the
// issued-at/expiry timestamps, so verification needs no storage lookup.
type TokenSigner struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration

	// Now is the clock used for issuing and validating; injectable for tests.
	Now func() time.Time
}

// NewTokenSigner creates a TokenSigner from the auth configuration.
// Only HMAC algorithms are accepted; asymmetric methods would make the
// verification secret public.
func NewTokenSigner(cfg AuthConfig) (*TokenSigner, error) {
	method := jwt.GetSigningMethod(cfg.TokenAlgorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.TokenAlgorithm)
	}

	return &TokenSigner{
		secret:   []byte(cfg.TokenSecret),
		method:   method,
		lifetime: time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		Now:      time.Now,
	}, nil
}

// Issue creates a signed token for the given username.
func (ts *TokenSigner) Issue(username string) (string, error) {
	now := ts.Now()

	token := jwt.NewWithClaims(ts.method, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ts.lifetime)),
	})

	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the token's signature and expiry and returns its subject.
// Any failure maps onto domain.ErrInvalidAuthToken; callers cannot tell a
// forged token from an expired one.
func (ts *TokenSigner) Verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return ts.secret, nil },
		jwt.WithValidMethods([]string{ts.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.Now),
	)
	if err != nil {
		return "", errors.Join(domain.ErrInvalidAuthToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrInvalidAuthToken)
	}

	return claims.Subject, nil
}
