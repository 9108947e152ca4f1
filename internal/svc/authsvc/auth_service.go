package authsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/taskcase/internal/domain"
	"github.com/mkrupp/taskcase/internal/infra/logging"
	"github.com/mkrupp/taskcase/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// TokenSecret is the HMAC secret used for signing and verifying tokens
	TokenSecret string `env:"TOKEN_SECRET" default:"change-this-in-production"`

	// TokenAlgorithm is the JWT signing algorithm; must be an HMAC variant
	TokenAlgorithm string `env:"TOKEN_ALGORITHM" default:"HS256"`

	// TokenLifetimeMinutes is the validity duration of auth tokens in minutes
	TokenLifetimeMinutes int64 `env:"TOKEN_LIFETIME_MINUTES" default:"30"`
}

// AuthService provides authentication functionality: user registration,
// login, and token validation.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Log      logging.Logger
	Signer   *TokenSigner
}

// NewAuthService creates a new AuthService with the given user repository factory and configuration.
// Returns an error if the token signer or the user repository cannot be created.
func NewAuthService(repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	signer, err := NewTokenSigner(cfg)
	if err != nil {
		return nil, fmt.Errorf("new token signer: %w", err)
	}

	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &AuthService{
		Config:   cfg,
		UserRepo: userRepo,
		Log:      log,
		Signer:   signer,
	}, nil
}

// RegisterUser creates a new user account from the registration payload.
// The password is hashed before storage and the account always starts as an
// active regular user; privileges can only be granted through the admin
// update path afterwards.
// Returns ErrUsernameAlreadyRegistered or ErrEmailAlreadyRegistered on
// conflicts, checked in that order.
func (s *AuthService) RegisterUser(ctx context.Context, reg domain.Registration) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", reg.Username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("validate registration: %w", err)
	}

	if _, found, err := s.UserRepo.GetUserByUsername(ctx, reg.Username); found {
		return nil, domain.ErrUsernameAlreadyRegistered
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	if _, found, err := s.UserRepo.GetUserByEmail(ctx, reg.Email); found {
		return nil, domain.ErrEmailAlreadyRegistered
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	passwordHash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.UserRepo.CreateUser(ctx, reg.Username, reg.Email, passwordHash, domain.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// Login authenticates a user by username or email and issues a bearer token.
// An unknown identifier and a wrong password both return
// ErrInvalidCredentials; a correct password on a deactivated account returns
// ErrUserInactive.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (_ domain.AuthTokenResponse, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	account, err := s.resolveAccount(ctx, identifier)
	if err != nil {
		return domain.AuthTokenResponse{}, err
	}

	if !VerifyPassword(account.PasswordHash, password) {
		return domain.AuthTokenResponse{}, domain.ErrInvalidCredentials
	}

	if !account.Active {
		return domain.AuthTokenResponse{}, domain.ErrUserInactive
	}

	token, err := s.Signer.Issue(account.Username)
	if err != nil {
		return domain.AuthTokenResponse{}, fmt.Errorf("issue token: %w", err)
	}

	log = log.With(logging.Group("user", "username", account.Username))

	return domain.AuthTokenResponse{
		Token:     token,
		TokenKind: domain.TokenKindBearer,
		User:      *account,
	}, nil
}

// resolveAccount looks the identifier up as a username first, then as an
// email address. Misses collapse into ErrInvalidCredentials so login cannot
// be used to probe which identifiers exist.
func (s *AuthService) resolveAccount(ctx context.Context, identifier string) (*domain.User, error) {
	account, found, err := s.UserRepo.GetUserByUsername(ctx, identifier)
	if found {
		return account, nil
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	account, found, err = s.UserRepo.GetUserByEmail(ctx, identifier)
	if found {
		return account, nil
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return nil, domain.ErrInvalidCredentials
}

// ValidateToken verifies a bearer token and resolves it to a live account.
// It implements authclient.TokenValidator. A valid signature is not enough:
// the subject must still exist and must still be active.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (_ domain.User, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "validate token failed", "error", err)
		} else {
			log.DebugContext(ctx, "token validated")
		}
	}()

	username, err := s.Signer.Verify(tokenString)
	if err != nil {
		return domain.User{}, fmt.Errorf("verify token: %w", err)
	}

	log = log.With(logging.Group("token", "username", username))

	account, found, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil && !found {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	if !account.Active {
		return domain.User{}, domain.ErrUserInactive
	}

	return *account, nil
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *AuthService) Close() error {
	if err := s.UserRepo.Close(); err != nil {
		return fmt.Errorf("close user repo: %w", err)
	}

	return nil
}
