package authsvc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mkrupp/taskcase/internal/domain"
	"github.com/mkrupp/taskcase/internal/infra/logging"
	"github.com/mkrupp/taskcase/internal/svc/authsvc"
)

var ErrRepoError = errors.New("repository error")

// mockUserRepository implements user.Repository for testing.
type mockUserRepository struct {
	users  map[string]*domain.User
	nextID int64
	err    error
	m      sync.Mutex
}

func newMockUserRepo() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) add(user domain.User) *domain.User {
	m.m.Lock()
	defer m.m.Unlock()

	m.nextID++
	user.ID = m.nextID
	m.users[user.Username] = &user

	return &user
}

func (m *mockUserRepository) CreateUser(
	_ context.Context,
	username, email string,
	passwordHash []byte,
	role domain.Role,
) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}

	m.m.Lock()

	if _, exists := m.users[username]; exists {
		m.m.Unlock()

		return nil, domain.ErrUsernameAlreadyRegistered
	}

	for _, u := range m.users {
		if u.Email == email {
			m.m.Unlock()

			return nil, domain.ErrEmailAlreadyRegistered
		}
	}

	m.m.Unlock()

	return m.add(domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now().Unix(),
		UpdatedAt:    time.Now().Unix(),
	}), nil
}

func (m *mockUserRepository) GetUserByID(_ context.Context, id int64) (*domain.User, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}

	m.m.Lock()
	defer m.m.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			return u, true, nil
		}
	}

	return nil, false, domain.ErrUserNotFound
}

func (m *mockUserRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}

	m.m.Lock()
	defer m.m.Unlock()

	user, exists := m.users[username]
	if !exists {
		return nil, false, domain.ErrUserNotFound
	}

	return user, true, nil
}

func (m *mockUserRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}

	m.m.Lock()
	defer m.m.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, true, nil
		}
	}

	return nil, false, domain.ErrUserNotFound
}

func (m *mockUserRepository) ListUsers(_ context.Context, _, _ int64) ([]domain.User, error) {
	return nil, m.err
}

func (m *mockUserRepository) UpdateUser(_ context.Context, _ int64, _ domain.UserUpdate) (*domain.User, error) {
	return nil, m.err
}

func (m *mockUserRepository) DeleteUser(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockUserRepository) Close() error {
	return m.err
}

func setupTestService(t *testing.T) (*authsvc.AuthService, *mockUserRepository) {
	t.Helper()

	cfg := authsvc.AuthConfig{
		TokenSecret:          "test-secret",
		TokenAlgorithm:       "HS256",
		TokenLifetimeMinutes: 30,
	}

	signer, err := authsvc.NewTokenSigner(cfg)
	if err != nil {
		t.Fatalf("failed to create token signer: %v", err)
	}

	mockRepo := newMockUserRepo()

	svc := &authsvc.AuthService{
		Config:   cfg,
		UserRepo: mockRepo,
		Log:      logging.GetLogger("test.authsvc"),
		Signer:   signer,
	}

	return svc, mockRepo
}

func mustHash(t *testing.T, password string) []byte {
	t.Helper()

	hash, err := authsvc.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	return hash
}

//nolint:paralleltest
func TestAuthService_RegisterUser(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	mockRepo.add(domain.User{
		Username: "existinguser",
		Email:    "existing@example.com",
		Active:   true,
	})

	tests := []struct {
		name    string
		reg     domain.Registration
		repoErr error
		wantErr error
	}{
		{
			name: "successful registration",
			reg:  domain.Registration{Username: "newuser", Email: "new@example.com", Password: "Password1"},
		},
		{
			name:    "duplicate username",
			reg:     domain.Registration{Username: "existinguser", Email: "other@example.com", Password: "Password1"},
			wantErr: domain.ErrUsernameAlreadyRegistered,
		},
		{
			name:    "duplicate email",
			reg:     domain.Registration{Username: "otheruser", Email: "existing@example.com", Password: "Password1"},
			wantErr: domain.ErrEmailAlreadyRegistered,
		},
		{
			name:    "username too short",
			reg:     domain.Registration{Username: "ab", Email: "ab@example.com", Password: "Password1"},
			wantErr: domain.ErrInvalidPayload,
		},
		{
			name:    "invalid email",
			reg:     domain.Registration{Username: "someuser", Email: "not-an-email", Password: "Password1"},
			wantErr: domain.ErrInvalidPayload,
		},
		{
			name:    "password without uppercase",
			reg:     domain.Registration{Username: "someuser", Email: "some@example.com", Password: "password1"},
			wantErr: domain.ErrInvalidPayload,
		},
		{
			name:    "password without digit",
			reg:     domain.Registration{Username: "someuser", Email: "some@example.com", Password: "Passwords"},
			wantErr: domain.ErrInvalidPayload,
		},
		{
			name:    "repository error",
			reg:     domain.Registration{Username: "erroruser", Email: "error@example.com", Password: "Password1"},
			repoErr: ErrRepoError,
			wantErr: ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.err = tt.repoErr

			created, err := svc.RegisterUser(context.Background(), tt.reg)

			mockRepo.err = nil

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("RegisterUser() error = %v, wantErr %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("RegisterUser() unexpected error: %v", err)
			}

			if created.Role != domain.RoleUser {
				t.Errorf("RegisterUser() role = %v, want %v", created.Role, domain.RoleUser)
			}

			if !created.Active {
				t.Error("RegisterUser() created inactive user")
			}

			if string(created.PasswordHash) == tt.reg.Password {
				t.Error("RegisterUser() stored plaintext password")
			}
		})
	}
}

//nolint:paralleltest
func TestAuthService_RegisterUser_ForcesUserRole(t *testing.T) {
	svc, _ := setupTestService(t)

	created, err := svc.RegisterUser(context.Background(), domain.Registration{
		Username: "wannabe",
		Email:    "wannabe@example.com",
		Password: "Password1",
	})
	if err != nil {
		t.Fatalf("RegisterUser() unexpected error: %v", err)
	}

	if created.Role == domain.RoleAdmin {
		t.Error("registration must never grant the admin role")
	}
}

//nolint:paralleltest
func TestAuthService_Login(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	hash := mustHash(t, "Testpass1")

	mockRepo.add(domain.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Active:       true,
	})
	mockRepo.add(domain.User{
		Username:     "sleeper",
		Email:        "sleeper@example.com",
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Active:       false,
	})

	tests := []struct {
		name       string
		identifier string
		password   string
		repoErr    error
		wantErr    error
	}{
		{
			name:       "login by username",
			identifier: "testuser",
			password:   "Testpass1",
		},
		{
			name:       "login by email",
			identifier: "test@example.com",
			password:   "Testpass1",
		},
		{
			name:       "wrong password",
			identifier: "testuser",
			password:   "Wrongpass1",
			wantErr:    domain.ErrInvalidCredentials,
		},
		{
			name:       "unknown identifier",
			identifier: "nonexistent",
			password:   "Testpass1",
			wantErr:    domain.ErrInvalidCredentials,
		},
		{
			name:       "inactive user with correct password",
			identifier: "sleeper",
			password:   "Testpass1",
			wantErr:    domain.ErrUserInactive,
		},
		{
			name:       "repository error",
			identifier: "testuser",
			password:   "Testpass1",
			repoErr:    ErrRepoError,
			wantErr:    ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.err = tt.repoErr

			token, err := svc.Login(context.Background(), tt.identifier, tt.password)

			mockRepo.err = nil

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, wantErr %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Login() unexpected error: %v", err)
			}

			if token.Token == "" {
				t.Error("Login() returned empty token")
			}

			if token.TokenKind != domain.TokenKindBearer {
				t.Errorf("Login() token kind = %q, want %q", token.TokenKind, domain.TokenKindBearer)
			}

			if token.User.Username != "testuser" {
				t.Errorf("Login() user = %q, want %q", token.User.Username, "testuser")
			}
		})
	}
}

//nolint:paralleltest
func TestAuthService_Login_ErrorDoesNotRevealWhichPartWasWrong(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	mockRepo.add(domain.User{
		Username:     "known",
		Email:        "known@example.com",
		PasswordHash: mustHash(t, "Correct1pass"),
		Active:       true,
	})

	_, errUnknown := svc.Login(context.Background(), "unknown", "Correct1pass")
	_, errWrongPass := svc.Login(context.Background(), "known", "Wrong1pass")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user error = %v, want ErrInvalidCredentials", errUnknown)
	}

	if !errors.Is(errWrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", errWrongPass)
	}
}

//nolint:paralleltest
func TestAuthService_ValidateToken(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	mockRepo.add(domain.User{
		Username:     "tokenuser",
		Email:        "token@example.com",
		PasswordHash: mustHash(t, "Testpass1"),
		Role:         domain.RoleUser,
		Active:       true,
	})

	token, err := svc.Login(context.Background(), "tokenuser", "Testpass1")
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	t.Run("valid token resolves to user", func(t *testing.T) {
		identity, err := svc.ValidateToken(context.Background(), token.Token)
		if err != nil {
			t.Fatalf("ValidateToken() unexpected error: %v", err)
		}

		if identity.Username != "tokenuser" {
			t.Errorf("ValidateToken() user = %q, want %q", identity.Username, "tokenuser")
		}
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		_, err := svc.ValidateToken(context.Background(), token.Token+"x")
		if !errors.Is(err, domain.ErrInvalidAuthToken) {
			t.Errorf("ValidateToken() error = %v, want ErrInvalidAuthToken", err)
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := svc.ValidateToken(context.Background(), "not.a.token")
		if !errors.Is(err, domain.ErrInvalidAuthToken) {
			t.Errorf("ValidateToken() error = %v, want ErrInvalidAuthToken", err)
		}
	})

	t.Run("token for deleted user is rejected", func(t *testing.T) {
		mockRepo.m.Lock()
		ghost := mockRepo.users["tokenuser"]
		delete(mockRepo.users, "tokenuser")
		mockRepo.m.Unlock()

		defer func() {
			mockRepo.m.Lock()
			mockRepo.users["tokenuser"] = ghost
			mockRepo.m.Unlock()
		}()

		_, err := svc.ValidateToken(context.Background(), token.Token)
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("ValidateToken() error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("token for deactivated user is rejected", func(t *testing.T) {
		mockRepo.m.Lock()
		mockRepo.users["tokenuser"].Active = false
		mockRepo.m.Unlock()

		defer func() {
			mockRepo.m.Lock()
			mockRepo.users["tokenuser"].Active = true
			mockRepo.m.Unlock()
		}()

		_, err := svc.ValidateToken(context.Background(), token.Token)
		if !errors.Is(err, domain.ErrUserInactive) {
			t.Errorf("ValidateToken() error = %v, want ErrUserInactive", err)
		}
	})
}

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := authsvc.HashPassword("Secret1pass")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	if !authsvc.VerifyPassword(hash, "Secret1pass") {
		t.Error("VerifyPassword() rejected the correct password")
	}

	if authsvc.VerifyPassword(hash, "Secret2pass") {
		t.Error("VerifyPassword() accepted a wrong password")
	}
}
