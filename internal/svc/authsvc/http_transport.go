package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/taskcase/internal/domain"
	"github.com/mkrupp/taskcase/internal/infra/logging"
	http_ "github.com/mkrupp/taskcase/internal/infra/transport/http"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// HTTPTransport handles HTTP requests for the authentication service.
// It provides endpoints for user registration and login.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
	cfg     HTTPTransportConfig
}

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires an AuthService for handling authentication operations.
func NewHTTPTransport(
	authSvc *AuthService,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		cfg:     cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the auth service endpoints:
// - POST /api/v1/auth/register: Register a new user
// - POST /api/v1/auth/login: Login and get a bearer token.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", ht.HandleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", ht.HandleLogin)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleRegister processes user registration requests.
// Expects a JSON body with username, email, and password.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	var reg domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		http_.Error(w, "Invalid request body", http.StatusBadRequest)

		return fmt.Errorf("decode body: %w", err)
	}

	log = log.With(logging.Group("user", "username", reg.Username))

	created, err := ht.authSvc.RegisterUser(r.Context(), reg)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameAlreadyRegistered):
			http_.Error(w, "Username already registered", http.StatusConflict)
		case errors.Is(err, domain.ErrEmailAlreadyRegistered):
			http_.Error(w, "Email already registered", http.StatusConflict)
		case errors.Is(err, domain.ErrUserAlreadyExists):
			http_.Error(w, "Username or email already registered", http.StatusConflict)
		case errors.Is(err, domain.ErrInvalidPayload):
			http_.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http_.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return fmt.Errorf("register user: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(created); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// loginRequest is the JSON body for login. The username field also accepts
// an email address.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin processes user login requests.
// Expects a JSON body with username (or email) and password.
// Returns a bearer token on successful login.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http_.Error(w, "Invalid request body", http.StatusBadRequest)

		return fmt.Errorf("decode body: %w", err)
	}

	if req.Username == "" || req.Password == "" {
		http_.Error(w, "Username and password are required", http.StatusBadRequest)

		return domain.ErrInvalidPayload
	}

	log = log.With(logging.Group("user", "username", req.Username))

	token, err := ht.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			w.Header().Set("WWW-Authenticate", "Bearer")
			http_.Error(w, "Incorrect username/email or password", http.StatusUnauthorized)
		case errors.Is(err, domain.ErrUserInactive):
			http_.Error(w, "Inactive user", http.StatusBadRequest)
		default:
			http_.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return fmt.Errorf("login user: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(token); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
