package usersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mkrupp/taskcase/internal/domain"
	context_ "github.com/mkrupp/taskcase/internal/infra/context"
	"github.com/mkrupp/taskcase/internal/infra/logging"
	http_ "github.com/mkrupp/taskcase/internal/infra/transport/http"
	"github.com/mkrupp/taskcase/internal/svc/authsvc/authclient"
)

// ErrNoIdentity is returned when a protected handler runs without an
// authenticated identity in the request context.
var ErrNoIdentity = errors.New("no identity in context")

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// HTTPTransport handles HTTP requests for the user service.
// It provides self-service profile endpoints and the admin user management
// endpoints. All routes require authentication.
type HTTPTransport struct {
	userSvc    *UserService
	authClient authclient.AuthClient
	log        logging.Logger
	cfg        HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires a UserService for business logic and an AuthClient for authentication.
func NewHTTPTransport(
	userSvc *UserService,
	authClient authclient.AuthClient,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		userSvc:    userSvc,
		authClient: authClient,
		log:        logging.GetLogger("svc.usersvc.http_transport"),
		cfg:        cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the user service endpoints:
// - GET /api/v1/users/me: Current user's profile
// - PUT /api/v1/users/me: Update own profile
// - GET /api/v1/users: List users (admin)
// - GET /api/v1/users/{user_id}: Get user by ID (admin)
// - PUT /api/v1/users/{user_id}: Update user by ID (admin)
// - DELETE /api/v1/users/{user_id}: Delete user by ID (admin)
// Routes are protected by authentication middleware.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/users/me", ht.HandleGetMe)
	mux.HandleFunc("PUT /api/v1/users/me", ht.HandleUpdateMe)
	mux.HandleFunc("GET /api/v1/users", ht.HandleList)
	mux.HandleFunc("GET /api/v1/users/{user_id}", ht.HandleGet)
	mux.HandleFunc("PUT /api/v1/users/{user_id}", ht.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/users/{user_id}", ht.HandleDelete)

	handler := http.Handler(mux)
	handler = http_.AuthorizingMiddleware(handler, ht.authClient, ht.log)

	handler.ServeHTTP(w, r)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		http_.Error(w, "Not enough permissions", http.StatusForbidden)
	case errors.Is(err, domain.ErrUserNotFound):
		http_.Error(w, "User not found", http.StatusNotFound)
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
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

func pathUserID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid user id", domain.ErrInvalidPayload)
	}

	return id, nil
}

// HandleGetMe returns the authenticated user's own record.
func (ht *HTTPTransport) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleGetMe(w, r)
}

func (ht *HTTPTransport) handleGetMe(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "get own profile failed", "error", err)
		} else {
			log.DebugContext(ctx, "own profile fetched")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	return writeJSON(w, http.StatusOK, identity)
}

// HandleUpdateMe processes partial updates of the authenticated user's own
// record. Role and active flag in the payload are ignored.
func (ht *HTTPTransport) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUpdateMe(w, r)
}

func (ht *HTTPTransport) handleUpdateMe(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "update own profile failed", "error", err)
		} else {
			log.DebugContext(ctx, "own profile updated")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	var update domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http_.Error(w, "Invalid request body", http.StatusBadRequest)

		return fmt.Errorf("decode body: %w", err)
	}

	updated, err := ht.userSvc.UpdateSelf(r.Context(), identity, update)
	if err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("update self: %w", err)
	}

	return writeJSON(w, http.StatusOK, updated)
}

// HandleList returns a page of all users. Admin only.
// Supports skip and limit query parameters.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "list users failed", "error", err)
		} else {
			log.DebugContext(ctx, "users listed")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	skip, limit := http_.ParsePagination(r)

	users, err := ht.userSvc.ListUsers(r.Context(), identity, skip, limit)
	if err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("list users: %w", err)
	}

	return writeJSON(w, http.StatusOK, users)
}

// HandleGet returns a user record by ID. Admin only.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleGet(w, r)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "get user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user fetched")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	id, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, err)

		return err
	}

	account, err := ht.userSvc.GetUser(r.Context(), identity, id)
	if err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("get user: %w", err)
	}

	return writeJSON(w, http.StatusOK, account)
}

// HandleUpdate processes partial updates of an arbitrary user record.
// Admin only; role and active flag are honored here.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUpdate(w, r)
}

func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "update user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user updated")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	id, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, err)

		return err
	}

	var update domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http_.Error(w, "Invalid request body", http.StatusBadRequest)

		return fmt.Errorf("decode body: %w", err)
	}

	updated, err := ht.userSvc.UpdateUser(r.Context(), identity, id, update)
	if err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("update user: %w", err)
	}

	return writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a user record by ID. Admin only.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDelete(w, r)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "delete user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user deleted")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	id, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, err)

		return err
	}

	if err := ht.userSvc.DeleteUser(r.Context(), identity, id); err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("delete user: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}
