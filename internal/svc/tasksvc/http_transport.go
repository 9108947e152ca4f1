package tasksvc

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

// HTTPTransport handles HTTP requests for the task service.
// It provides CRUD and listing endpoints for tasks. All routes require
// authentication.
type HTTPTransport struct {
	taskSvc    *TaskService
	authClient authclient.AuthClient
	log        logging.Logger
	cfg        HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires a TaskService for business logic and an AuthClient for authentication.
func NewHTTPTransport(
	taskSvc *TaskService,
	authClient authclient.AuthClient,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		taskSvc:    taskSvc,
		authClient: authClient,
		log:        logging.GetLogger("svc.tasksvc.http_transport"),
		cfg:        cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the task service endpoints:
// - POST /api/v1/tasks: Create task
// - GET /api/v1/tasks: List visible tasks
// - GET /api/v1/tasks/{task_id}: Get task by ID
// - PUT /api/v1/tasks/{task_id}: Update task by ID
// - DELETE /api/v1/tasks/{task_id}: Delete task by ID
// - GET /api/v1/tasks/user/{user_id}: List tasks created by a user
// Routes are protected by authentication middleware.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/tasks", ht.HandleCreate)
	mux.HandleFunc("GET /api/v1/tasks", ht.HandleList)
	mux.HandleFunc("GET /api/v1/tasks/user/{user_id}", ht.HandleListByUser)
	mux.HandleFunc("GET /api/v1/tasks/{task_id}", ht.HandleGet)
	mux.HandleFunc("PUT /api/v1/tasks/{task_id}", ht.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/tasks/{task_id}", ht.HandleDelete)

	handler := http.Handler(mux)
	handler = http_.AuthorizingMiddleware(handler, ht.authClient, ht.log)

	handler.ServeHTTP(w, r)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		http_.Error(w, "Task not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http_.Error(w, "Not enough permissions", http.StatusForbidden)
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

func pathID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(param), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrInvalidPayload, param)
	}

	return id, nil
}

// HandleCreate processes task creation requests.
// Expects a JSON body with title and optionally description and status.
// The task is owned by the authenticated user.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "create task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task created")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	var create domain.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		http_.Error(w, "Invalid request body", http.StatusBadRequest)

		return fmt.Errorf("decode body: %w", err)
	}

	created, err := ht.taskSvc.CreateTask(r.Context(), identity, create)
	if err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("create task: %w", err)
	}

	return writeJSON(w, http.StatusCreated, created)
}

// HandleList returns a page of tasks visible to the authenticated user.
// Supports skip and limit query parameters.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "list tasks failed", "error", err)
		} else {
			log.DebugContext(ctx, "tasks listed")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	skip, limit := http_.ParsePagination(r)

	tasks, err := ht.taskSvc.ListTasks(r.Context(), identity, skip, limit)
	if err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("list tasks: %w", err)
	}

	return writeJSON(w, http.StatusOK, tasks)
}

// HandleListByUser returns a page of tasks created by the given user.
// Allowed for the user themselves and for admins.
func (ht *HTTPTransport) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleListByUser(w, r)
}

func (ht *HTTPTransport) handleListByUser(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "list user tasks failed", "error", err)
		} else {
			log.DebugContext(ctx, "user tasks listed")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	userID, err := pathID(r, "user_id")
	if err != nil {
		writeServiceError(w, err)

		return err
	}

	skip, limit := http_.ParsePagination(r)

	tasks, err := ht.taskSvc.ListUserTasks(r.Context(), identity, userID, skip, limit)
	if err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("list user tasks: %w", err)
	}

	return writeJSON(w, http.StatusOK, tasks)
}

// HandleGet returns a task by ID if the authenticated user may access it.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleGet(w, r)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "get task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task fetched")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	id, err := pathID(r, "task_id")
	if err != nil {
		writeServiceError(w, err)

		return err
	}

	found, err := ht.taskSvc.GetTask(r.Context(), identity, id)
	if err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("get task: %w", err)
	}

	return writeJSON(w, http.StatusOK, found)
}

// HandleUpdate processes partial updates of a task the authenticated user
// may access.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUpdate(w, r)
}

func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "update task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task updated")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	id, err := pathID(r, "task_id")
	if err != nil {
		writeServiceError(w, err)

		return err
	}

	var update domain.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http_.Error(w, "Invalid request body", http.StatusBadRequest)

		return fmt.Errorf("decode body: %w", err)
	}

	updated, err := ht.taskSvc.UpdateTask(r.Context(), identity, id, update)
	if err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("update task: %w", err)
	}

	return writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a task the authenticated user may access.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDelete(w, r)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "delete task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task deleted")
		}
	}(r.Context())

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.Error(w, "Not authenticated", http.StatusUnauthorized)

		return ErrNoIdentity
	}

	id, err := pathID(r, "task_id")
	if err != nil {
		writeServiceError(w, err)

		return err
	}

	if err := ht.taskSvc.DeleteTask(r.Context(), identity, id); err != nil {
		writeServiceError(w, err)

		return fmt.Errorf("delete task: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}
