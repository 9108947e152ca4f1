package task

import (
	"context"

	"github.com/mkrupp/taskcase/internal/domain"
)

// Repository defines the interface for task data persistence.
type Repository interface {
	// CreateTask adds a new task owned by createdBy and returns it with its
	// assigned ID and timestamps.
	CreateTask(ctx context.Context, create domain.TaskCreate, createdBy int64) (*domain.Task, error)

	// GetTaskByID retrieves a task by its numeric ID.
	// Returns the task object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetTaskByID(ctx context.Context, id int64) (*domain.Task, bool, error)

	// ListTasks returns tasks ordered by ID, skipping offset rows and
	// returning at most limit rows. When owner is non-nil only tasks created
	// by that user are returned.
	ListTasks(ctx context.Context, owner *int64, offset, limit int64) ([]domain.Task, error)

	// UpdateTask applies the non-nil fields of update to the stored task.
	// Returns the updated task, or ErrTaskNotFound if no such task exists.
	UpdateTask(ctx context.Context, id int64, update domain.TaskUpdate) (*domain.Task, error)

	// DeleteTask removes a task by ID.
	// Returns ErrTaskNotFound if no such task exists.
	DeleteTask(ctx context.Context, id int64) error

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
