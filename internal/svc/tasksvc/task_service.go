package tasksvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/taskcase/internal/domain"
	"github.com/mkrupp/taskcase/internal/infra/logging"
	"github.com/mkrupp/taskcase/internal/repo/task"
)

// TaskService provides task management functionality scoped by the acting
// identity. Ownership always comes from the actor; admins see everything,
// regular users only their own tasks.
type TaskService struct {
	TaskRepo task.Repository
	Log      logging.Logger
}

// NewTaskService creates a new TaskService with the given task repository factory.
// Returns an error if the task repository cannot be created.
func NewTaskService(repoFactory task.RepositoryFactory) (*TaskService, error) {
	log := logging.GetLogger("svc.tasksvc.task_service")

	taskRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new task repo: %w", err)
	}

	return &TaskService{
		TaskRepo: taskRepo,
		Log:      log,
	}, nil
}

// CreateTask creates a new task owned by the actor. Any owner the payload
// might carry is ignored.
func (s *TaskService) CreateTask(ctx context.Context, actor domain.User, create domain.TaskCreate) (_ *domain.Task, err error) {
	log := s.Log.With(logging.Group("actor", "id", actor.ID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task created")
		}
	}()

	if err := create.Validate(); err != nil {
		return nil, fmt.Errorf("validate task: %w", err)
	}

	created, err := s.TaskRepo.CreateTask(ctx, create, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return created, nil
}

// GetTask returns a task by ID if the actor may access it. A task that
// exists but belongs to someone else is reported as ErrTaskNotFound, the
// same as a task that does not exist.
func (s *TaskService) GetTask(ctx context.Context, actor domain.User, id int64) (_ *domain.Task, err error) {
	log := s.Log.With(logging.Group("task", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "get task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task fetched")
		}
	}()

	found, err := s.authorizedTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	return found, nil
}

// ListTasks returns a page of tasks visible to the actor: all tasks for
// admins, only the actor's own tasks otherwise. The scoping happens in the
// query, so skip and limit count only visible rows.
func (s *TaskService) ListTasks(ctx context.Context, actor domain.User, skip, limit int64) (_ []domain.Task, err error) {
	log := s.Log.With(logging.Group("page", "skip", skip, "limit", limit))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "list tasks failed", "error", err)
		} else {
			log.DebugContext(ctx, "tasks listed")
		}
	}()

	tasks, err := s.TaskRepo.ListTasks(ctx, domain.TaskOwnerScope(actor), skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// ListUserTasks returns a page of tasks created by the given user. Allowed
// for the user themselves and for admins; everyone else gets ErrForbidden.
func (s *TaskService) ListUserTasks(ctx context.Context, actor domain.User, userID, skip, limit int64) (_ []domain.Task, err error) {
	log := s.Log.With(logging.Group("page", "user_id", userID, "skip", skip, "limit", limit))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "list user tasks failed", "error", err)
		} else {
			log.DebugContext(ctx, "user tasks listed")
		}
	}()

	if !domain.CanViewUserTasks(actor, userID) {
		return nil, domain.ErrForbidden
	}

	tasks, err := s.TaskRepo.ListTasks(ctx, &userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies a partial update to a task the actor may access.
// Inaccessible tasks are indistinguishable from absent ones.
func (s *TaskService) UpdateTask(ctx context.Context, actor domain.User, id int64, update domain.TaskUpdate) (_ *domain.Task, err error) {
	log := s.Log.With(logging.Group("task", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task updated")
		}
	}()

	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("validate update: %w", err)
	}

	if _, err := s.authorizedTask(ctx, actor, id); err != nil {
		return nil, err
	}

	updated, err := s.TaskRepo.UpdateTask(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return updated, nil
}

// DeleteTask removes a task the actor may access.
// Inaccessible tasks are indistinguishable from absent ones.
func (s *TaskService) DeleteTask(ctx context.Context, actor domain.User, id int64) (err error) {
	log := s.Log.With(logging.Group("task", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "delete task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task deleted")
		}
	}()

	if _, err := s.authorizedTask(ctx, actor, id); err != nil {
		return err
	}

	if err := s.TaskRepo.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return nil
}

// authorizedTask loads a task and checks by-id access in one step. A policy
// denial comes back as ErrTaskNotFound so callers cannot leak existence.
func (s *TaskService) authorizedTask(ctx context.Context, actor domain.User, id int64) (*domain.Task, error) {
	found, ok, err := s.TaskRepo.GetTaskByID(ctx, id)
	if err != nil && !ok {
		return nil, fmt.Errorf("get task: %w", err)
	}

	if !domain.CanAccessTask(actor, *found) {
		return nil, domain.ErrTaskNotFound
	}

	return found, nil
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *TaskService) Close() error {
	if err := s.TaskRepo.Close(); err != nil {
		return fmt.Errorf("close task repo: %w", err)
	}

	return nil
}
