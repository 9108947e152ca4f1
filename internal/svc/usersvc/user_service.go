package usersvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/taskcase/internal/domain"
	"github.com/mkrupp/taskcase/internal/infra/logging"
	"github.com/mkrupp/taskcase/internal/repo/user"
)

// UserService provides account management functionality: self-service
// profile access and the admin-only user administration surface.
type UserService struct {
	UserRepo user.Repository
	Log      logging.Logger
}

// NewUserService creates a new UserService with the given user repository factory.
// Returns an error if the user repository cannot be created.
func NewUserService(repoFactory user.RepositoryFactory) (*UserService, error) {
	log := logging.GetLogger("svc.usersvc.user_service")

	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &UserService{
		UserRepo: userRepo,
		Log:      log,
	}, nil
}

// UpdateSelf applies a partial update to the actor's own record. Role and
// active flag are stripped before the update reaches storage, so this path
// cannot change privileges no matter what the payload carries.
func (s *UserService) UpdateSelf(ctx context.Context, actor domain.User, update domain.UserUpdate) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "id", actor.ID, "username", actor.Username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "self update failed", "error", err)
		} else {
			log.DebugContext(ctx, "self updated")
		}
	}()

	update = domain.RestrictSelfUpdate(update)

	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("validate update: %w", err)
	}

	updated, err := s.UserRepo.UpdateUser(ctx, actor.ID, update)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return updated, nil
}

// ListUsers returns a page of all user records. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor domain.User, skip, limit int64) (_ []domain.User, err error) {
	log := s.Log.With(logging.Group("page", "skip", skip, "limit", limit))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "list users failed", "error", err)
		} else {
			log.DebugContext(ctx, "users listed")
		}
	}()

	if !domain.CanAdministerUsers(actor) {
		return nil, domain.ErrForbidden
	}

	users, err := s.UserRepo.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// GetUser returns a user record by ID. Admin only.
func (s *UserService) GetUser(ctx context.Context, actor domain.User, id int64) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "get user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user fetched")
		}
	}()

	if !domain.CanAdministerUsers(actor) {
		return nil, domain.ErrForbidden
	}

	account, found, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil && !found {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return account, nil
}

// UpdateUser applies a partial update to an arbitrary user record. Admin
// only; unlike UpdateSelf, role and active flag are honored here.
func (s *UserService) UpdateUser(ctx context.Context, actor domain.User, id int64, update domain.UserUpdate) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user updated")
		}
	}()

	if !domain.CanAdministerUsers(actor) {
		return nil, domain.ErrForbidden
	}

	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("validate update: %w", err)
	}

	updated, err := s.UserRepo.UpdateUser(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return updated, nil
}

// DeleteUser removes a user record and, through the schema's cascade, all
// tasks the user created. Admin only.
func (s *UserService) DeleteUser(ctx context.Context, actor domain.User, id int64) (err error) {
	log := s.Log.With(logging.Group("user", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "delete user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user deleted")
		}
	}()

	if !domain.CanAdministerUsers(actor) {
		return domain.ErrForbidden
	}

	if err := s.UserRepo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *UserService) Close() error {
	if err := s.UserRepo.Close(); err != nil {
		return fmt.Errorf("close user repo: %w", err)
	}

	return nil
}
