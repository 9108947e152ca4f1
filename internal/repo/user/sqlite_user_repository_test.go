package user_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mkrupp/taskcase/internal/domain"
	"github.com/mkrupp/taskcase/internal/repo/user"
)

func setupTestRepo(t *testing.T) user.Repository {
	t.Helper()

	repo, err := user.NewSQLiteUserRepository(user.SQLiteUserRepositoryConfig{
		DatabasePath: filepath.Join(t.TempDir(), "users.db"),
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func mustCreateUser(t *testing.T, repo user.Repository, username, email string) *domain.User {
	t.Helper()

	created, err := repo.CreateUser(context.Background(), username, email, []byte("hash"), domain.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser(%q) unexpected error: %v", username, err)
	}

	return created
}

func TestSQLiteUserRepository_CreateUser(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)

	created := mustCreateUser(t, repo, "alice", "alice@example.com")

	if created.ID == 0 {
		t.Error("CreateUser() did not assign an ID")
	}

	if !created.Active {
		t.Error("CreateUser() created inactive user")
	}

	if created.Role != domain.RoleUser {
		t.Errorf("CreateUser() role = %q, want %q", created.Role, domain.RoleUser)
	}
}

func TestSQLiteUserRepository_UniqueConstraints(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	mustCreateUser(t, repo, "alice", "alice@example.com")

	_, err := repo.CreateUser(context.Background(), "alice", "other@example.com", []byte("hash"), domain.RoleUser)
	if !errors.Is(err, domain.ErrUsernameAlreadyRegistered) {
		t.Errorf("duplicate username error = %v, want ErrUsernameAlreadyRegistered", err)
	}

	_, err = repo.CreateUser(context.Background(), "bob", "alice@example.com", []byte("hash"), domain.RoleUser)
	if !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
		t.Errorf("duplicate email error = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestSQLiteUserRepository_Lookups(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	created := mustCreateUser(t, repo, "alice", "alice@example.com")

	byID, found, err := repo.GetUserByID(context.Background(), created.ID)
	if err != nil || !found {
		t.Fatalf("GetUserByID() = %v, %v", found, err)
	}

	if byID.Username != "alice" {
		t.Errorf("GetUserByID() username = %q, want %q", byID.Username, "alice")
	}

	byName, found, err := repo.GetUserByUsername(context.Background(), "alice")
	if err != nil || !found {
		t.Fatalf("GetUserByUsername() = %v, %v", found, err)
	}

	if byName.ID != created.ID {
		t.Errorf("GetUserByUsername() id = %d, want %d", byName.ID, created.ID)
	}

	byEmail, found, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil || !found {
		t.Fatalf("GetUserByEmail() = %v, %v", found, err)
	}

	if byEmail.ID != created.ID {
		t.Errorf("GetUserByEmail() id = %d, want %d", byEmail.ID, created.ID)
	}

	if _, found, err := repo.GetUserByUsername(context.Background(), "nobody"); found || !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetUserByUsername(miss) = %v, %v, want ErrUserNotFound", found, err)
	}
}

func TestSQLiteUserRepository_ListUsers(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	mustCreateUser(t, repo, "alice", "alice@example.com")
	mustCreateUser(t, repo, "bob", "bob@example.com")
	mustCreateUser(t, repo, "carol", "carol@example.com")

	listed, err := repo.ListUsers(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("ListUsers() unexpected error: %v", err)
	}

	if len(listed) != 1 || listed[0].Username != "bob" {
		t.Errorf("ListUsers(1, 1) = %v, want just bob", listed)
	}

	all, err := repo.ListUsers(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("ListUsers() unexpected error: %v", err)
	}

	if len(all) != 3 {
		t.Errorf("ListUsers(0, 100) returned %d users, want 3", len(all))
	}
}

func TestSQLiteUserRepository_UpdateUser(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	created := mustCreateUser(t, repo, "alice", "alice@example.com")
	mustCreateUser(t, repo, "bob", "bob@example.com")

	var (
		role     = domain.RoleAdmin
		inactive = false
	)

	updated, err := repo.UpdateUser(context.Background(), created.ID, domain.UserUpdate{
		Role:   &role,
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateUser() unexpected error: %v", err)
	}

	if updated.Role != domain.RoleAdmin || updated.Active {
		t.Errorf("UpdateUser() = role %q active %v, want admin inactive", updated.Role, updated.Active)
	}

	reloaded, _, err := repo.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() unexpected error: %v", err)
	}

	if reloaded.Role != domain.RoleAdmin || reloaded.Active {
		t.Error("UpdateUser() changes were not persisted")
	}

	taken := "bob"
	if _, err := repo.UpdateUser(context.Background(), created.ID, domain.UserUpdate{Username: &taken}); !errors.Is(err, domain.ErrUsernameAlreadyRegistered) {
		t.Errorf("UpdateUser(taken username) error = %v, want ErrUsernameAlreadyRegistered", err)
	}

	if _, err := repo.UpdateUser(context.Background(), 999, domain.UserUpdate{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("UpdateUser(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestSQLiteUserRepository_DeleteUser(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	created := mustCreateUser(t, repo, "alice", "alice@example.com")

	if err := repo.DeleteUser(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteUser() unexpected error: %v", err)
	}

	if _, found, _ := repo.GetUserByID(context.Background(), created.ID); found {
		t.Error("DeleteUser() left the user behind")
	}

	if err := repo.DeleteUser(context.Background(), created.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("DeleteUser(missing) error = %v, want ErrUserNotFound", err)
	}
}
