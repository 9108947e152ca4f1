package domain_test

import (
	"testing"

	"github.com/mkrupp/taskcase/internal/domain"
)

var (
	admin = domain.User{ID: 1, Username: "root", Role: domain.RoleAdmin, Active: true}
	alice = domain.User{ID: 2, Username: "alice", Role: domain.RoleUser, Active: true}
	bob   = domain.User{ID: 3, Username: "bob", Role: domain.RoleUser, Active: true}
)

func TestCanAccessTask(t *testing.T) {
	t.Parallel()

	task := domain.Task{ID: 10, CreatedBy: alice.ID}

	tests := []struct {
		name  string
		actor domain.User
		want  bool
	}{
		{name: "owner", actor: alice, want: true},
		{name: "admin", actor: admin, want: true},
		{name: "other user", actor: bob, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := domain.CanAccessTask(tt.actor, task); got != tt.want {
				t.Errorf("CanAccessTask() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewUserTasks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		actor  domain.User
		userID int64
		want   bool
	}{
		{name: "own tasks", actor: alice, userID: alice.ID, want: true},
		{name: "admin views anyone", actor: admin, userID: bob.ID, want: true},
		{name: "other user's tasks", actor: alice, userID: bob.ID, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := domain.CanViewUserTasks(tt.actor, tt.userID); got != tt.want {
				t.Errorf("CanViewUserTasks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskOwnerScope(t *testing.T) {
	t.Parallel()

	if scope := domain.TaskOwnerScope(admin); scope != nil {
		t.Errorf("TaskOwnerScope(admin) = %v, want nil", *scope)
	}

	scope := domain.TaskOwnerScope(alice)
	if scope == nil {
		t.Fatal("TaskOwnerScope(user) = nil, want owner filter")
	}

	if *scope != alice.ID {
		t.Errorf("TaskOwnerScope(user) = %d, want %d", *scope, alice.ID)
	}
}

func TestRestrictSelfUpdate(t *testing.T) {
	t.Parallel()

	var (
		username = "newname"
		role     = domain.RoleAdmin
		active   = false
	)

	restricted := domain.RestrictSelfUpdate(domain.UserUpdate{
		Username: &username,
		Role:     &role,
		Active:   &active,
	})

	if restricted.Role != nil {
		t.Error("RestrictSelfUpdate() kept the role field")
	}

	if restricted.Active != nil {
		t.Error("RestrictSelfUpdate() kept the active field")
	}

	if restricted.Username == nil || *restricted.Username != username {
		t.Error("RestrictSelfUpdate() dropped the username field")
	}
}
