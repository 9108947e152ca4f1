package domain

// Access policy for tasks and users. These are pure decision functions;
// callers decide how a denial is surfaced. Admin role always overrides
// ownership checks, never the other way around.

// CanAccessTask reports whether the actor may read, update, or delete the
// task. Callers surface a denial on by-id access as ErrTaskNotFound, not
// ErrForbidden, so other users' task IDs are indistinguishable from absent
// ones.
func CanAccessTask(actor User, task Task) bool {
	return actor.Role == RoleAdmin || actor.ID == task.CreatedBy
}

// CanViewUserTasks reports whether the actor may list the tasks owned by
// userID. Denials surface as ErrForbidden; user IDs are not secret here.
func CanViewUserTasks(actor User, userID int64) bool {
	return actor.Role == RoleAdmin || actor.ID == userID
}

// CanAdministerUsers reports whether the actor may list, read, update, or
// delete arbitrary user records.
func CanAdministerUsers(actor User) bool {
	return actor.Role == RoleAdmin
}

// TaskOwnerScope returns the mandatory owner filter for task listings:
// nil for admins (all tasks), the actor's own ID otherwise. The filter is
// applied in the query, not after it, so pagination and counts of other
// users' data are never observable.
func TaskOwnerScope(actor User) *int64 {
	if actor.Role == RoleAdmin {
		return nil
	}

	owner := actor.ID

	return &owner
}

// RestrictSelfUpdate strips the fields a user may not change on their own
// record. Role and active flag are mutable only through the admin path, so
// a self-update carrying them cannot escalate privileges.
func RestrictSelfUpdate(update UserUpdate) UserUpdate {
	update.Role = nil
	update.Active = nil

	return update
}
