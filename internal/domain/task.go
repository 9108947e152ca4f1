package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskNotFound is returned when a task does not exist or the actor
	// may not see it. Policy denials on by-id access surface as this error
	// so the existence of other users' tasks is not leaked.
	ErrTaskNotFound = errors.New("task not found")
)

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Task represents a unit of work owned by exactly one user.
// The owner is set at creation from the acting identity and never changes.
type Task struct {
	ID          int64      `json:"id"`          // Unique identifier
	Title       string     `json:"title"`       // Short summary, 1-200 characters
	Description string     `json:"description"` // Optional detail, up to 1000 characters
	Status      TaskStatus `json:"status"`      // Lifecycle state
	CreatedBy   int64      `json:"created_by"`  // Owning user's ID
	CreatedAt   int64      `json:"created_at"`  // Unix timestamp of creation
	UpdatedAt   int64      `json:"updated_at"`  // Unix timestamp of last mutation
}

// TaskCreate is the payload for creating a task. Any owner supplied by the
// client is ignored; ownership always comes from the authenticated actor.
type TaskCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
}

// TaskUpdate is a partial update of a task. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
}

const (
	titleMaxLen       = 200
	descriptionMaxLen = 1000
)

// Validate checks the create payload against task constraints.
func (t TaskCreate) Validate() error {
	if err := validateTitle(t.Title); err != nil {
		return err
	}

	if err := validateDescription(t.Description); err != nil {
		return err
	}

	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPayload, t.Status)
	}

	return nil
}

// Validate checks the populated fields of a partial task update.
func (t TaskUpdate) Validate() error {
	if t.Title != nil {
		if err := validateTitle(*t.Title); err != nil {
			return err
		}
	}

	if t.Description != nil {
		if err := validateDescription(*t.Description); err != nil {
			return err
		}
	}

	if t.Status != nil && !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPayload, *t.Status)
	}

	return nil
}

func validateTitle(title string) error {
	if len(title) < 1 || len(title) > titleMaxLen {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidPayload, titleMaxLen)
	}

	return nil
}

func validateDescription(description string) error {
	if len(description) > descriptionMaxLen {
		return fmt.Errorf("%w: description must be at most %d characters", ErrInvalidPayload, descriptionMaxLen)
	}

	return nil
}
