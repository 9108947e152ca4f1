package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrUserAlreadyExists is returned when a uniqueness constraint on username or email is violated.
	ErrUserAlreadyExists = errors.New("username or email already registered")
	// ErrUsernameAlreadyRegistered is returned when registering with a taken username.
	ErrUsernameAlreadyRegistered = errors.New("username already registered")
	// ErrEmailAlreadyRegistered is returned when registering with a taken email.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the identifier/password combination is incorrect.
	// Unknown identifier and wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("incorrect username/email or password")
	// ErrUserInactive is returned when a deactivated account attempts to authenticate.
	ErrUserInactive = errors.New("inactive user")
	// ErrInvalidPayload is returned when a request payload fails validation.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Role classifies a user's privilege level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an account in the system.
type User struct {
	ID           int64  `json:"id"`         // Unique identifier
	Username     string `json:"username"`   // Login username, globally unique
	Email        string `json:"email"`      // Contact email, globally unique
	PasswordHash []byte `json:"-"`          // Hashed password, never serialized
	Role         Role   `json:"role"`       // Privilege level
	Active       bool   `json:"is_active"`  // Deactivated accounts cannot authenticate
	CreatedAt    int64  `json:"created_at"` // Unix timestamp of account creation
	UpdatedAt    int64  `json:"updated_at"` // Unix timestamp of last mutation
}

// Registration is the payload for creating a new account.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate is a partial update of a user record. Nil fields are left
// unchanged. Role and Active are honored only on the admin update path.
type UserUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	Active   *bool   `json:"is_active,omitempty"`
}

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
	passwordMaxLen = 100
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate checks the registration payload against account constraints.
func (r Registration) Validate() error {
	if err := ValidateUsername(r.Username); err != nil {
		return err
	}

	if err := ValidateEmail(r.Email); err != nil {
		return err
	}

	return ValidatePassword(r.Password)
}

// Validate checks the populated fields of a partial user update.
func (u UserUpdate) Validate() error {
	if u.Username != nil {
		if err := ValidateUsername(*u.Username); err != nil {
			return err
		}
	}

	if u.Email != nil {
		if err := ValidateEmail(*u.Email); err != nil {
			return err
		}
	}

	if u.Role != nil && !u.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidPayload, *u.Role)
	}

	return nil
}

// ValidateUsername checks username length constraints.
func ValidateUsername(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return fmt.Errorf("%w: username must be %d-%d characters",
			ErrInvalidPayload, usernameMinLen, usernameMaxLen)
	}

	return nil
}

// ValidateEmail checks basic email shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrInvalidPayload)
	}

	return nil
}

// ValidatePassword enforces password strength requirements: minimum length
// plus at least one uppercase letter, one lowercase letter, and one digit.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return fmt.Errorf("%w: password must be %d-%d characters",
			ErrInvalidPayload, passwordMinLen, passwordMaxLen)
	}

	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return fmt.Errorf("%w: password must contain at least one uppercase letter", ErrInvalidPayload)
	}

	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		return fmt.Errorf("%w: password must contain at least one lowercase letter", ErrInvalidPayload)
	}

	if !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return fmt.Errorf("%w: password must contain at least one number", ErrInvalidPayload)
	}

	return nil
}
