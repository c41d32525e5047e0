package types

import "time"

// UserStatus marks whether an account may sign in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address.
	Email string `json:"email" db:"email"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Role is the user's authorization tier.
	Role Role `json:"role" db:"role"`

	// Status indicates whether the account is active or inactive.
	Status UserStatus `json:"status" db:"status"`

	// Department is the organizational unit the user belongs to.
	Department string `json:"department" db:"department"`

	// Protected marks the primordial super account, which can never be
	// deleted or demoted, by any role.
	Protected bool `json:"protected" db:"protected"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// LastLoginAt is the timestamp of the most recent successful sign-in,
	// zero if the user has never signed in.
	LastLoginAt time.Time `json:"last_login_at" db:"last_login_at"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Viewer is the session projection threaded through services and the
// policy layer: just enough identity to evaluate permissions.
type Viewer struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}
