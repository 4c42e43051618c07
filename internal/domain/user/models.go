package user

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

// User represents an application user
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FirstName       string    `json:"firstName"`
	LastName        *string   `json:"lastName,omitempty"`
	Username        *string   `json:"username,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	ProfilePhotoURL *string   `json:"profilePhotoUrl,omitempty"`
	GlobalPrivacy   bool      `json:"globalPrivacyEnabled"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateParams contains parameters for registering a new user
type CreateParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     *string
}

// UpdateProfileParams contains the editable profile fields.
// Nil pointers mean "leave unchanged".
type UpdateProfileParams struct {
	FirstName       *string
	LastName        *string
	Username        *string
	Bio             *string
	ProfilePhotoURL *string
	GlobalPrivacy   *bool
}
