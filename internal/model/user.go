package model

import (
	"errors"
	"time"
)

// User represents a registered account
type User struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	DisplayName    *string   `db:"display_name" json:"display_name"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the lightweight author identity attached to videos and comments.
type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Email       string  `db:"email" json:"email"`
	DisplayName *string `db:"display_name" json:"display_name"`
}

// RegisterRequest represents the data needed to register a new account
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when attempting to register an email that is taken
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidEmail is returned when the supplied email fails basic format checks
	ErrInvalidEmail = errors.New("email is invalid")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
