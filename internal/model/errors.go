package model

import "errors"

var (
	// Registration conflicts
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateEmail    = errors.New("email already registered")

	// Credential and account state
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrUserNotFound       = errors.New("user not found")

	// Token failures. All of them surface to clients as ErrUnauthenticated;
	// the distinction is kept for logs only.
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrUnauthenticated       = errors.New("could not validate credentials")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
