package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidInput is returned when the username or password is malformed
	ErrInvalidInput = errors.New("invalid login input")
	// ErrStoreUnavailable is returned when the credential store cannot be reached
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrSessionInvalid is returned for a tampered, foreign or expired token
	ErrSessionInvalid = errors.New("invalid session")
	// ErrTooManyAttempts is returned when every login attempt failed
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	// ErrUserNotFound is returned by Store.Lookup for an unknown user
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned by Store.AddUser for a duplicate username
	ErrUserExists = errors.New("user already exists")
)
