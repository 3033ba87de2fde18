package errors

import (
	"errors"
)

// Common error types for the school portal client
var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrRefreshFailed      = errors.New("refresh failed")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session ended")

	// Transport errors
	ErrNetwork = errors.New("network error")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
)
