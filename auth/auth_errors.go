package auth

import (
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/go-school-portal/internal/errors"
)

var (
	// ErrInvalidCredentials is the class of login failures the user can correct.
	// The concrete error is an *InvalidCredentialsError carrying the server message.
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials

	// ErrNetwork wraps transport failures (connection refused, reset, DNS...)
	ErrNetwork = apperrors.ErrNetwork

	// ErrSessionEnded is the "absent" outcome of Do: the access token expired,
	// the refresh failed, and the session has been logged out.
	ErrSessionEnded = apperrors.ErrSessionEnded

	// ErrNoSession is returned when an operation needs a session and none is stored
	ErrNoSession = apperrors.ErrSessionNotFound

	// ErrExpiredCredential and ErrRefreshFailed never reach callers on their own;
	// they appear in logs and inside ErrSessionEnded chains.
	ErrExpiredCredential = apperrors.ErrTokenExpired
	ErrRefreshFailed     = apperrors.ErrRefreshFailed

	ErrInvalidResponse = errors.New("invalid response")
)

// InvalidCredentialsError is returned by Login when the backend rejects the credentials.
type InvalidCredentialsError struct {
	Status  int    // HTTP status returned by the login endpoint
	Message string // Server supplied message, suitable for display
}

func (e *InvalidCredentialsError) Error() string {
	return e.Message
}

func (e *InvalidCredentialsError) Unwrap() error {
	return ErrInvalidCredentials
}

func networkError(op string, err error) error {
	return fmt.Errorf("%s %w: %w", op, ErrNetwork, err)
}
