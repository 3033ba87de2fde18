package sessions

import (
	apperrors "github.com/jrsteele09/go-school-portal/internal/errors"
)

// ErrNotFound is returned by a Repo when no session is stored
var ErrNotFound = apperrors.ErrSessionNotFound

// Repo defines the storage of the single process-wide session.
// Every method operates on the whole record: there is no partial write.
type Repo interface {
	// Get returns the stored session or ErrNotFound
	Get() (Session, error)

	// Save replaces the stored session
	Save(session Session) error

	// UpdateAccessToken overwrites only the access token of the stored session.
	// Returns ErrNotFound when no session is stored.
	UpdateAccessToken(accessToken string) error

	// Clear removes the stored session. Clearing an empty repo is not an error.
	Clear() error
}
