package sessions

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-school-portal/users"
)

// Session is the persisted "currently logged in as" record.
// It is stored and cleared as a single record so the five logical entries
// (access_token, refresh_token, user_role, user_name, user_id) never drift apart.
type Session struct {
	ID           string         `json:"id"`            // Local id (UUID) for log correlation, never sent to the backend
	AccessToken  string         `json:"access_token"`  // Short lived bearer credential
	RefreshToken string         `json:"refresh_token"` // Only used to mint a new access token
	Role         users.RoleType `json:"user_role"`     // Backend role
	Name         string         `json:"user_name"`     // Display name
	UserID       string         `json:"user_id"`       // Backend user id
	CreatedAt    time.Time      `json:"created_at"`    // When the session was created by a login
}

// Active reports whether the session holds an access token
func (s Session) Active() bool {
	return s.AccessToken != ""
}

// Identity returns the user identity carried by the session
func (s Session) Identity() users.Identity {
	return users.Identity{
		UserID: s.UserID,
		Name:   s.Name,
		Role:   s.Role,
	}
}

// AccessTokenExpiry returns the exp claim of the access token when it is a JWT.
// The token is not verified; the backend remains the authority on validity.
func (s Session) AccessTokenExpiry() (time.Time, bool) {
	return TokenExpiry(s.AccessToken)
}

// TokenExpiry reads the unverified exp claim of a JWT
func TokenExpiry(rawToken string) (time.Time, bool) {
	if rawToken == "" {
		return time.Time{}, false
	}
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
