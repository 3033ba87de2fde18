package users

import (
	"strings"

	"github.com/jrsteele09/go-school-portal/routes"
)

// RoleType represents the role the backend assigned to a user
type RoleType string

const (
	RoleStudent RoleType = "STUDENT" // Sees homework, schedule and grades
	RoleTeacher RoleType = "TEACHER" // Creates homework and grades submissions
	RoleAdmin   RoleType = "ADMIN"   // School administration
)

// AllRoles lists every role the client knows how to route
var AllRoles = []RoleType{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole converts the backend representation into a RoleType.
// The second return value is false for anything outside AllRoles.
func ParseRole(s string) (RoleType, bool) {
	r := RoleType(strings.TrimSpace(s))
	return r, r.Valid()
}

// Valid reports whether the role is one of the enumerated roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

func (r RoleType) String() string {
	return string(r)
}

// HomePath returns the dashboard path for the role. Unknown roles, including
// the empty role, map to the application root.
func (r RoleType) HomePath() string {
	switch r {
	case RoleStudent:
		return routes.PageStudent
	case RoleTeacher:
		return routes.PageTeacher
	case RoleAdmin:
		return routes.PageAdmin
	}
	return routes.PageRoot
}

// RequiredRoleForPath returns the role guarding the page at path.
// ok is false when the path is not a protected page.
func RequiredRoleForPath(path string) (role RoleType, ok bool) {
	switch {
	case strings.HasPrefix(path, routes.PageStudent):
		return RoleStudent, true
	case strings.HasPrefix(path, routes.PageTeacher):
		return RoleTeacher, true
	case strings.HasPrefix(path, routes.PageAdmin):
		return RoleAdmin, true
	}
	return "", false
}

// Identity is who the current session is logged in as
type Identity struct {
	UserID string   `json:"user_id"` // Backend user id
	Name   string   `json:"name"`    // Display name
	Role   RoleType `json:"role"`    // Backend role, may be outside AllRoles
}

// IsZero reports whether no identity is set
func (id Identity) IsZero() bool {
	return id.UserID == "" && id.Name == "" && id.Role == ""
}

// HasRole reports whether the identity carries the given role
func (id Identity) HasRole(role RoleType) bool {
	return id.Role == role
}
