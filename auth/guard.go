package auth

import (
	"github.com/jrsteele09/go-school-portal/routes"
	"github.com/jrsteele09/go-school-portal/sessions"
	"github.com/jrsteele09/go-school-portal/users"
	"github.com/rs/zerolog/log"
)

// RoleHomePath maps a role to its dashboard. Anything outside the known
// roles, including the empty role, maps to the application root.
func RoleHomePath(role users.RoleType) string {
	return role.HomePath()
}

// RequireRole guards an operation or page.
// With no active session it navigates to the login page. When expected is not
// empty and differs from the session role it navigates to the session role's
// own dashboard. In both cases it returns false; otherwise it returns true
// without side effects. Pass the empty role to only require a session.
func (m *Manager) RequireRole(expected users.RoleType) bool {
	session, ok := m.current()
	if !ok {
		m.navigate(routes.PageLogin)
		return false
	}
	if expected != "" && session.Role != expected {
		log.Debug().Str("role", string(session.Role)).Str("expected", string(expected)).Msg("role mismatch")
		m.navigate(RoleHomePath(session.Role))
		return false
	}
	return true
}

// RedirectToDashboard navigates to the dashboard of the current session role
func (m *Manager) RedirectToDashboard() {
	m.navigate(RoleHomePath(m.Role()))
}

// GuardPage applies the page-guard table to path for the given session.
// allowed is false when the visitor must be sent to redirect instead.
//
//	/login/    authenticated            -> own dashboard
//	/student/  unauthenticated          -> /login/
//	/student/  authenticated, not STUDENT -> own dashboard
//
// and likewise for /teacher/ (TEACHER) and /admin/ (ADMIN).
func GuardPage(session sessions.Session, path string) (redirect string, allowed bool) {
	if path == routes.PageLogin {
		if session.Active() {
			return RoleHomePath(session.Role), false
		}
		return "", true
	}

	required, protected := users.RequiredRoleForPath(path)
	if !protected {
		return "", true
	}
	if !session.Active() {
		return routes.PageLogin, false
	}
	if session.Role != required {
		return RoleHomePath(session.Role), false
	}
	return "", true
}

// EnterPage evaluates the page guard for path against the stored session and
// navigates away when the page may not be shown.
func (m *Manager) EnterPage(path string) bool {
	session, _ := m.current()
	redirect, allowed := GuardPage(session, path)
	if !allowed {
		m.navigate(redirect)
	}
	return allowed
}
