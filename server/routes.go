package server

import (
	"github.com/jrsteele09/go-school-portal/routes"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+routes.PageRoot+"{$}", ChainMiddleware(s.IndexHandler(), s.PageMiddleware()...))

	// LOGIN
	s.RegisterRouteFunc("GET "+routes.PageLogin, ChainMiddleware(s.LoginPageHandler(), s.PageMiddleware(s.RequirePage())...))
	s.RegisterRouteFunc("POST "+routes.PageLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+routes.PageLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))

	// Dashboards
	s.RegisterRouteFunc("GET "+routes.PageStudent, ChainMiddleware(s.StudentDashboardHandler(), s.PageMiddleware(s.RequirePage())...))
	s.RegisterRouteFunc("GET "+routes.PageTeacher, ChainMiddleware(s.TeacherDashboardHandler(), s.PageMiddleware(s.RequirePage())...))
	s.RegisterRouteFunc("GET "+routes.PageAdmin, ChainMiddleware(s.AdminDashboardHandler(), s.PageMiddleware(s.RequirePage())...))

	// Backend passthrough
	s.RegisterRouteFunc(routes.APIPrefix, ChainMiddleware(s.APIProxyHandler(), s.APIMiddleware()...))
}
