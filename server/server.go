package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-school-portal/auth"
	"github.com/jrsteele09/go-school-portal/internal/config"
	"github.com/jrsteele09/go-school-portal/school"
	"github.com/rs/zerolog/log"
)

// Server is the local portal. It plays the part of the browser pages: the
// page guard runs on every page entry and /api/ calls are forwarded to the
// backend through the session manager.
type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	manager   *auth.Manager
	school    *school.Client
	validator *auth.Validator
}

func New(cfg config.EnvConfig, manager *auth.Manager, client *school.Client) (*Server, error) {
	if manager == nil {
		return nil, errors.New("[Server New] session manager is required")
	}
	if client == nil {
		client = school.NewClient(manager)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		manager:   manager,
		school:    client,
		validator: auth.NewValidator(),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}
