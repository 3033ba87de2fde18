package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jrsteele09/go-school-portal/auth"
	"github.com/jrsteele09/go-school-portal/routes"
	"github.com/jrsteele09/go-school-portal/school"
	"github.com/jrsteele09/go-school-portal/users"
	"github.com/rs/zerolog/log"
)

const networkErrorMessage = "Server bilan bog‘lanishda xatolik"

// forwarded request and response headers for the /api/ passthrough
var (
	proxyRequestHeaders  = []string{"Content-Type", "Accept", "Accept-Language"}
	proxyResponseHeaders = []string{"Content-Type", "Content-Disposition", "Cache-Control"}
)

// landingPage is the JSON rendering of the application root
type landingPage struct {
	Authenticated bool            `json:"authenticated"`
	User          *users.Identity `json:"user,omitempty"`
	Dashboard     string          `json:"dashboard,omitempty"`
}

// IndexHandler serves the landing page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := landingPage{}
		if id, ok := s.manager.CurrentUser(); ok {
			page.Authenticated = true
			page.User = &id
			page.Dashboard = auth.RoleHomePath(id.Role)
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// LoginPageHandler serves the login page. Authenticated visitors never get
// here: the page guard sends them to their dashboard.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
			"error":         r.URL.Query().Get("error"),
			"fields":        []string{"phone", "password"},
		})
	}
}

// LoginSubmissionHandler handles the login form post
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, routes.PageLogin, "Invalid form")
			return
		}

		creds, err := s.validator.ValidateCredentials(r.PostFormValue("phone"), r.PostFormValue("password"))
		if err != nil {
			redirectWithError(w, r, routes.PageLogin, err.Error())
			return
		}

		session, err := s.manager.Login(r.Context(), creds.Phone, creds.Password)
		if err != nil {
			var credErr *auth.InvalidCredentialsError
			switch {
			case errors.As(err, &credErr):
				redirectWithError(w, r, routes.PageLogin, credErr.Message)
			case errors.Is(err, auth.ErrNetwork):
				redirectWithError(w, r, routes.PageLogin, networkErrorMessage)
			default:
				log.Err(err).Msg("login failed")
				redirectWithError(w, r, routes.PageLogin, "Login failed")
			}
			return
		}

		redirectSuccess(w, r, auth.RoleHomePath(session.Role))
	}
}

// LogoutHandler ends the session and returns to the application root
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.manager.Logout()
		redirectSuccess(w, r, routes.PageRoot)
	}
}

// dashboard is the JSON rendering of a role page. Sections that failed to
// load are reported in Errors and left out, the rest of the page still renders.
type dashboard struct {
	User     users.Identity    `json:"user"`
	Sections map[string]any    `json:"sections"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type section struct {
	name string
	load func(r *http.Request) (any, error)
}

func (s *Server) StudentDashboardHandler() http.HandlerFunc {
	return s.dashboardHandler([]section{
		{"stats", func(r *http.Request) (any, error) { return s.school.StudentStats(r.Context()) }},
		{"recent_homework", func(r *http.Request) (any, error) { return s.school.RecentHomework(r.Context()) }},
		{"homework", func(r *http.Request) (any, error) { return s.school.Homework(r.Context()) }},
		{"schedule", func(r *http.Request) (any, error) { return s.school.MySchedule(r.Context()) }},
		{"grades", func(r *http.Request) (any, error) { return s.school.MyGrades(r.Context()) }},
	})
}

func (s *Server) TeacherDashboardHandler() http.HandlerFunc {
	return s.dashboardHandler([]section{
		{"stats", func(r *http.Request) (any, error) { return s.school.TeacherStats(r.Context()) }},
		{"recent_submissions", func(r *http.Request) (any, error) { return s.school.RecentSubmissions(r.Context()) }},
		{"groups", func(r *http.Request) (any, error) { return s.school.MyGroups(r.Context()) }},
		{"homework", func(r *http.Request) (any, error) { return s.school.Homework(r.Context()) }},
	})
}

// AdminDashboardHandler only shows who is logged in, administration happens in the backend
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return s.dashboardHandler(nil)
}

func (s *Server) dashboardHandler(sections []section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromContext(r.Context())
		if !ok {
			redirectSuccess(w, r, routes.PageLogin)
			return
		}

		page := dashboard{
			User:     session.Identity(),
			Sections: make(map[string]any, len(sections)),
		}
		for _, sec := range sections {
			data, err := sec.load(r)
			if err != nil {
				if errors.Is(err, auth.ErrSessionEnded) {
					redirectSuccess(w, r, routes.PageRoot)
					return
				}
				if page.Errors == nil {
					page.Errors = map[string]string{}
				}
				page.Errors[sec.name] = sectionError(err)
				log.Warn().Err(err).Str("section", sec.name).Msg("dashboard section failed")
				continue
			}
			page.Sections[sec.name] = data
		}

		writeJSON(w, http.StatusOK, page)
	}
}

func sectionError(err error) string {
	var apiErr *school.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, auth.ErrNetwork) {
		return networkErrorMessage
	}
	return "failed to load"
}

// APIProxyHandler forwards /api/ calls to the backend with the session's
// bearer token, applying the refresh and single retry of the manager.
func (s *Server) APIProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := s.manager.URL(r.URL.Path)
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}

		var body io.Reader
		if r.ContentLength != 0 {
			body = r.Body
		}
		req, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		for _, h := range proxyRequestHeaders {
			if v := r.Header.Get(h); v != "" {
				req.Header.Set(h, v)
			}
		}

		resp, err := s.manager.Do(req)
		switch {
		case errors.Is(err, auth.ErrSessionEnded):
			writeSessionEnded(w, routes.PageRoot)
			return
		case errors.Is(err, auth.ErrNetwork):
			logError(r.Method, r.URL.Path, err.Error())
			writeError(w, http.StatusBadGateway, networkErrorMessage)
			return
		case err != nil:
			logError(r.Method, r.URL.Path, err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		defer resp.Body.Close()

		for _, h := range proxyResponseHeaders {
			if v := resp.Header.Get(h); v != "" {
				w.Header().Set(h, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to copy backend response")
		}
	}
}

func logError(method, path, errMsg string) {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Error().Str("method", method).Str("path", path).Msg(color + method + ResetColor + " " + Red + errMsg + ResetColor)
}
