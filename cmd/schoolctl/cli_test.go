package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-school-portal/auth"
	"github.com/jrsteele09/go-school-portal/internal/config"
	"github.com/jrsteele09/go-school-portal/school"
	"github.com/jrsteele09/go-school-portal/sessions"
	fakesessionrepo "github.com/jrsteele09/go-school-portal/sessions/repofakes"
	"github.com/jrsteele09/go-school-portal/users"
	"github.com/stretchr/testify/require"
)

type cliFixture struct {
	cli  *commandLine
	out  *bytes.Buffer
	repo *fakesessionrepo.FakeSessionRepo

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	hits     []string
}

func setup(t *testing.T) *cliFixture {
	t.Helper()
	f := &cliFixture{handlers: map[string]http.HandlerFunc{}, out: &bytes.Buffer{}}

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits = append(f.hits, r.Method+" "+r.URL.Path)
		h, ok := f.handlers[r.Method+" "+r.URL.Path]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(backend.Close)

	f.repo = fakesessionrepo.NewFakeSessionRepo()
	manager, err := auth.NewManager(backend.URL, f.repo)
	require.NoError(t, err)

	f.cli = &commandLine{
		cfg:     config.New(),
		manager: manager,
		school:  school.NewClient(manager),
		out:     f.out,
	}
	return f
}

func (f *cliFixture) respond(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (f *cliFixture) loginAs(t *testing.T, role users.RoleType) {
	t.Helper()
	require.NoError(t, f.repo.Save(sessions.Session{
		AccessToken:  "A1",
		RefreshToken: "R1",
		Role:         role,
		Name:         "Aziz",
		UserID:       "7",
	}))
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func (f *cliFixture) check(t *testing.T, tt cliTest) {
	t.Helper()
	f.out.Reset()
	err := f.cli.run(append([]string{"schoolctl"}, tt.args...))
	switch {
	case tt.wantErr != nil:
		require.ErrorIs(t, err, tt.wantErr)
	case tt.wantErrStr != "":
		require.ErrorContains(t, err, tt.wantErrStr)
	default:
		require.NoError(t, err)
	}
	if tt.wantOut != "" {
		require.Contains(t, f.out.String(), tt.wantOut)
	}
}

func Test_commandLine_usage(t *testing.T) {
	f := setup(t)
	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp, wantOut: "Usage:"},
		{name: "get without path", args: []string{"get"}, wantErr: errHelp},
		{name: "login without phone", args: []string{"login"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.check(t, tt)
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	restore := readPasswordFunc
	defer func() { readPasswordFunc = restore }()

	t.Run("password prompted", func(t *testing.T) {
		f := setup(t)
		f.respond(http.MethodPost, "/login/", http.StatusOK, `{"access":"A1","refresh":"R1","role":"TEACHER","name":"Aziz","user_id":"7"}`)
		prompted := false
		readPasswordFunc = func(fd int) ([]byte, error) {
			prompted = true
			return []byte("secret1"), nil
		}

		f.check(t, cliTest{args: []string{"login", "-phone", "90 123 45 67"}, wantOut: "Logged in as Aziz (TEACHER), dashboard /teacher/"})
		require.True(t, prompted)
		require.Contains(t, f.out.String(), "Enter password:")

		s, err := f.repo.Get()
		require.NoError(t, err)
		require.Equal(t, users.RoleTeacher, s.Role)
	})

	t.Run("prompt failure", func(t *testing.T) {
		f := setup(t)
		readPasswordFunc = func(fd int) ([]byte, error) {
			return nil, errors.New("not a terminal")
		}
		f.check(t, cliTest{args: []string{"login", "-phone", "998901234567"}, wantErrStr: "not a terminal"})
	})

	t.Run("invalid phone never reaches the backend", func(t *testing.T) {
		f := setup(t)
		f.check(t, cliTest{args: []string{"login", "-phone", "123", "-password", "secret1"}, wantErr: auth.ErrInvalidCredentials})
		require.Empty(t, f.hits)
	})

	t.Run("rejected", func(t *testing.T) {
		f := setup(t)
		f.respond(http.MethodPost, "/login/", http.StatusUnauthorized, `{"error":"Login yoki parol noto‘g‘ri"}`)
		f.check(t, cliTest{args: []string{"login", "-phone", "998901234567", "-password", "secret1"}, wantErrStr: "Login yoki parol noto‘g‘ri"})
		require.False(t, f.cli.manager.Active())
	})
}

func Test_commandLine_session(t *testing.T) {
	t.Run("status without session", func(t *testing.T) {
		f := setup(t)
		f.check(t, cliTest{args: []string{"status"}, wantOut: "Not logged in"})
	})

	t.Run("status", func(t *testing.T) {
		f := setup(t)
		f.loginAs(t, users.RoleStudent)
		f.check(t, cliTest{args: []string{"status"}, wantOut: "/student/"})
		require.Contains(t, f.out.String(), "Aziz")
		require.Empty(t, f.hits)
	})

	t.Run("status verify failure logs out", func(t *testing.T) {
		f := setup(t)
		f.loginAs(t, users.RoleStudent)
		f.respond(http.MethodGet, "/api/auth/verify/", http.StatusUnauthorized, `{}`)
		f.respond(http.MethodPost, "/api/auth/token/refresh/", http.StatusUnauthorized, `{}`)

		f.check(t, cliTest{args: []string{"status", "-verify"}, wantOut: "no longer valid"})
		require.False(t, f.cli.manager.Active())
	})

	t.Run("logout", func(t *testing.T) {
		f := setup(t)
		f.loginAs(t, users.RoleAdmin)
		f.check(t, cliTest{args: []string{"logout"}, wantOut: "Logged out"})
		require.False(t, f.cli.manager.Active())
	})
}

func Test_commandLine_get(t *testing.T) {
	t.Run("not logged in", func(t *testing.T) {
		f := setup(t)
		f.check(t, cliTest{args: []string{"get", "/api/homework/"}, wantErr: errNotLoggedIn})
		require.Empty(t, f.hits)
	})

	t.Run("body written", func(t *testing.T) {
		f := setup(t)
		f.loginAs(t, users.RoleStudent)
		f.respond(http.MethodGet, "/api/groups/my-groups/", http.StatusOK, `[{"id":1}]`)
		f.check(t, cliTest{args: []string{"get", "api/groups/my-groups/"}, wantOut: `[{"id":1}]`})
	})

	t.Run("non-2xx", func(t *testing.T) {
		f := setup(t)
		f.loginAs(t, users.RoleStudent)
		f.respond(http.MethodGet, "/api/groups/my-groups/", http.StatusForbidden, `{"detail":"no"}`)
		f.check(t, cliTest{args: []string{"get", "/api/groups/my-groups/"}, wantErrStr: "Forbidden", wantOut: `{"detail":"no"}`})
	})

	t.Run("session ended", func(t *testing.T) {
		f := setup(t)
		f.loginAs(t, users.RoleStudent)
		f.respond(http.MethodGet, "/api/groups/my-groups/", http.StatusUnauthorized, `{}`)
		f.respond(http.MethodPost, "/api/auth/token/refresh/", http.StatusUnauthorized, `{}`)
		f.check(t, cliTest{args: []string{"get", "/api/groups/my-groups/"}, wantErr: auth.ErrSessionEnded})
	})
}

func Test_commandLine_domain(t *testing.T) {
	restore := nowFunc
	defer func() { nowFunc = restore }()
	nowFunc = func() time.Time { return time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC) }

	t.Run("homework", func(t *testing.T) {
		f := setup(t)
		f.loginAs(t, users.RoleStudent)
		f.respond(http.MethodGet, "/api/homework/", http.StatusOK,
			`[{"id":3,"title":"Essay","course":"Literature","status":"pending","deadline":"2026-10-17T11:00:00Z"}]`)

		f.check(t, cliTest{args: []string{"homework"}, wantOut: "Essay"})
		require.Contains(t, f.out.String(), "1d 3h")
	})

	t.Run("schedule as teacher", func(t *testing.T) {
		f := setup(t)
		f.loginAs(t, users.RoleTeacher)
		f.check(t, cliTest{args: []string{"schedule"}, wantErrStr: "only available to students"})
		require.Empty(t, f.hits)
	})

	t.Run("schedule", func(t *testing.T) {
		f := setup(t)
		f.loginAs(t, users.RoleStudent)
		f.respond(http.MethodGet, "/api/schedules/my-schedule/", http.StatusOK,
			`[{"course_name":"Physics","teacher_name":"Karimov","day_of_week":"Monday","start_time":"09:00","end_time":"10:30","room":"101"}]`)
		f.check(t, cliTest{args: []string{"schedule"}, wantOut: "09:00-10:30"})
	})

	t.Run("grades not logged in", func(t *testing.T) {
		f := setup(t)
		f.check(t, cliTest{args: []string{"grades"}, wantErr: errNotLoggedIn})
	})
}

func Test_remaining(t *testing.T) {
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	at := func(d time.Duration) school.Homework {
		return school.Homework{Deadline: now.Add(d).Format(time.RFC3339)}
	}

	require.Equal(t, "-", remaining(school.Homework{}, now))
	require.Equal(t, "expired", remaining(at(-time.Minute), now))
	require.Equal(t, "2d 5h", remaining(at(53*time.Hour), now))
	require.Equal(t, "5h", remaining(at(5*time.Hour+10*time.Minute), now))
	require.Equal(t, "42m", remaining(at(42*time.Minute), now))
}
