package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-school-portal/routes"
	"github.com/jrsteele09/go-school-portal/sessions"
	"github.com/jrsteele09/go-school-portal/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCheckInterval = 5 * time.Minute
	refreshFlightKey     = "refresh"
	contentTypeJSON      = "application/json"
)

// Manager owns the session and mediates every call to the school backend:
// it attaches the bearer token, refreshes an expired access token once, and
// logs the session out when the refresh fails.
type Manager struct {
	baseURL       string
	repo          sessions.Repo
	httpClient    *http.Client
	navigator     Navigator
	nowTime       func() time.Time
	checkInterval time.Duration
	dedupeRefresh bool
	refreshGroup  singleflight.Group

	// validity check lifecycle
	lifecycleLock sync.Mutex
	stopCheck     context.CancelFunc
	checkDone     chan struct{}
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithHTTPClient sets the client used for every backend call
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = client
	}
}

// WithNavigator sets where redirects (logout, role guards) are sent
func WithNavigator(navigator Navigator) ManagerOption {
	return func(m *Manager) {
		m.navigator = navigator
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithCheckInterval sets the period of the session validity check
func WithCheckInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) {
		if interval > 0 {
			m.checkInterval = interval
		}
	}
}

// WithConcurrentRefresh lets concurrent 401s each run their own refresh round
// trip instead of sharing one.
func WithConcurrentRefresh() ManagerOption {
	return func(m *Manager) {
		m.dedupeRefresh = false
	}
}

// NewManager initializes a Manager talking to the backend at baseURL and
// keeping its session in repo.
func NewManager(baseURL string, repo sessions.Repo, options ...ManagerOption) (*Manager, error) {
	if baseURL == "" {
		return nil, errors.New("[NewManager] baseURL is required")
	}
	if repo == nil {
		return nil, errors.New("[NewManager] session repo is required")
	}

	m := &Manager{
		baseURL:       baseURL,
		repo:          repo,
		httpClient:    http.DefaultClient,
		navigator:     LogNavigator{},
		nowTime:       time.Now,
		checkInterval: defaultCheckInterval,
		dedupeRefresh: true,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.httpClient == nil {
		m.httpClient = http.DefaultClient
	}
	if m.navigator == nil {
		m.navigator = LogNavigator{}
	}

	return m, nil
}

// URL resolves a backend path against the base URL
func (m *Manager) URL(path string) string {
	return routes.Join(m.baseURL, path)
}

// Login posts the credentials to the login endpoint and persists the new session.
// Nothing is written when the login fails.
func (m *Manager) Login(ctx context.Context, identifier, secret string) (sessions.Session, error) {
	body, err := json.Marshal(LoginRequest{Phone: identifier, Password: secret})
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Manager.Login] encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL(routes.EndpointLogin), bytes.NewReader(body))
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Manager.Login] new request")
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("login request failed")
		return sessions.Session{}, networkError("[Manager.Login]", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		msg := errorMessage(resp.Body, "Login failed")
		log.Info().Int("status", resp.StatusCode).Str("identifier", identifier).Msg("login rejected")
		return sessions.Session{}, &InvalidCredentialsError{Status: resp.StatusCode, Message: msg}
	}

	var lr LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return sessions.Session{}, errors.Wrapf(ErrInvalidResponse, "[Manager.Login] decode response: %v", err)
	}
	if lr.Access == "" {
		return sessions.Session{}, errors.Wrap(ErrInvalidResponse, "[Manager.Login] response carries no access token")
	}

	session := sessions.Session{
		ID:           uuid.New().String(),
		AccessToken:  lr.Access,
		RefreshToken: lr.Refresh,
		Role:         users.RoleType(lr.Role),
		Name:         lr.Name,
		UserID:       string(lr.UserID),
		CreatedAt:    m.nowTime(),
	}
	if err := m.repo.Save(session); err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Manager.Login] repo.Save")
	}

	log.Info().Str("session", session.ID).Str("role", lr.Role).Str("user_id", session.UserID).Msg("logged in")
	return session, nil
}

// Refresh mints a new access token from the stored refresh token.
// Only the access token is overwritten; on any failure the session is left
// untouched and false is returned, the caller decides whether to log out.
//
// Concurrent callers share one round trip. The shared round trip is not bound
// to the context of the caller that started it: a caller whose ctx ends gets
// false while the others still receive the real outcome.
func (m *Manager) Refresh(ctx context.Context) bool {
	if !m.dedupeRefresh {
		return m.refresh(ctx)
	}
	flight := m.refreshGroup.DoChan(refreshFlightKey, func() (any, error) {
		return m.refresh(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-flight:
		if res.Shared {
			log.Debug().Msg("joined in-flight token refresh")
		}
		ok, _ := res.Val.(bool)
		return ok
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Msg("stopped waiting for token refresh")
		return false
	}
}

func (m *Manager) refresh(ctx context.Context) bool {
	session, err := m.repo.Get()
	if err != nil || session.RefreshToken == "" {
		return false
	}

	body, err := json.Marshal(RefreshRequest{Refresh: session.RefreshToken})
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL(routes.EndpointTokenRefresh), bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("session", session.ID).Msg("token refresh failed")
		return false
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		log.Info().Int("status", resp.StatusCode).Str("session", session.ID).Msg("token refresh rejected")
		return false
	}

	var rr RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil || rr.Access == "" {
		log.Warn().Str("session", session.ID).Msg("token refresh returned no access token")
		return false
	}

	if err := m.repo.UpdateAccessToken(rr.Access); err != nil {
		// A logout that raced the refresh wins
		log.Warn().Err(err).Str("session", session.ID).Msg("token refresh not stored")
		return false
	}

	log.Debug().Str("session", session.ID).Msg("access token refreshed")
	return true
}

// Do sends req with the current bearer token.
//
// A 401 triggers one refresh; when it succeeds the original request is sent
// exactly once more with the new token and that response is returned as is,
// even if it is another 401. When the refresh fails the session is logged out
// and Do returns ErrSessionEnded, unless the request's own context ended
// first: then the context error is returned and the session is kept. Any other response is returned unmodified
// and transport failures are returned wrapped in ErrNetwork.
//
// Requests with a body that has no GetBody are buffered so they can be replayed.
func (m *Manager) Do(req *http.Request) (*http.Response, error) {
	req, err := replayable(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Do] buffer request body")
	}

	session, _ := m.current()
	resp, err := m.dispatch(req, false)
	if err != nil {
		return nil, networkError("[Manager.Do] "+req.Method+" "+req.URL.Path, err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	discard(resp)

	log.Debug().Err(ErrExpiredCredential).Str("path", req.URL.Path).Str("session", session.ID).Msg("refreshing access token")
	if !m.Refresh(req.Context()) {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, "[Manager.Do] refresh interrupted")
		}
		log.Info().Err(ErrRefreshFailed).Str("session", session.ID).Msg("forcing logout")
		m.Logout()
		return nil, errors.Wrap(ErrSessionEnded, ErrRefreshFailed.Error())
	}

	resp, err = m.dispatch(req, true)
	if err != nil {
		return nil, networkError("[Manager.Do] retry "+req.Method+" "+req.URL.Path, err)
	}
	return resp, nil
}

// Get is a convenience wrapper around Do for GET requests on backend paths.
func (m *Manager) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL(path), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Get] new request")
	}
	return m.Do(req)
}

// Logout clears the whole session and navigates to the application root.
// Calling it without a session is harmless.
func (m *Manager) Logout() {
	session, _ := m.current()
	if err := m.repo.Clear(); err != nil {
		log.Err(err).Str("session", session.ID).Msg("failed to clear session")
	}
	if session.Active() {
		log.Info().Str("session", session.ID).Msg("logged out")
	}
	m.navigate(routes.PageRoot)
}

// Active reports whether a session with an access token is stored
func (m *Manager) Active() bool {
	_, ok := m.current()
	return ok
}

// Current returns a copy of the stored session. ok is false when no session is active.
func (m *Manager) Current() (session sessions.Session, ok bool) {
	return m.current()
}

// CurrentUser returns the identity of the stored session
func (m *Manager) CurrentUser() (users.Identity, bool) {
	session, ok := m.current()
	if !ok {
		return users.Identity{}, false
	}
	return session.Identity(), true
}

// Role returns the role of the stored session, empty when there is none
func (m *Manager) Role() users.RoleType {
	session, _ := m.current()
	return session.Role
}

func (m *Manager) current() (sessions.Session, bool) {
	session, err := m.repo.Get()
	if err != nil {
		if !errors.Is(err, sessions.ErrNotFound) {
			log.Err(err).Msg("failed to read session")
		}
		return sessions.Session{}, false
	}
	return session, session.Active()
}

// dispatch sends one attempt of req, authorized with the token currently
// served by TokenSource. Without a session the request goes out anonymous.
func (m *Manager) dispatch(req *http.Request, replay bool) (*http.Response, error) {
	out := req.Clone(req.Context())
	if replay && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}

	// Multipart and other explicit content types keep their own header (and boundary)
	if out.Body != nil && out.Body != http.NoBody && out.Header.Get("Content-Type") == "" {
		out.Header.Set("Content-Type", contentTypeJSON)
	}
	out.Header.Del("Authorization")
	if token, err := m.TokenSource().Token(); err == nil {
		token.SetAuthHeader(out)
	}

	return m.httpClient.Do(out)
}

func (m *Manager) navigate(path string) {
	m.navigator.Navigate(path)
}

// replayable makes sure the request body can be read twice
func replayable(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(data))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	out.ContentLength = int64(len(data))
	return out, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
