package fakesessionrepo

import (
	"sync"

	"github.com/jrsteele09/go-school-portal/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the session in memory. It also counts writes so tests
// can assert on persistence behaviour.
type FakeSessionRepo struct {
	session *sessions.Session
	saves   int
	clears  int
	lock    sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

// NewFakeSessionRepoWith returns a repo already holding session
func NewFakeSessionRepoWith(session sessions.Session) *FakeSessionRepo {
	return &FakeSessionRepo{session: &session}
}

func (sr *FakeSessionRepo) Get() (sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if sr.session == nil {
		return sessions.Session{}, sessions.ErrNotFound
	}
	return *sr.session, nil
}

func (sr *FakeSessionRepo) Save(session sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.session = &session
	sr.saves++
	return nil
}

func (sr *FakeSessionRepo) UpdateAccessToken(accessToken string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if sr.session == nil {
		return sessions.ErrNotFound
	}
	updated := *sr.session
	updated.AccessToken = accessToken
	sr.session = &updated
	sr.saves++
	return nil
}

func (sr *FakeSessionRepo) Clear() error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.session = nil
	sr.clears++
	return nil
}

// Saves returns how many writes the repo has seen
func (sr *FakeSessionRepo) Saves() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.saves
}

// Clears returns how many times Clear was called
func (sr *FakeSessionRepo) Clears() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.clears
}
