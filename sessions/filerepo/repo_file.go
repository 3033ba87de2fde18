package filerepo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-school-portal/sessions"
	"github.com/pkg/errors"
)

var _ sessions.Repo = (*FileSessionRepo)(nil)

const (
	filePerm = 0o600
	dirPerm  = 0o700
)

// FileSessionRepo persists the session as a single JSON document so it
// survives between process runs. Writes go to a temporary file that is renamed
// over the target, so a reader sees either the old or the new record.
type FileSessionRepo struct {
	path string
	mu   sync.Mutex
}

// New creates a file backed session repo. The parent directory is created on
// first write.
func New(path string) (*FileSessionRepo, error) {
	if path == "" {
		return nil, fmt.Errorf("[filerepo.New] path is required")
	}
	return &FileSessionRepo{path: path}, nil
}

// Path returns the session file location
func (r *FileSessionRepo) Path() string {
	return r.path
}

func (r *FileSessionRepo) Get() (sessions.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readLocked()
}

func (r *FileSessionRepo) Save(session sessions.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writeLocked(session)
}

func (r *FileSessionRepo) UpdateAccessToken(accessToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.readLocked()
	if err != nil {
		return err
	}
	session.AccessToken = accessToken
	return r.writeLocked(session)
}

func (r *FileSessionRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "[FileSessionRepo.Clear] remove %s", r.path)
	}
	return nil
}

func (r *FileSessionRepo) readLocked() (sessions.Session, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return sessions.Session{}, sessions.ErrNotFound
	}
	if err != nil {
		return sessions.Session{}, errors.Wrapf(err, "[FileSessionRepo.Get] read %s", r.path)
	}
	if len(data) == 0 {
		return sessions.Session{}, sessions.ErrNotFound
	}

	var session sessions.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return sessions.Session{}, errors.Wrapf(err, "[FileSessionRepo.Get] decode %s", r.path)
	}
	return session, nil
}

func (r *FileSessionRepo) writeLocked(session sessions.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "[FileSessionRepo.Save] encode")
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrapf(err, "[FileSessionRepo.Save] mkdir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return errors.Wrapf(err, "[FileSessionRepo.Save] create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op after a successful rename
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "[FileSessionRepo.Save] write temp file")
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "[FileSessionRepo.Save] chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "[FileSessionRepo.Save] close temp file")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return errors.Wrapf(err, "[FileSessionRepo.Save] rename")
	}
	return nil
}
