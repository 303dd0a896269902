// Package session persists the portal's session credentials.
package session

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Credentials are written at login and destroyed at logout or on a 401.
type Credentials struct {
	Role     string `yaml:"role"`
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
}

// Authenticated reports whether both a token and a role are present.
func (c Credentials) Authenticated() bool {
	return c.Token != "" && c.Role != ""
}

type Store interface {
	Load() (Credentials, error)
	Save(creds Credentials) error
	Clear() error
	// Token returns the current bearer token, or "" when logged out.
	Token() string
}

// FileStore keeps the credentials in a YAML file.
// Every read goes to disk so a login from another process is seen immediately.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var creds Credentials
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return creds, nil
		}
		return creds, errors.Wrapf(err, "reading %s", s.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return creds, nil
	}
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&creds); err != nil {
		return Credentials{}, errors.Wrapf(err, "parsing %s", s.path)
	}
	return creds, nil
}

func (s *FileStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session dir")
	}
	data, err := yaml.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "marshaling credentials")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrapf(err, "writing %s", s.path)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "removing %s", s.path)
	}
	return nil
}

func (s *FileStore) Token() string {
	creds, err := s.Load()
	if err != nil {
		return ""
	}
	return creds.Token
}

// MemoryStore is a Store that lives for the process only.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(creds ...Credentials) *MemoryStore {
	s := new(MemoryStore)
	if len(creds) > 0 {
		s.creds = creds[0]
	}
	return s
}

func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Token
}
