package client

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/myaicommunity/agenthub/models"
)

// TokenStore abstracts where the session token is persisted, so the
// backing mechanism stays swappable and nothing holds the token globally.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryTokenStore keeps the token in process memory only.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileTokenStore persists the token to a file with owner-only permissions.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Save(token string) error {
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SessionState is the lifecycle of a client session.
type SessionState int

const (
	StateAnonymous SessionState = iota
	StateVerifying
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Session holds the current user and drives the login/verify/logout flow.
// Token contents are never logged.
type Session struct {
	client *Client

	mu    sync.Mutex
	state SessionState
	user  *models.User
}

func NewSession(client *Client) *Session {
	return &Session{client: client}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Restore verifies a previously persisted token. A failed verification
// discards the token and returns the session to anonymous.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.client.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		s.setState(StateAnonymous, nil)
		return nil
	}

	s.setState(StateVerifying, nil)

	var verified struct {
		User *models.User `json:"user"`
	}
	if _, err := s.client.postJSON(ctx, "/api/auth/verify-token", map[string]string{"token": token}, &verified); err != nil {
		s.client.tokens.Clear()
		s.setState(StateAnonymous, nil)
		return err
	}

	s.setState(StateAuthenticated, verified.User)
	return nil
}

// Login exchanges credentials for a token, persists it and loads the user.
func (s *Session) Login(ctx context.Context, email, password string) error {
	var resp struct {
		User  *models.User `json:"user"`
		Token string       `json:"token"`
	}
	if _, err := s.client.postJSON(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp); err != nil {
		return err
	}

	if err := s.client.tokens.Save(resp.Token); err != nil {
		return err
	}
	s.setState(StateAuthenticated, resp.User)
	return nil
}

// Logout attempts a best-effort server-side invalidation, then always
// clears the local token and user regardless of the network outcome.
func (s *Session) Logout(ctx context.Context) {
	if token, _ := s.client.tokens.Load(); token != "" {
		// Server-side invalidation is advisory; local teardown proceeds.
		_, _ = s.client.do(ctx, http.MethodPost, "/api/auth/logout", "", nil)
	}

	s.client.tokens.Clear()
	s.setState(StateAnonymous, nil)
}

func (s *Session) setState(state SessionState, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = user
}
