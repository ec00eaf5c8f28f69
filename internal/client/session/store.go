// Package session keeps the terminal client's sign-in state in a JSON file.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the single app-wide authentication state.
// SignIn and SignOut are its only mutators.
type Store struct {
	path string

	mu    sync.Mutex
	state state
}

type state struct {
	Token string `json:"token"`
	Phone string `json:"phone"`
}

// Open loads the store at path. A missing file means signed out.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return s, nil
}

// LoggedIn reports whether a session token is held.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token != ""
}

// Token returns the held session token, or "".
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Phone returns the phone number of the signed-in user.
func (s *Store) Phone() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phone
}

// SignIn records a new session and persists it.
func (s *Store) SignIn(token, phone string) error {
	if token == "" {
		return errors.New("empty session token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{Token: token, Phone: phone}
	return s.save()
}

// SignOut forgets the session and removes the file.
func (s *Store) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *Store) save() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
