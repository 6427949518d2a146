// Package jsonfile implements the user record store as a single JSON
// document on disk, mirrored in memory and rewritten after every mutation.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// usersKey is the top-level key holding user records.
const usersKey = "user"

type record struct {
	ID           string `json:"id"`
	Account      string `json:"account"`
	PasswordHash string `json:"passwordHash"`
	Name         string `json:"name"`
	Mail         string `json:"mail"`
	Head         string `json:"head"`
}

// Store owns the file and its in-memory mirror. All access goes through mu,
// and every mutation is persisted before the lock is released.
type Store struct {
	path string

	mu    sync.Mutex
	users []record
	// other holds top-level keys this package does not manage, written back untouched.
	other map[string]json.RawMessage
}

// Open loads the document at path. A missing file yields an empty store;
// the file is created on the first write.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		other: map[string]json.RawMessage{"products": json.RawMessage("[]")},
	}
	if err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read store: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode store: %w", err)
	}

	if raw, ok := doc[usersKey]; ok {
		if err := json.Unmarshal(raw, &s.users); err != nil {
			return fmt.Errorf("decode users: %w", err)
		}
		delete(doc, usersKey)
	}
	for k, v := range doc {
		s.other[k] = v
	}
	return nil
}

// write must be called with mu held.
func (s *Store) write() error {
	users := s.users
	if users == nil {
		users = []record{}
	}
	rawUsers, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	doc := make(map[string]json.RawMessage, len(s.other)+1)
	for k, v := range s.other {
		doc[k] = v
	}
	doc[usersKey] = rawUsers

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// mutate runs fn against the mirror and persists the result as one critical
// section. If fn or the write fails the mirror is restored.
func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]record, len(s.users))
	copy(snapshot, s.users)

	if err := fn(); err != nil {
		s.users = snapshot
		return err
	}
	if err := s.write(); err != nil {
		s.users = snapshot
		return err
	}
	return nil
}

func (s *Store) indexOf(match func(record) bool) int {
	for i, r := range s.users {
		if match(r) {
			return i
		}
	}
	return -1
}
