// Package kvmap provides a small persisted key→value map backed by a single
// JSON document. All access is serialized through one mutex so concurrent
// read-modify-write cycles cannot lose entries, and saves go through a
// temp-file rename so a crash never leaves a half-written document behind.
package kvmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store maps string keys to values of type V. An absent key yields the zero
// value of V, never an error.
type Store[V any] struct {
	path string

	mu   sync.Mutex
	data map[string]V
}

// Open loads the document at path, or starts empty when it does not exist yet.
func Open[V any](path string) (*Store[V], error) {
	s := &Store[V]{
		path: path,
		data: make(map[string]V),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return s, nil
}

// Get returns the value stored under key and whether it was present.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	return val, ok
}

// Put stores val under key and persists the document.
func (s *Store[V]) Put(key string, val V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = val
	return s.save()
}

// Update applies fn to the current value under key (zero value when absent),
// stores the result, persists, and returns it. The whole cycle runs under the
// store mutex, so two concurrent Updates of the same key never lose a write.
func (s *Store[V]) Update(key string, fn func(V) V) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.data[key])
	s.data[key] = next
	if err := s.save(); err != nil {
		return next, err
	}
	return next, nil
}

// Delete removes key and persists. Deleting an absent key is a no-op.
func (s *Store[V]) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.save()
}

// DeleteFunc removes every key for which match returns true and persists once.
func (s *Store[V]) DeleteFunc(match func(key string) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	for key := range s.data {
		if match(key) {
			delete(s.data, key)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	return s.save()
}

// Rename moves the value stored under oldKey to newKey. A missing oldKey is a
// no-op.
func (s *Store[V]) Rename(oldKey, newKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[oldKey]
	if !ok {
		return nil
	}
	delete(s.data, oldKey)
	s.data[newKey] = val
	return s.save()
}

// Len reports the number of stored keys.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// save writes the document atomically. Caller must hold s.mu.
func (s *Store[V]) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
