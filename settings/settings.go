// Package settings supplies runtime settings from a flat YAML file
// overlaid by the process environment.
package settings

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store resolves setting names. Environment variables win over file
// values; file values may reference the environment as ${VAR}.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	getenv func(string) string
}

// New returns a store seeded with values.
func New(values map[string]string) *Store {
	s := &Store{values: make(map[string]string, len(values)), getenv: os.Getenv}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Load reads a YAML mapping of setting names to scalar values. An empty
// path yields an environment-only store.
func Load(path string) (*Store, error) {
	if path == "" {
		return New(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	s := New(nil)
	for k, v := range values {
		s.values[k] = os.Expand(v, s.getenv)
	}
	return s, nil
}

// Setting returns the environment value for name when set, else the file
// value, else "".
func (s *Store) Setting(name string) string {
	if v := s.getenv(name); v != "" {
		return v
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Set overrides a file value.
func (s *Store) Set(name, value string) {
	s.mu.Lock()
	s.values[name] = value
	s.mu.Unlock()
}
