package actions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the flat gesture→action mapping between sessions.
type Store interface {
	// Load reads all persisted pairs. A missing file yields an empty map.
	Load() (map[string]string, error)

	// Save overwrites the persisted pairs wholesale.
	Save(kv map[string]string) error
}

// JSONStore implements Store using one JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store at the given path, creating parent
// directories as needed.
func NewJSONStore(path string) (*JSONStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("actions: create store directory: %w", err)
		}
	}
	return &JSONStore{path: path}, nil
}

// Load reads the mapping file. A missing file is not an error.
func (s *JSONStore) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("actions: read store: %w", err)
	}

	var kv map[string]string
	if err := json.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("actions: parse store: %w", err)
	}
	return kv, nil
}

// Save writes the mapping wholesale (temp file + rename, atomic).
func (s *JSONStore) Save(kv map[string]string) error {
	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return fmt.Errorf("actions: marshal store: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("actions: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("actions: rename temp file: %w", err)
	}
	return nil
}

// Verify JSONStore implements Store at compile time.
var _ Store = (*JSONStore)(nil)
