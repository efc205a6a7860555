package holiday

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists the custom-holiday set as a single JSON object mapping
// id to rule. It is the Go rendition of the browser's local device storage:
// read once at startup, rewritten on every add or delete.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted custom holidays. A missing file is an empty set.
// Malformed content is reported as an error; the caller logs it and
// continues with an empty set rather than failing startup.
func (s *Store) Load() (map[string]Rule, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Rule{}, nil
		}
		return nil, fmt.Errorf("read custom holidays: %w", err)
	}

	custom := map[string]Rule{}
	if err := json.Unmarshal(data, &custom); err != nil {
		return nil, fmt.Errorf("parse custom holidays: %w", err)
	}
	return custom, nil
}

// Save writes the full custom-holiday mapping atomically: temp file in the
// same directory, then rename over the target.
func (s *Store) Save(custom map[string]Rule) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create custom holiday directory: %w", err)
	}

	data, err := json.MarshalIndent(custom, "", "  ")
	if err != nil {
		return fmt.Errorf("encode custom holidays: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".holidays-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write custom holidays: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace custom holidays file: %w", err)
	}
	return nil
}
