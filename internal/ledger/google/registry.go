package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// registry maps usernames to spreadsheet IDs. Spreadsheets created through
// the API are only reachable by ID, so the mapping has to live somewhere
// durable on our side.
type registry struct {
	mu   sync.Mutex
	path string
}

func newRegistry(path string) *registry {
	return &registry{path: path}
}

func (r *registry) load() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	ids := map[string]string{}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", r.path, err)
	}
	return ids, nil
}

func (r *registry) save(ids map[string]string) error {
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}

// Lookup returns the spreadsheet ID for user, or "" when none is recorded.
func (r *registry) Lookup(user string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids, err := r.load()
	if err != nil {
		return "", err
	}
	return ids[user], nil
}

// Record stores the spreadsheet ID for user. An existing mapping wins so
// two racing creators do not orphan each other's spreadsheet.
func (r *registry) Record(user, spreadsheetID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids, err := r.load()
	if err != nil {
		return "", err
	}
	if existing, ok := ids[user]; ok && existing != "" {
		return existing, nil
	}
	ids[user] = spreadsheetID
	if err := r.save(ids); err != nil {
		return "", err
	}
	return spreadsheetID, nil
}
