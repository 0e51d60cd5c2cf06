package users

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	applog "khata/internal/log"
)

// JSONDirectory stores the whole directory as a single JSON document,
// keyed by username. Every mutation reads the document into memory and
// rewrites it in full; the write is atomic (temp file + rename) so a
// failed registration never leaves a truncated file behind.
type JSONDirectory struct {
	mu   sync.Mutex
	path string
}

func NewJSONDirectory(path string) (*JSONDirectory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create users directory: %w", err)
	}
	return &JSONDirectory{path: path}, nil
}

func (d *JSONDirectory) Find(ctx context.Context, username string) (Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	all, err := d.load()
	if err != nil {
		return Record{}, err
	}
	rec, ok := all[username]
	if !ok {
		return Record{}, ErrUserNotFound
	}
	rec.Username = username
	return rec, nil
}

func (d *JSONDirectory) Create(ctx context.Context, username, password, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	all, err := d.load()
	if err != nil {
		return err
	}
	if _, exists := all[username]; exists {
		return ErrDuplicateUser
	}

	rec, err := newRecord(username, password, email)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	all[username] = rec

	if err := d.save(all); err != nil {
		return err
	}

	slog.InfoContext(ctx, "User registered",
		applog.FieldUsername, username,
		applog.FieldComponent, applog.ComponentUsers,
		applog.FieldOperation, applog.OpRegister)
	return nil
}

func (d *JSONDirectory) Verify(ctx context.Context, username, password string) bool {
	rec, err := d.Find(ctx, username)
	if err != nil {
		return false
	}
	return checkPassword(rec, password)
}

// load reads the whole document. A missing file is an empty directory.
func (d *JSONDirectory) load() (map[string]Record, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Record{}, nil
		}
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var all map[string]Record
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	if all == nil {
		all = map[string]Record{}
	}
	return all, nil
}

func (d *JSONDirectory) save(all map[string]Record) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}
