package users

import (
	"context"
	"sync"
)

// MemoryDirectory is an in-memory directory for tests and local development.
type MemoryDirectory struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{records: make(map[string]Record)}
}

func (d *MemoryDirectory) Find(ctx context.Context, username string) (Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[username]
	if !ok {
		return Record{}, ErrUserNotFound
	}
	return rec, nil
}

func (d *MemoryDirectory) Create(ctx context.Context, username, password, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.records[username]; exists {
		return ErrDuplicateUser
	}
	rec, err := newRecord(username, password, email)
	if err != nil {
		return err
	}
	d.records[username] = rec
	return nil
}

func (d *MemoryDirectory) Verify(ctx context.Context, username, password string) bool {
	rec, err := d.Find(ctx, username)
	if err != nil {
		return false
	}
	return checkPassword(rec, password)
}
