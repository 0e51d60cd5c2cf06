// Package users implements the user directory: a mapping from username to
// credential record, behind a small interface with swappable persistence.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateUser is returned when registering an existing username.
	ErrDuplicateUser = errors.New("username already exists")

	// ErrUserNotFound is returned when a username is absent from the directory.
	ErrUserNotFound = errors.New("user not found")
)

// Record is the persisted credential record. It is created at registration
// and never mutated afterwards; there is no update or delete path.
type Record struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// Directory is the user directory contract.
type Directory interface {
	// Find returns the record for username, or ErrUserNotFound.
	Find(ctx context.Context, username string) (Record, error)

	// Create registers a new user. Fails with ErrDuplicateUser if the
	// username is already present; the stored record is left unchanged.
	Create(ctx context.Context, username, password, email string) error

	// Verify checks the password against the stored hash. A missing user
	// and a wrong password are indistinguishable to the caller.
	Verify(ctx context.Context, username, password string) bool
}

// newRecord hashes the password with bcrypt and builds the record.
// The plaintext is never stored.
func newRecord(username, password, email string) (Record, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(email),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func checkPassword(rec Record, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) == nil
}
