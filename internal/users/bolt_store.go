package users

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var usersBucket = []byte("users")

// BoltDirectory stores one record per key in an embedded bbolt database.
// Unlike the JSON document it does not rewrite the whole directory on every
// mutation; bbolt gives per-update transactions for free.
type BoltDirectory struct {
	db *bolt.DB
}

func NewBoltDirectory(path string) (*BoltDirectory, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open users database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create users bucket: %w", err)
	}
	return &BoltDirectory{db: db}, nil
}

func (d *BoltDirectory) Close() error {
	return d.db.Close()
}

func (d *BoltDirectory) Find(ctx context.Context, username string) (Record, error) {
	var rec Record
	err := d.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(usersBucket).Get([]byte(username))
		if data == nil {
			return ErrUserNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return Record{}, err
	}
	rec.Username = username
	return rec, nil
}

func (d *BoltDirectory) Create(ctx context.Context, username, password, email string) error {
	rec, err := newRecord(username, password, email)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(usersBucket)
		if b.Get([]byte(username)) != nil {
			return ErrDuplicateUser
		}
		return b.Put([]byte(username), data)
	})
}

func (d *BoltDirectory) Verify(ctx context.Context, username, password string) bool {
	rec, err := d.Find(ctx, username)
	if err != nil {
		return false
	}
	return checkPassword(rec, password)
}
