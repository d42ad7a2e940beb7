package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"

	parkgate "github.com/zg04ckpt/parkgate"
)

var (
	boltBucket = []byte("credential")
	boltKey    = []byte("current")
)

// Bolt defines a public type used by parkgate APIs.
//
// Bolt instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Bolt struct {
	db *bolt.DB
}

// NewBolt describes the newbolt operation and its observable behavior.
//
// NewBolt may return an error when input validation, dependency calls, or security checks fail.
// NewBolt does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, errors.New("bolt path required")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Bolt) Save(ctx context.Context, cred parkgate.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(boltKey, payload)
	})
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Bolt) Load(ctx context.Context) (parkgate.Credential, bool, error) {
	if err := ctx.Err(); err != nil {
		return parkgate.Credential{}, false, err
	}

	var raw []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get(boltKey); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return parkgate.Credential{}, false, err
	}
	if raw == nil {
		return parkgate.Credential{}, false, nil
	}

	var cred parkgate.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return parkgate.Credential{}, false, err
	}
	if cred.Expired(time.Now()) {
		// Stale tokens are dropped on load so bootstrap starts clean.
		_ = s.Delete(ctx)
		return parkgate.Credential{}, false, nil
	}
	return cred, true, nil
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Bolt) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(boltKey)
	})
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Bolt) Close() error {
	return s.db.Close()
}
