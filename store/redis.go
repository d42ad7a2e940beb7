package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	parkgate "github.com/zg04ckpt/parkgate"
)

// ErrRedisUnavailable is an exported constant or variable used by the coordination layer.
var ErrRedisUnavailable = errors.New("redis unavailable")

const defaultCredentialTTL = 30 * 24 * time.Hour

// Redis defines a public type used by parkgate APIs.
//
// Redis instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis describes the newredis operation and its observable behavior.
//
// NewRedis may return an error when input validation, dependency calls, or security checks fail.
// NewRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedis(client *redis.Client, prefix, clientID string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if prefix == "" {
		prefix = "pg"
	}
	if clientID == "" {
		return nil, errors.New("client id required")
	}

	return &Redis{
		client: client,
		key:    prefix + ":cred:" + clientID,
	}, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Redis) Save(ctx context.Context, cred parkgate.Credential) error {
	payload, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	ttl := defaultCredentialTTL
	if !cred.ExpiresAt.IsZero() {
		ttl = time.Until(cred.ExpiresAt)
		if ttl <= 0 {
			// Already expired; storing it would only resurrect a dead token.
			return s.Delete(ctx)
		}
	}

	if err := s.client.Set(ctx, s.key, payload, ttl).Err(); err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Redis) Load(ctx context.Context) (parkgate.Credential, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return parkgate.Credential{}, false, nil
	}
	if err != nil {
		return parkgate.Credential{}, false, errors.Join(ErrRedisUnavailable, err)
	}

	var cred parkgate.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return parkgate.Credential{}, false, err
	}
	return cred, true, nil
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Redis) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Redis) Close() error {
	// The redis client is owned by the caller.
	return nil
}
