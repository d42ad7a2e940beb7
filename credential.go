package parkgate

import (
	"context"
	"log"
	"sync"
	"time"
)

// CredentialStore hides how proof-of-session is carried between the client
// and the API boundary. Implementations cannot fail, only no-op: Attach and
// Clear are side effects, Clear is idempotent, and cookie-mode stores may
// always report no credential since the transport's jar owns carriage.
type CredentialStore interface {
	Attach(cred Credential)
	Clear()
	Current() (Credential, bool)
}

/*
====================================
MEMORY STORE (token mode)
====================================
*/

// MemoryCredentialStore defines a public type used by parkgate APIs.
//
// MemoryCredentialStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MemoryCredentialStore struct {
	mu   sync.RWMutex
	cred Credential
	held bool
}

// NewMemoryCredentialStore describes the newmemorycredentialstore operation and its observable behavior.
//
// NewMemoryCredentialStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Attach describes the attach operation and its observable behavior.
//
// Attach does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryCredentialStore) Attach(cred Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	s.held = true
}

// Clear describes the clear operation and its observable behavior.
//
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryCredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
	s.held = false
}

// Current describes the current operation and its observable behavior.
//
// Current does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryCredentialStore) Current() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.held
}

/*
====================================
COOKIE STORE (cookie mode)
====================================
*/

// CookieCredentialStore is the cookie-mode no-op store. The HTTP cookie jar
// carries the session implicitly, so Attach and Clear have nothing to record
// and Current always reports absent.
type CookieCredentialStore struct{}

// NewCookieCredentialStore describes the newcookiecredentialstore operation and its observable behavior.
//
// NewCookieCredentialStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCookieCredentialStore() CookieCredentialStore {
	return CookieCredentialStore{}
}

// Attach describes the attach operation and its observable behavior.
//
// Attach does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (CookieCredentialStore) Attach(Credential) {}

// Clear describes the clear operation and its observable behavior.
//
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (CookieCredentialStore) Clear() {}

// Current describes the current operation and its observable behavior.
//
// Current does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (CookieCredentialStore) Current() (Credential, bool) {
	return Credential{}, false
}

/*
====================================
PERSISTENT STORE (token mode, survives restarts)
====================================
*/

// CredentialBackend is implemented by the store subpackage (Redis, bbolt).
// PersistentCredentialStore wraps one behind the no-fail CredentialStore
// contract: persistence failures are logged best-effort and never surface.
type CredentialBackend interface {
	Save(ctx context.Context, cred Credential) error
	Load(ctx context.Context) (Credential, bool, error)
	Delete(ctx context.Context) error
	Close() error
}

// PersistentCredentialStore defines a public type used by parkgate APIs.
//
// PersistentCredentialStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PersistentCredentialStore struct {
	backend CredentialBackend
	timeout time.Duration

	mu   sync.RWMutex
	cred Credential
	held bool
}

// NewPersistentCredentialStore wraps backend and primes the in-memory cache
// from it. A failed initial load leaves the store empty; bootstrap then
// resolves unauthenticated the same way an absent credential would.
func NewPersistentCredentialStore(backend CredentialBackend) *PersistentCredentialStore {
	s := &PersistentCredentialStore{
		backend: backend,
		timeout: 3 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	cred, ok, err := backend.Load(ctx)
	if err != nil {
		log.Print("parkgate: credential backend load failed")
		return s
	}
	if ok {
		s.cred = cred
		s.held = true
	}
	return s
}

// Attach describes the attach operation and its observable behavior.
//
// Attach does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *PersistentCredentialStore) Attach(cred Credential) {
	s.mu.Lock()
	s.cred = cred
	s.held = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.backend.Save(ctx, cred); err != nil {
		log.Print("parkgate: credential backend save failed")
	}
}

// Clear describes the clear operation and its observable behavior.
//
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *PersistentCredentialStore) Clear() {
	s.mu.Lock()
	s.cred = Credential{}
	s.held = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.backend.Delete(ctx); err != nil {
		log.Print("parkgate: credential backend delete failed")
	}
}

// Current describes the current operation and its observable behavior.
//
// Current does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *PersistentCredentialStore) Current() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.held
}
