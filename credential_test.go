package parkgate

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeBackend struct {
	mu   sync.Mutex
	cred Credential
	held bool

	saveErr error
	loadErr error
	saves   int
	deletes int
}

func (b *fakeBackend) Save(_ context.Context, cred Credential) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves++
	if b.saveErr != nil {
		return b.saveErr
	}
	b.cred = cred
	b.held = true
	return nil
}

func (b *fakeBackend) Load(context.Context) (Credential, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return Credential{}, false, b.loadErr
	}
	return b.cred, b.held, nil
}

func (b *fakeBackend) Delete(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes++
	b.cred = Credential{}
	b.held = false
	return nil
}

func (b *fakeBackend) Close() error { return nil }

func TestPersistentStorePrimesFromBackend(t *testing.T) {
	backend := &fakeBackend{cred: Credential{Token: "persisted"}, held: true}

	s := NewPersistentCredentialStore(backend)

	cred, held := s.Current()
	if !held || cred.Token != "persisted" {
		t.Fatalf("expected the persisted credential, got held=%v cred=%+v", held, cred)
	}
}

func TestPersistentStoreAttachWritesThrough(t *testing.T) {
	backend := &fakeBackend{}
	s := NewPersistentCredentialStore(backend)

	s.Attach(Credential{Token: "fresh"})

	if cred, held := s.Current(); !held || cred.Token != "fresh" {
		t.Fatalf("expected the attached credential, got held=%v", held)
	}
	if backend.saves != 1 {
		t.Fatalf("expected one backend save, got %d", backend.saves)
	}

	s.Clear()
	if _, held := s.Current(); held {
		t.Fatal("expected no credential after Clear")
	}
	if backend.deletes != 1 {
		t.Fatalf("expected one backend delete, got %d", backend.deletes)
	}
}

func TestPersistentStoreSurvivesBackendFailures(t *testing.T) {
	backend := &fakeBackend{loadErr: errors.New("backend down")}
	s := NewPersistentCredentialStore(backend)

	// A failed initial load behaves like an absent credential.
	if _, held := s.Current(); held {
		t.Fatal("expected no credential after a failed load")
	}

	// Writes keep working in memory even when persistence fails.
	backend.mu.Lock()
	backend.saveErr = errors.New("backend down")
	backend.mu.Unlock()

	s.Attach(Credential{Token: "memory-only"})
	if cred, held := s.Current(); !held || cred.Token != "memory-only" {
		t.Fatal("expected the in-memory credential despite the backend failure")
	}
}

func TestCookieStoreReportsAbsent(t *testing.T) {
	s := NewCookieCredentialStore()

	s.Attach(Credential{Token: "ignored"})
	if _, held := s.Current(); held {
		t.Fatal("cookie store must always report absent")
	}
	s.Clear()
}
