package parkgate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zg04ckpt/parkgate/policy"
)

type mockAuthAPI struct {
	mu          sync.Mutex
	meCalls     int
	loginCalls  int
	logoutCalls int

	meFn     func(ctx context.Context) (*UserProfile, error)
	loginFn  func(ctx context.Context, email, password string) (*UserProfile, Credential, error)
	logoutFn func(ctx context.Context) error
}

func (m *mockAuthAPI) Me(ctx context.Context) (*UserProfile, error) {
	m.mu.Lock()
	m.meCalls++
	fn := m.meFn
	m.mu.Unlock()
	if fn == nil {
		return nil, ErrUnauthorized
	}
	return fn(ctx)
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (*UserProfile, Credential, error) {
	m.mu.Lock()
	m.loginCalls++
	fn := m.loginFn
	m.mu.Unlock()
	if fn == nil {
		return nil, Credential{}, ErrInvalidCredentials
	}
	return fn(ctx, email, password)
}

func (m *mockAuthAPI) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.logoutCalls++
	fn := m.logoutFn
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (m *mockAuthAPI) MeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meCalls
}

func testUser(role Role) *UserProfile {
	return &UserProfile{
		ID:    "user-1",
		Email: "guard@example.com",
		Role:  role,
	}
}

func testPolicy(t *testing.T) *policy.Policy {
	t.Helper()
	pol, err := policy.Default()
	if err != nil {
		t.Fatalf("Default policy failed: %v", err)
	}
	return pol
}

func newTestClient(t *testing.T, cfg Config, auth AuthAPI) *Client {
	t.Helper()

	client, err := New().
		WithConfig(cfg).
		WithAuthAPI(auth).
		WithPolicy(testPolicy(t)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func tokenConfig() Config {
	cfg := defaultConfig()
	cfg.Credential.Mode = CredentialToken
	return cfg
}

func TestBootstrapIssuesSingleProbe(t *testing.T) {
	const callers = 8

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	auth := &mockAuthAPI{
		meFn: func(ctx context.Context) (*UserProfile, error) {
			once.Do(func() { close(started) })
			select {
			case <-release:
				return testUser("guard"), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	client := newTestClient(t, defaultConfig(), auth)

	var wg sync.WaitGroup
	var authenticated atomic.Int64

	wg.Add(1)
	go func() {
		defer wg.Done()
		s, err := client.Bootstrap(context.Background())
		if err == nil && s.State == StateAuthenticated {
			authenticated.Add(1)
		}
	}()

	<-started
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := client.Bootstrap(context.Background())
			if err == nil && s.State == StateAuthenticated {
				authenticated.Add(1)
			}
		}()
	}

	close(release)
	wg.Wait()

	if got := authenticated.Load(); got != callers {
		t.Fatalf("expected %d authenticated verdicts, got %d", callers, got)
	}
	if got := auth.MeCalls(); got != 1 {
		t.Fatalf("expected exactly one probe, got %d", got)
	}

	// Post-resolution callers hit the memoized verdict.
	s, err := client.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("Bootstrap after resolution failed: %v", err)
	}
	if s.State != StateAuthenticated || s.User == nil {
		t.Fatalf("expected cached authenticated session, got %v", s.State)
	}
	if got := auth.MeCalls(); got != 1 {
		t.Fatalf("expected no further probes, got %d", got)
	}
}

func TestBootstrapFailureResolvesUnauthenticated(t *testing.T) {
	auth := &mockAuthAPI{
		meFn: func(context.Context) (*UserProfile, error) {
			return nil, &NetworkError{Op: "GET /auth/me", Err: errors.New("connection refused")}
		},
	}
	client := newTestClient(t, defaultConfig(), auth)

	s, err := client.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if s.State != StateUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", s.State)
	}
	if s.User != nil {
		t.Fatal("expected no user on a failed probe")
	}

	// The verdict is terminal; no retry on the next call.
	if _, err := client.Bootstrap(context.Background()); err != nil {
		t.Fatalf("second Bootstrap failed: %v", err)
	}
	if got := auth.MeCalls(); got != 1 {
		t.Fatalf("expected one probe total, got %d", got)
	}

	snap := client.MetricsSnapshot()
	if snap.Counters[MetricBootstrapFailure] != 1 {
		t.Fatalf("expected one bootstrap failure, got %d", snap.Counters[MetricBootstrapFailure])
	}
	if snap.Counters[MetricBootstrapDeduped] != 1 {
		t.Fatalf("expected one deduped bootstrap, got %d", snap.Counters[MetricBootstrapDeduped])
	}
}

func TestBootstrapSkipsProbeWhenTokenExpired(t *testing.T) {
	auth := &mockAuthAPI{}
	creds := NewMemoryCredentialStore()
	creds.Attach(Credential{Token: "stale", ExpiresAt: time.Now().Add(-time.Minute)})

	client, err := New().
		WithConfig(tokenConfig()).
		WithAuthAPI(auth).
		WithPolicy(testPolicy(t)).
		WithCredentialStore(creds).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer client.Close()

	s, err := client.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if s.State != StateUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", s.State)
	}
	if got := auth.MeCalls(); got != 0 {
		t.Fatalf("expected no probe for an expired token, got %d", got)
	}
	if _, held := creds.Current(); held {
		t.Fatal("expected the expired credential to be cleared")
	}

	snap := client.MetricsSnapshot()
	if snap.Counters[MetricBootstrapSkippedExpired] != 1 {
		t.Fatal("expected the skipped-expired counter to increment")
	}
}

func TestLoginSuccess(t *testing.T) {
	auth := &mockAuthAPI{
		loginFn: func(_ context.Context, email, password string) (*UserProfile, Credential, error) {
			if email != "guard@example.com" || password != "open-sesame" {
				return nil, Credential{}, ErrInvalidCredentials
			}
			return testUser("guard"), Credential{Token: "tok-1"}, nil
		},
	}
	creds := NewMemoryCredentialStore()

	client, err := New().
		WithConfig(tokenConfig()).
		WithAuthAPI(auth).
		WithPolicy(testPolicy(t)).
		WithCredentialStore(creds).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer client.Close()

	user, err := client.Login(context.Background(), "guard@example.com", "open-sesame")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", user)
	}

	s := client.Current()
	if s.State != StateAuthenticated || s.User == nil {
		t.Fatalf("expected authenticated session, got %v", s.State)
	}
	cred, held := creds.Current()
	if !held || cred.Token != "tok-1" {
		t.Fatalf("expected attached credential, got held=%v cred=%+v", held, cred)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	auth := &mockAuthAPI{}
	client := newTestClient(t, defaultConfig(), auth)

	before := client.Current()

	if _, err := client.Login(context.Background(), "guard@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	after := client.Current()
	if after.State != before.State || after.Generation != before.Generation {
		t.Fatalf("expected unchanged session, before=%+v after=%+v", before, after)
	}
}

func TestLoginRejectsEmptyInput(t *testing.T) {
	auth := &mockAuthAPI{}
	client := newTestClient(t, defaultConfig(), auth)

	if _, err := client.Login(context.Background(), "", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := client.Login(context.Background(), "guard@example.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if auth.loginCalls != 0 {
		t.Fatalf("expected no backend call on empty input, got %d", auth.loginCalls)
	}
}

func TestLoginDuringProbeWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	probeUser := testUser("user")
	loginUser := testUser("admin")

	auth := &mockAuthAPI{
		meFn: func(ctx context.Context) (*UserProfile, error) {
			once.Do(func() { close(started) })
			select {
			case <-release:
				return probeUser, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
		loginFn: func(context.Context, string, string) (*UserProfile, Credential, error) {
			return loginUser, Credential{Token: "tok-2"}, nil
		},
	}
	client := newTestClient(t, tokenConfig(), auth)

	probeDone := make(chan Session, 1)
	go func() {
		s, _ := client.Bootstrap(context.Background())
		probeDone <- s
	}()
	<-started

	if _, err := client.Login(context.Background(), "admin@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	close(release)
	<-probeDone

	s := client.Current()
	if s.State != StateAuthenticated || s.User == nil || s.User.Role != "admin" {
		t.Fatalf("expected the login result to win, got %+v", s)
	}

	snap := client.MetricsSnapshot()
	if snap.Counters[MetricStaleResultDropped] != 1 {
		t.Fatalf("expected the probe result to be dropped as stale, got %d", snap.Counters[MetricStaleResultDropped])
	}
}

func TestLogoutClearsLocallyDespiteServerFailure(t *testing.T) {
	serverErr := &ServerError{Status: 502, Message: "bad gateway"}
	auth := &mockAuthAPI{
		loginFn: func(context.Context, string, string) (*UserProfile, Credential, error) {
			return testUser("guard"), Credential{Token: "tok-3"}, nil
		},
		logoutFn: func(context.Context) error {
			return serverErr
		},
	}
	creds := NewMemoryCredentialStore()

	client, err := New().
		WithConfig(tokenConfig()).
		WithAuthAPI(auth).
		WithPolicy(testPolicy(t)).
		WithCredentialStore(creds).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer client.Close()

	if _, err := client.Login(context.Background(), "guard@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	err = client.Logout(context.Background())
	if !errors.Is(err, serverErr) {
		t.Fatalf("expected the server failure to surface, got %v", err)
	}

	s := client.Current()
	if s.State != StateUnauthenticated || s.User != nil {
		t.Fatalf("expected local clearing regardless of server failure, got %+v", s)
	}
	if _, held := creds.Current(); held {
		t.Fatal("expected the credential to be cleared")
	}
}

func TestForceInvalidateIsIdempotent(t *testing.T) {
	auth := &mockAuthAPI{
		loginFn: func(context.Context, string, string) (*UserProfile, Credential, error) {
			return testUser("guard"), Credential{}, nil
		},
	}
	client := newTestClient(t, defaultConfig(), auth)

	if _, err := client.Login(context.Background(), "guard@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	gen := client.Current().Generation

	client.ForceInvalidate()
	first := client.Current()
	if first.State != StateUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", first.State)
	}
	if first.Generation != gen+1 {
		t.Fatalf("expected generation bump, got %d -> %d", gen, first.Generation)
	}

	client.ForceInvalidate()
	second := client.Current()
	if second.Generation != first.Generation {
		t.Fatalf("expected no-op on repeat invalidation, got generation %d", second.Generation)
	}

	snap := client.MetricsSnapshot()
	if snap.Counters[MetricForcedInvalidation] != 1 {
		t.Fatalf("expected one forced invalidation, got %d", snap.Counters[MetricForcedInvalidation])
	}
}

func TestLoginAfterInvalidationIsRejected(t *testing.T) {
	var client *Client
	creds := NewMemoryCredentialStore()

	auth := &mockAuthAPI{
		loginFn: func(context.Context, string, string) (*UserProfile, Credential, error) {
			// An invalidation lands while the login round-trip is in flight.
			client.ForceInvalidate()
			return testUser("guard"), Credential{Token: "tok-4"}, nil
		},
	}

	var err error
	client, err = New().
		WithConfig(tokenConfig()).
		WithAuthAPI(auth).
		WithPolicy(testPolicy(t)).
		WithCredentialStore(creds).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer client.Close()

	_, err = client.Login(context.Background(), "guard@example.com", "secret")
	if !errors.Is(err, ErrSessionInvalidated) {
		t.Fatalf("expected ErrSessionInvalidated, got %v", err)
	}

	s := client.Current()
	if s.State == StateAuthenticated {
		t.Fatal("stale login result must not resurrect the session")
	}
	if _, held := creds.Current(); held {
		t.Fatal("expected the stale credential to be cleared")
	}
}
