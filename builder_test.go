package parkgate

import (
	"testing"

	"github.com/zg04ckpt/parkgate/policy"
)

func TestBuildRequiresAuthAPI(t *testing.T) {
	_, err := New().
		WithConfig(DefaultConfig()).
		WithPolicy(testPolicy(t)).
		Build()
	if err == nil {
		t.Fatal("expected rejection without an auth API")
	}
}

func TestBuildRequiresFrozenPolicy(t *testing.T) {
	pol := policy.New()
	if err := pol.RegisterRole("guard", []string{"/gate"}, "/gate"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	// Deliberately not frozen.

	_, err := New().
		WithConfig(DefaultConfig()).
		WithAuthAPI(&mockAuthAPI{}).
		WithPolicy(pol).
		Build()
	if err == nil {
		t.Fatal("expected rejection of an unfrozen policy")
	}
}

func TestBuildRejectsRoleOutsideClosedSet(t *testing.T) {
	pol := policy.New()
	if err := pol.RegisterRole("superuser", []string{"/"}, "/"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	pol.Freeze()

	_, err := New().
		WithConfig(DefaultConfig()).
		WithAuthAPI(&mockAuthAPI{}).
		WithPolicy(pol).
		Build()
	if err == nil {
		t.Fatal("expected rejection of a role outside the closed set")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Routes.Login = "login"

	_, err := New().
		WithConfig(cfg).
		WithAuthAPI(&mockAuthAPI{}).
		WithPolicy(testPolicy(t)).
		Build()
	if err == nil {
		t.Fatal("expected config validation to fail the build")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New().
		WithConfig(DefaultConfig()).
		WithAuthAPI(&mockAuthAPI{}).
		WithPolicy(testPolicy(t))

	client, err := b.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	defer client.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected the second Build to fail")
	}
}

func TestDefaultCredentialStorePerMode(t *testing.T) {
	tokenClient, err := New().
		WithConfig(tokenConfig()).
		WithAuthAPI(&mockAuthAPI{}).
		WithPolicy(testPolicy(t)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer tokenClient.Close()

	if _, ok := tokenClient.Credentials().(*MemoryCredentialStore); !ok {
		t.Fatalf("expected a memory store in token mode, got %T", tokenClient.Credentials())
	}

	cookieClient, err := New().
		WithConfig(DefaultConfig()).
		WithAuthAPI(&mockAuthAPI{}).
		WithPolicy(testPolicy(t)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer cookieClient.Close()

	if _, ok := cookieClient.Credentials().(CookieCredentialStore); !ok {
		t.Fatalf("expected a cookie store in cookie mode, got %T", cookieClient.Credentials())
	}
}
