package parkgate

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by parkgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Routes      RoutesConfig
	Session     SessionConfig
	Coordinator CoordinatorConfig
	Credential  CredentialConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig names the screens the coordination layer redirects to and the
// public-only screens an authenticated user is bounced away from.
type RoutesConfig struct {
	Login        string
	AccessDenied string
	Public       []string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by parkgate APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// ProbeTimeout bounds the startup "who am I" call.
	ProbeTimeout time.Duration
	// LogoutTimeout bounds the best-effort server logout round-trip.
	LogoutTimeout time.Duration
	// SkipProbeWhenExpired resolves bootstrap to unauthenticated without a
	// network call when a token-mode credential is already expired per its
	// own claims.
	SkipProbeWhenExpired bool
}

/*
====================================
COORDINATOR CONFIG
====================================
*/

// CoordinatorConfig defines a public type used by parkgate APIs.
//
// CoordinatorConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CoordinatorConfig struct {
	// CoalescingWindow absorbs repeat authorization failures of the same
	// kind. Failures inside the window never re-trigger navigation.
	CoalescingWindow time.Duration
	// NavigationBuffer sizes the intent dispatcher channel.
	NavigationBuffer int
	// DropIfFull makes intent emission non-blocking under backpressure.
	DropIfFull bool
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialMode defines a public type used by parkgate APIs.
//
// CredentialMode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CredentialMode uint8

const (
	// CredentialCookie is an exported constant or variable used by the coordination layer.
	CredentialCookie CredentialMode = iota
	// CredentialToken is an exported constant or variable used by the coordination layer.
	CredentialToken
)

// CredentialConfig defines a public type used by parkgate APIs.
//
// CredentialConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CredentialConfig struct {
	Mode CredentialMode
	// Header carries the bearer token in token mode. Default "Authorization".
	Header string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by parkgate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by parkgate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULTS
====================================
*/

func defaultConfig() Config {
	return Config{
		Routes: RoutesConfig{
			Login:        "/login",
			AccessDenied: "/access-denied",
			Public:       []string{"/login", "/register"},
		},
		Session: SessionConfig{
			ProbeTimeout:         10 * time.Second,
			LogoutTimeout:        5 * time.Second,
			SkipProbeWhenExpired: true,
		},
		Coordinator: CoordinatorConfig{
			CoalescingWindow: 100 * time.Millisecond,
			NavigationBuffer: 16,
			DropIfFull:       true,
		},
		Credential: CredentialConfig{
			Mode:   CredentialCookie,
			Header: "Authorization",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Routes.Public = append([]string(nil), cfg.Routes.Public...)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if !isRoutePath(c.Routes.Login) {
		return errors.New("Routes.Login must be an absolute path")
	}
	if !isRoutePath(c.Routes.AccessDenied) {
		return errors.New("Routes.AccessDenied must be an absolute path")
	}
	if c.Routes.Login == c.Routes.AccessDenied {
		return errors.New("Routes.Login and Routes.AccessDenied must differ")
	}
	for _, p := range c.Routes.Public {
		if !isRoutePath(p) {
			return errors.New("Routes.Public entries must be absolute paths")
		}
	}

	if c.Session.ProbeTimeout <= 0 {
		return errors.New("Session.ProbeTimeout must be positive")
	}
	if c.Session.LogoutTimeout <= 0 {
		return errors.New("Session.LogoutTimeout must be positive")
	}

	if c.Coordinator.CoalescingWindow <= 0 {
		return errors.New("Coordinator.CoalescingWindow must be positive")
	}
	if c.Coordinator.CoalescingWindow > 10*time.Second {
		return errors.New("Coordinator.CoalescingWindow above 10s defeats failure isolation")
	}
	if c.Coordinator.NavigationBuffer <= 0 {
		return errors.New("Coordinator.NavigationBuffer must be positive")
	}

	switch c.Credential.Mode {
	case CredentialCookie, CredentialToken:
	default:
		return errors.New("Credential.Mode invalid")
	}
	if c.Credential.Mode == CredentialToken && c.Credential.Header == "" {
		return errors.New("Credential.Header required in token mode")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}

	return nil
}

func isRoutePath(p string) bool {
	return p != "" && strings.HasPrefix(p, "/")
}
