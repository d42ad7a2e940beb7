package parkgate

import (
	"errors"

	"github.com/zg04ckpt/parkgate/policy"
)

// Builder defines a public type used by parkgate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	authAPI     AuthAPI
	accessPol   *policy.Policy
	creds       CredentialStore
	navSink     NavigationSink
	auditSink   AuditSink
	currentPath CurrentPathFunc

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAuthAPI describes the withauthapi operation and its observable behavior.
//
// WithAuthAPI does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuthAPI(a AuthAPI) *Builder {
	b.authAPI = a
	return b
}

// WithPolicy describes the withpolicy operation and its observable behavior.
//
// WithPolicy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPolicy(p *policy.Policy) *Builder {
	b.accessPol = p
	return b
}

// WithCredentialStore describes the withcredentialstore operation and its observable behavior.
//
// WithCredentialStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCredentialStore(s CredentialStore) *Builder {
	b.creds = s
	return b
}

// WithNavigationSink describes the withnavigationsink operation and its observable behavior.
//
// WithNavigationSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithNavigationSink(sink NavigationSink) *Builder {
	b.navSink = sink
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithCurrentPathFunc describes the withcurrentpathfunc operation and its observable behavior.
//
// WithCurrentPathFunc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCurrentPathFunc(f CurrentPathFunc) *Builder {
	b.currentPath = f
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.authAPI == nil {
		return nil, errors.New("auth API required")
	}

	// -------- ACCESS POLICY --------
	if b.accessPol == nil {
		return nil, errors.New("access policy required")
	}
	if !b.accessPol.Frozen() {
		return nil, errors.New("access policy must be frozen before Build")
	}
	if b.accessPol.Count() == 0 {
		return nil, errors.New("access policy has no roles")
	}
	for _, role := range b.accessPol.Roles() {
		if !Role(role).Known() {
			return nil, errors.New("access policy role outside the closed set: " + role)
		}
	}

	// -------- CREDENTIAL STORE --------
	creds := b.creds
	if creds == nil {
		switch cfg.Credential.Mode {
		case CredentialToken:
			creds = NewMemoryCredentialStore()
		default:
			creds = NewCookieCredentialStore()
		}
	}

	client := &Client{
		config:    cfg,
		creds:     creds,
		authAPI:   b.authAPI,
		accessPol: b.accessPol,
		state:     StateUnknown,
	}

	client.metrics = NewMetrics(cfg.Metrics)
	client.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	client.nav = newNavigationDispatcher(cfg.Coordinator, b.navSink)
	client.coordinator = newCoordinator(
		cfg.Coordinator,
		cfg.Routes,
		client.ForceInvalidate,
		client.nav,
		b.currentPath,
		client.metrics,
		client.audit,
	)

	b.built = true

	return client, nil
}
