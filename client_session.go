package parkgate

import (
	"context"
	"time"
)

// Current describes the current operation and its observable behavior.
//
// Current does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Current() Session {
	if c == nil {
		return Session{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionLocked()
}

// sessionLocked copies the session value out so no consumer ever observes a
// half-updated one. Callers hold c.mu.
func (c *Client) sessionLocked() Session {
	s := Session{State: c.state, Generation: c.generation}
	if c.state == StateAuthenticated && c.user != nil {
		u := *c.user
		s.User = &u
	}
	return s
}

// Bootstrap resolves the initial session verdict. The first caller moves the
// session from Unknown to Checking and issues exactly one "who am I" probe;
// concurrent callers share that in-flight probe, and callers after resolution
// get the cached terminal session. Any probe failure, network included,
// resolves Unauthenticated.
func (c *Client) Bootstrap(ctx context.Context) (Session, error) {
	if c == nil || c.authAPI == nil {
		return Session{}, ErrClientNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	switch c.state {
	case StateAuthenticated, StateUnauthenticated:
		s := c.sessionLocked()
		c.mu.Unlock()
		c.metricInc(MetricBootstrapDeduped)
		return s, nil

	case StateChecking:
		ch := c.probe
		c.mu.Unlock()
		c.metricInc(MetricBootstrapDeduped)
		if ch == nil {
			return c.Current(), nil
		}
		select {
		case <-ch:
			return c.Current(), nil
		case <-ctx.Done():
			return c.Current(), ctx.Err()
		}
	}

	// StateUnknown: this caller owns the probe.
	if c.shouldSkipProbeLocked() {
		c.state = StateUnauthenticated
		c.user = nil
		c.generation++
		s := c.sessionLocked()
		c.mu.Unlock()

		c.creds.Clear()
		c.metricInc(MetricBootstrapSkippedExpired)
		c.metricInc(MetricBootstrapFailure)
		c.emitAudit(ctx, auditEventBootstrapSkipped, false, nil, nil, func() map[string]string {
			return map[string]string{"reason": "credential_expired"}
		})
		return s, nil
	}

	c.state = StateChecking
	ch := make(chan struct{})
	c.probe = ch
	gen := c.generation
	c.mu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, c.config.Session.ProbeTimeout)
	defer cancel()

	start := time.Now()
	user, err := c.authAPI.Me(probeCtx)
	if c.metrics != nil {
		c.metrics.Observe(MetricProbeLatency, time.Since(start))
	}
	if err == nil && user == nil {
		err = ErrUnauthorized
	}

	stale := false
	c.mu.Lock()
	if c.state == StateChecking && c.generation == gen {
		if err != nil {
			c.state = StateUnauthenticated
			c.user = nil
			c.generation++
		} else {
			c.state = StateAuthenticated
			c.user = user
		}
	} else {
		stale = err == nil
	}
	if c.probe == ch {
		close(ch)
		c.probe = nil
	}
	s := c.sessionLocked()
	c.mu.Unlock()

	if stale {
		c.metricInc(MetricStaleResultDropped)
		c.emitAudit(ctx, auditEventStaleDropped, false, user, nil, func() map[string]string {
			return map[string]string{"origin": "bootstrap"}
		})
		return s, nil
	}

	if err != nil {
		c.metricInc(MetricBootstrapFailure)
	} else {
		c.metricInc(MetricBootstrapSuccess)
	}
	c.emitAudit(ctx, auditEventBootstrapResolved, err == nil, s.User, err, nil)

	return s, nil
}

// Login authenticates against the facility API. On success the credential is
// attached (token mode), the profile replaced wholesale, and the session
// becomes Authenticated. On failure the session is left exactly as it was and
// the failure is surfaced to the caller, not swallowed.
func (c *Client) Login(ctx context.Context, email, password string) (*UserProfile, error) {
	if c == nil || c.authAPI == nil {
		return nil, ErrClientNotReady
	}
	if email == "" || password == "" {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, nil, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "empty_input"}
		})
		return nil, ErrInvalidCredentials
	}

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	user, cred, err := c.authAPI.Login(ctx, email, password)
	if err != nil {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, nil, err, func() map[string]string {
			return map[string]string{"identifier": email}
		})
		return nil, err
	}
	if user == nil {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, nil, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"identifier": email, "reason": "empty_profile"}
		})
		return nil, ErrInvalidCredentials
	}

	if c.config.Credential.Mode == CredentialToken {
		c.creds.Attach(cred)
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.creds.Clear()
		c.metricInc(MetricStaleResultDropped)
		c.emitAudit(ctx, auditEventStaleDropped, false, user, ErrSessionInvalidated, func() map[string]string {
			return map[string]string{"origin": "login"}
		})
		return nil, ErrSessionInvalidated
	}
	c.state = StateAuthenticated
	c.user = user
	if c.probe != nil {
		// A login that lands while the startup probe is still in flight wins;
		// the probe's own result is rejected by the state check on arrival.
		close(c.probe)
		c.probe = nil
	}
	c.mu.Unlock()

	c.metricInc(MetricLoginSuccess)
	c.emitAudit(ctx, auditEventLoginSuccess, true, user, nil, func() map[string]string {
		return map[string]string{"identifier": email}
	})

	out := *user
	return &out, nil
}

// Logout clears the session. The server round-trip is best-effort: its
// failure is reported to the caller but never blocks local clearing.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil {
		return ErrClientNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var serverErr error
	if c.authAPI != nil {
		logoutCtx, cancel := context.WithTimeout(ctx, c.config.Session.LogoutTimeout)
		serverErr = c.authAPI.Logout(logoutCtx)
		cancel()
	}

	user := c.currentUser()
	c.creds.Clear()

	c.mu.Lock()
	c.state = StateUnauthenticated
	c.user = nil
	c.generation++
	c.mu.Unlock()

	c.metricInc(MetricLogout)
	if serverErr != nil {
		c.metricInc(MetricLogoutServerFailure)
	}
	c.emitAudit(ctx, auditEventLogout, serverErr == nil, user, serverErr, nil)

	return serverErr
}

// ForceInvalidate is the coordinator's entry point on a detected Unauthorized
// failure: same terminal effect as Logout minus the server round-trip.
// Idempotent; calling it on an already unauthenticated session is a no-op.
func (c *Client) ForceInvalidate() {
	if c == nil {
		return
	}

	c.mu.Lock()
	if c.state == StateUnauthenticated {
		c.mu.Unlock()
		return
	}
	user := c.user
	c.state = StateUnauthenticated
	c.user = nil
	c.generation++
	c.mu.Unlock()

	c.creds.Clear()
	c.metricInc(MetricForcedInvalidation)
	c.emitAudit(context.Background(), auditEventForcedInvalidate, true, user, nil, nil)
}

// shouldSkipProbeLocked reports whether a token-mode credential is already
// expired per its own claims, making the probe pointless. Callers hold c.mu.
func (c *Client) shouldSkipProbeLocked() bool {
	if !c.config.Session.SkipProbeWhenExpired {
		return false
	}
	if c.config.Credential.Mode != CredentialToken {
		return false
	}

	cred, ok := c.creds.Current()
	return ok && cred.Expired(time.Now())
}
