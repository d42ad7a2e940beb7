package parkgate

import (
	"context"
	"net/http"
	"sync"

	"github.com/zg04ckpt/parkgate/policy"
)

// Client defines a public type used by parkgate APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config      Config
	creds       CredentialStore
	authAPI     AuthAPI
	accessPol   *policy.Policy
	coordinator *Coordinator
	nav         *navigationDispatcher
	audit       *auditDispatcher
	metrics     *Metrics

	mu         sync.Mutex
	state      SessionState
	user       *UserProfile
	generation uint64
	probe      chan struct{}
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.nav != nil {
		c.nav.Close()
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// Policy describes the policy operation and its observable behavior.
//
// Policy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Policy() *policy.Policy {
	if c == nil {
		return nil
	}
	return c.accessPol
}

// Credentials describes the credentials operation and its observable behavior.
//
// Credentials does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Credentials() CredentialStore {
	if c == nil {
		return nil
	}
	return c.creds
}

// Coordinator describes the coordinator operation and its observable behavior.
//
// Coordinator does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Coordinator() *Coordinator {
	if c == nil {
		return nil
	}
	return c.coordinator
}

// Transport wraps http.DefaultTransport with the coordinator so every
// resource call the host issues is observed for authorization failures.
func (c *Client) Transport() http.RoundTripper {
	return c.WrapTransport(nil)
}

// WrapTransport describes the wraptransport operation and its observable behavior.
//
// WrapTransport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) WrapTransport(base http.RoundTripper) http.RoundTripper {
	if c == nil || c.coordinator == nil {
		return base
	}
	return c.coordinator.Wrap(base)
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// NavigationsDropped describes the navigationsdropped operation and its observable behavior.
//
// NavigationsDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) NavigationsDropped() uint64 {
	if c == nil || c.nav == nil {
		return 0
	}
	return c.nav.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// RecordGuardDecision satisfies the guard package's optional decision
// recorder. Redirects are audited; renders and loading states only count.
func (c *Client) RecordGuardDecision(decision, path, target string) {
	if c == nil {
		return
	}

	switch decision {
	case "render":
		c.metricInc(MetricGuardRender)
	case "loading":
		c.metricInc(MetricGuardLoading)
	case "redirect":
		c.metricInc(MetricGuardRedirect)
		c.emitAudit(context.Background(), auditEventGuardRedirect, true, c.currentUser(), nil, func() map[string]string {
			return map[string]string{
				"path":   path,
				"target": target,
			}
		})
	}
}

func (c *Client) currentUser() *UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated || c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}
