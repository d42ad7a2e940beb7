package parkgate

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CurrentPathFunc reports the screen the user is currently on. The host UI
// supplies it so the Coordinator can skip navigation when the user already
// sits on the redirect target.
type CurrentPathFunc func() string

// FailureEpisode is the coordinator-internal record of a just-fired
// authorization failure. At most one open episode exists per kind; repeats of
// the same kind inside the coalescing window are absorbed into it.
type FailureEpisode struct {
	ID      string
	Kind    EpisodeKind
	FiredAt time.Time
}

// Coordinator observes every response of every outbound facility API call and
// reacts to authorization failures: Unauthorized forces session invalidation
// and at most one navigation to the login screen per episode; Forbidden
// requests at most one navigation to the access-denied screen and never
// touches the session. Every other outcome passes through untouched, and the
// originating caller always still receives its own error.
type Coordinator struct {
	cfg         CoordinatorConfig
	routes      RoutesConfig
	invalidate  func()
	dispatcher  *navigationDispatcher
	currentPath CurrentPathFunc
	metrics     *Metrics
	audit       *auditDispatcher
	now         func() time.Time

	mu       sync.Mutex
	episodes map[EpisodeKind]FailureEpisode
}

func newCoordinator(
	cfg CoordinatorConfig,
	routes RoutesConfig,
	invalidate func(),
	dispatcher *navigationDispatcher,
	currentPath CurrentPathFunc,
	metrics *Metrics,
	audit *auditDispatcher,
) *Coordinator {
	return &Coordinator{
		cfg:         cfg,
		routes:      routes,
		invalidate:  invalidate,
		dispatcher:  dispatcher,
		currentPath: currentPath,
		metrics:     metrics,
		audit:       audit,
		now:         time.Now,
		episodes:    make(map[EpisodeKind]FailureEpisode),
	}
}

// Wrap returns a RoundTripper that forwards to base and feeds every response
// through the coordinator. A nil base means http.DefaultTransport.
func (c *Coordinator) Wrap(base http.RoundTripper) http.RoundTripper {
	return &coordinatedTransport{coord: c, base: base}
}

type coordinatedTransport struct {
	coord *Coordinator
	base  http.RoundTripper
}

// RoundTrip describes the roundtrip operation and its observable behavior.
//
// RoundTrip may return an error when input validation, dependency calls, or security checks fail.
// RoundTrip does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *coordinatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil || resp == nil {
		// Transport failures are not authorization verdicts. A transient
		// blip must not invalidate an authenticated session.
		return resp, err
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		t.coord.ObserveUnauthorized(req.Context())
	case http.StatusForbidden:
		t.coord.ObserveForbidden(req.Context())
	}

	return resp, err
}

// ObserveUnauthorized describes the observeunauthorized operation and its observable behavior.
//
// ObserveUnauthorized does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Coordinator) ObserveUnauthorized(ctx context.Context) {
	if c == nil {
		return
	}
	c.metricInc(MetricUnauthorizedObserved)

	// Invalidation is idempotent and happens on every Unauthorized signal;
	// only the navigation side effect is coalesced.
	if c.invalidate != nil {
		c.invalidate()
	}

	c.observe(ctx, EpisodeUnauthorized, c.routes.Login)
}

// ObserveForbidden describes the observeforbidden operation and its observable behavior.
//
// ObserveForbidden does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Coordinator) ObserveForbidden(ctx context.Context) {
	if c == nil {
		return
	}
	c.metricInc(MetricForbiddenObserved)

	// Forbidden means authenticated but not permitted. The session survives.
	c.observe(ctx, EpisodeForbidden, c.routes.AccessDenied)
}

// observe applies the per-kind coalescing discipline. The open-question call
// on background Forbidden responses is resolved strictly: every Forbidden
// observation participates, navigational origin or not.
func (c *Coordinator) observe(ctx context.Context, kind EpisodeKind, target string) {
	now := c.now()

	c.mu.Lock()
	if last, ok := c.episodes[kind]; ok && now.Sub(last.FiredAt) <= c.cfg.CoalescingWindow {
		c.mu.Unlock()
		c.metricInc(MetricEpisodeAbsorbed)
		c.emitAudit(ctx, auditEventEpisodeAbsorbed, true, kind, target)
		return
	}

	episode := FailureEpisode{
		ID:      uuid.NewString(),
		Kind:    kind,
		FiredAt: now,
	}
	c.episodes[kind] = episode
	c.mu.Unlock()

	c.metricInc(MetricEpisodeOpened)
	c.emitAudit(ctx, auditEventEpisodeOpened, true, kind, target)

	if c.screenPath(ctx) == target {
		c.metricInc(MetricNavigationSuppressed)
		return
	}

	c.metricInc(MetricNavigationEmitted)
	c.dispatcher.Emit(ctx, NavigationIntent{
		EpisodeID: episode.ID,
		Kind:      kind,
		Target:    target,
		FiredAt:   now,
	})
}

// LastEpisode describes the lastepisode operation and its observable behavior.
//
// LastEpisode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Coordinator) LastEpisode(kind EpisodeKind) (FailureEpisode, bool) {
	if c == nil {
		return FailureEpisode{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	episode, ok := c.episodes[kind]
	return episode, ok
}

// NavigationsDropped describes the navigationsdropped operation and its observable behavior.
//
// NavigationsDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Coordinator) NavigationsDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.dispatcher.Dropped()
}

func (c *Coordinator) screenPath(ctx context.Context) string {
	if path := screenPathFromContext(ctx); path != "" {
		return path
	}
	if c.currentPath != nil {
		return c.currentPath()
	}
	return ""
}

func (c *Coordinator) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Coordinator) emitAudit(ctx context.Context, eventType string, success bool, kind EpisodeKind, target string) {
	if c == nil || c.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: c.now(),
		EventType: eventType,
		Screen:    c.screenPath(ctx),
		Success:   success,
		Metadata: map[string]string{
			"kind":   kind.String(),
			"target": target,
		},
	}
	if label := callLabelFromContext(ctx); label != "" {
		event.Metadata["caller"] = label
	}

	c.audit.Emit(ctx, event)
}
