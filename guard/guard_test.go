package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parkgate "github.com/zg04ckpt/parkgate"
	"github.com/zg04ckpt/parkgate/policy"
)

type fakeSource struct {
	mu      sync.Mutex
	session parkgate.Session

	bootstraps int
	resolveTo  parkgate.Session

	recorded []string
}

func (f *fakeSource) Current() parkgate.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeSource) Bootstrap(context.Context) (parkgate.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bootstraps++
	f.session = f.resolveTo
	return f.session, nil
}

func (f *fakeSource) RecordGuardDecision(decision, path, target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, decision+" "+path)
}

func (f *fakeSource) set(s parkgate.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = s
}

func authenticated(role parkgate.Role) parkgate.Session {
	return parkgate.Session{
		State: parkgate.StateAuthenticated,
		User:  &parkgate.UserProfile{ID: "user-1", Email: "x@example.com", Role: role},
	}
}

func testRoutes() Routes {
	return RoutesFromConfig(parkgate.DefaultConfig().Routes)
}

func newTestGuard(t *testing.T, source SessionSource) *Guard {
	t.Helper()

	pol, err := policy.Default()
	require.NoError(t, err)

	g, err := New(source, pol, testRoutes())
	require.NoError(t, err)
	return g
}

func TestNewValidation(t *testing.T) {
	pol, err := policy.Default()
	require.NoError(t, err)

	_, err = New(nil, pol, testRoutes())
	assert.Error(t, err)

	_, err = New(&fakeSource{}, nil, testRoutes())
	assert.Error(t, err)

	_, err = New(&fakeSource{}, policy.New(), testRoutes())
	assert.Error(t, err, "an unfrozen policy must be rejected")

	_, err = New(&fakeSource{}, pol, Routes{Login: "login", AccessDenied: "/access-denied"})
	assert.Error(t, err)
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	source := &fakeSource{session: parkgate.Session{State: parkgate.StateUnauthenticated}}
	g := newTestGuard(t, source)

	d := g.Evaluate(context.Background(), "/gate")
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/login", d.Target)
}

func TestAuthenticatedPolicyDecisions(t *testing.T) {
	source := &fakeSource{session: authenticated("guard")}
	g := newTestGuard(t, source)

	assert.Equal(t, Decision{Kind: DecisionRender}, g.Evaluate(context.Background(), "/gate"))
	assert.Equal(t, Decision{Kind: DecisionRender}, g.Evaluate(context.Background(), "/parking-sessions/123"))

	// Misrouted but valid: redirected to the role home, never to login.
	d := g.Evaluate(context.Background(), "/dashboard")
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/gate", d.Target)
}

func TestPublicRouteInversion(t *testing.T) {
	source := &fakeSource{session: parkgate.Session{State: parkgate.StateUnauthenticated}}
	g := newTestGuard(t, source)

	// Signed out: public routes render.
	assert.Equal(t, Decision{Kind: DecisionRender}, g.Evaluate(context.Background(), "/login"))

	// Signed in: the login screen bounces to the role home.
	source.set(authenticated("admin"))
	d := g.Evaluate(context.Background(), "/login")
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/dashboard", d.Target)
}

func TestUnknownSessionLoadsThenResolves(t *testing.T) {
	source := &fakeSource{
		session:   parkgate.Session{State: parkgate.StateUnknown},
		resolveTo: authenticated("guard"),
	}
	g := newTestGuard(t, source)

	d := g.Evaluate(context.Background(), "/gate")
	assert.Equal(t, DecisionLoading, d.Kind, "an unresolved session must not flash a redirect")

	// The background bootstrap resolves; re-evaluation renders.
	require.Eventually(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.bootstraps == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, Decision{Kind: DecisionRender}, g.Evaluate(context.Background(), "/gate"))
}

func TestEvaluateWaitBlocksUntilVerdict(t *testing.T) {
	source := &fakeSource{
		session:   parkgate.Session{State: parkgate.StateUnknown},
		resolveTo: parkgate.Session{State: parkgate.StateUnauthenticated},
	}
	g := newTestGuard(t, source)

	d := g.EvaluateWait(context.Background(), "/gate")
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/login", d.Target)
	assert.Equal(t, 1, source.bootstraps)
}

func TestDecisionsAreRecorded(t *testing.T) {
	source := &fakeSource{session: authenticated("guard")}
	g := newTestGuard(t, source)

	g.Evaluate(context.Background(), "/gate")
	g.Evaluate(context.Background(), "/dashboard")

	source.mu.Lock()
	defer source.mu.Unlock()
	require.Len(t, source.recorded, 2)
	assert.Equal(t, "render /gate", source.recorded[0])
	assert.Equal(t, "redirect /dashboard", source.recorded[1])
}

func TestMiddlewareRedirectsAndRenders(t *testing.T) {
	source := &fakeSource{session: parkgate.Session{State: parkgate.StateUnauthenticated}}
	g := newTestGuard(t, source)

	handler := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gate", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	source.set(authenticated("guard"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
