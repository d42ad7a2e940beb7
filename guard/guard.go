package guard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	parkgate "github.com/zg04ckpt/parkgate"
	"github.com/zg04ckpt/parkgate/policy"
)

// DecisionKind defines a public type used by parkgate APIs.
//
// DecisionKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type DecisionKind uint8

const (
	// DecisionRender is an exported constant or variable used by the coordination layer.
	DecisionRender DecisionKind = iota
	// DecisionLoading is an exported constant or variable used by the coordination layer.
	DecisionLoading
	// DecisionRedirect is an exported constant or variable used by the coordination layer.
	DecisionRedirect
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k DecisionKind) String() string {
	switch k {
	case DecisionRender:
		return "render"
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	default:
		return "invalid"
	}
}

// Decision is the guard's verdict for one evaluation. Target is set only for
// DecisionRedirect.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// SessionSource is the session authority the guard reads. *parkgate.Client
// satisfies it.
type SessionSource interface {
	Current() parkgate.Session
	Bootstrap(ctx context.Context) (parkgate.Session, error)
}

// DecisionRecorder is optionally implemented by the session source; when it
// is, every decision is reported for metrics and audit.
type DecisionRecorder interface {
	RecordGuardDecision(decision, path, target string)
}

// Routes defines a public type used by parkgate APIs.
//
// Routes instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Routes struct {
	Login        string
	AccessDenied string
	Public       []string
}

// RoutesFromConfig describes the routesfromconfig operation and its observable behavior.
//
// RoutesFromConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func RoutesFromConfig(cfg parkgate.RoutesConfig) Routes {
	return Routes{
		Login:        cfg.Login,
		AccessDenied: cfg.AccessDenied,
		Public:       append([]string(nil), cfg.Public...),
	}
}

// Guard defines a public type used by parkgate APIs.
//
// Guard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Guard struct {
	source SessionSource
	pol    *policy.Policy
	routes Routes
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(source SessionSource, pol *policy.Policy, routes Routes) (*Guard, error) {
	if source == nil {
		return nil, errors.New("session source required")
	}
	if pol == nil {
		return nil, errors.New("policy required")
	}
	if !pol.Frozen() || pol.Count() == 0 {
		return nil, errors.New("policy must be frozen and non-empty")
	}
	if !strings.HasPrefix(routes.Login, "/") {
		return nil, errors.New("login route must be an absolute path")
	}
	if !strings.HasPrefix(routes.AccessDenied, "/") {
		return nil, errors.New("access-denied route must be an absolute path")
	}

	return &Guard{
		source: source,
		pol:    pol,
		routes: routes,
	}, nil
}

// Evaluate returns the verdict for path without blocking. An Unknown session
// kicks the memoized bootstrap in the background and reports loading; the
// host re-evaluates when the probe resolves. Re-entrant evaluation while
// authenticated is side-effect-free beyond the policy check.
func (g *Guard) Evaluate(ctx context.Context, path string) Decision {
	session := g.source.Current()

	if session.State == parkgate.StateUnknown {
		go func() {
			_, _ = g.source.Bootstrap(context.WithoutCancel(ctx))
		}()
		return g.record(Decision{Kind: DecisionLoading}, path)
	}

	return g.record(g.decide(session, path), path)
}

// EvaluateWait is the blocking flavor: it drives bootstrap to a terminal
// verdict before deciding, so callers never see a loading decision unless ctx
// expires first.
func (g *Guard) EvaluateWait(ctx context.Context, path string) Decision {
	session := g.source.Current()

	if session.State == parkgate.StateUnknown || session.State == parkgate.StateChecking {
		resolved, err := g.source.Bootstrap(ctx)
		if err != nil {
			return g.record(Decision{Kind: DecisionLoading}, path)
		}
		session = resolved
	}

	return g.record(g.decide(session, path), path)
}

func (g *Guard) decide(session parkgate.Session, path string) Decision {
	if g.isPublic(path) {
		if session.State == parkgate.StateAuthenticated && session.User != nil {
			if home, ok := g.pol.Home(string(session.User.Role)); ok {
				return Decision{Kind: DecisionRedirect, Target: home}
			}
		}
		return Decision{Kind: DecisionRender}
	}

	switch session.State {
	case parkgate.StateChecking, parkgate.StateUnknown:
		return Decision{Kind: DecisionLoading}

	case parkgate.StateUnauthenticated:
		return Decision{Kind: DecisionRedirect, Target: g.routes.Login}

	case parkgate.StateAuthenticated:
		if session.User == nil {
			// Session invariant violated upstream; treat as unauthenticated.
			return Decision{Kind: DecisionRedirect, Target: g.routes.Login}
		}
		role := string(session.User.Role)
		if g.pol.Allowed(role, path) {
			return Decision{Kind: DecisionRender}
		}
		if home, ok := g.pol.Home(role); ok {
			// The user is valid, just misrouted. Never back to login.
			return Decision{Kind: DecisionRedirect, Target: home}
		}
		return Decision{Kind: DecisionRedirect, Target: g.routes.AccessDenied}

	default:
		return Decision{Kind: DecisionRedirect, Target: g.routes.Login}
	}
}

func (g *Guard) isPublic(path string) bool {
	for _, p := range g.routes.Public {
		if path == p {
			return true
		}
	}
	return false
}

func (g *Guard) record(d Decision, path string) Decision {
	if recorder, ok := g.source.(DecisionRecorder); ok {
		recorder.RecordGuardDecision(d.Kind.String(), path, d.Target)
	}
	return d
}

// Middleware adapts the guard for a server-rendered console: redirect
// decisions become 302s, everything else falls through to next.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := g.EvaluateWait(r.Context(), r.URL.Path)

		switch decision.Kind {
		case DecisionRedirect:
			http.Redirect(w, r, decision.Target, http.StatusFound)
		case DecisionLoading:
			http.Error(w, "session check timed out", http.StatusServiceUnavailable)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
