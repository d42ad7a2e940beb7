// Package parkgate is the session and authorization coordination layer for the
// parking-facility management clients (web admin console, mobile companion app,
// operational CLI). It owns the process-wide answer to "who is logged in",
// reacts to server-issued authorization failures without redirect storms, and
// decides which screens a role may reach.
//
// The package is designed for concurrent client workloads: Client methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build], even though completions of outbound calls interleave
// unpredictably.
//
// # Architecture boundaries
//
// parkgate is the public surface. It exposes [Client], [Builder], [Config],
// the [CredentialStore] abstraction, the transport [Coordinator], and value
// types (Session, UserProfile, NavigationIntent, MetricsSnapshot). Route
// policy lives in the policy subpackage, screen guarding in guard, the remote
// API binding in api, and credential persistence backends in store.
//
// # What this package must NOT do
//
//   - Talk to any UI framework. Navigation is emitted as intents that the
//     hosting layer consumes through a [NavigationSink].
//   - Hash passwords, issue tokens, or authorize server-side. Those live on
//     the server; this layer only consumes their outcomes.
//   - Swallow or rewrite per-call errors. The [Coordinator] observes responses
//     and triggers side effects, but every call still fails to its own caller
//     with its original error.
//
// # Coordination contract
//
// Bootstrap is memoized: concurrent early callers share one in-flight probe
// and observe one resolved outcome. Authorization-failure episodes are
// coalesced so that N near-simultaneous failures produce exactly one
// navigation. A generation counter guards against a stale success resurrecting
// an invalidated session.
package parkgate
