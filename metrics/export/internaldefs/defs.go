package internaldefs

import (
	parkgate "github.com/zg04ckpt/parkgate"
)

// CounterDef defines a public type used by parkgate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   parkgate.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by parkgate APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   parkgate.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the coordination layer.
var CounterDefs = []CounterDef{
	{ID: parkgate.MetricBootstrapSuccess, Name: "parkgate_bootstrap_success_total", Help: "Startup probes resolved to an authenticated session."},
	{ID: parkgate.MetricBootstrapFailure, Name: "parkgate_bootstrap_failure_total", Help: "Startup probes resolved to an unauthenticated session."},
	{ID: parkgate.MetricBootstrapDeduped, Name: "parkgate_bootstrap_deduped_total", Help: "Bootstrap calls answered from the memoized result."},
	{ID: parkgate.MetricBootstrapSkippedExpired, Name: "parkgate_bootstrap_skipped_expired_total", Help: "Startup probes skipped because the stored token was already expired."},
	{ID: parkgate.MetricLoginSuccess, Name: "parkgate_login_success_total", Help: "Successful login attempts."},
	{ID: parkgate.MetricLoginFailure, Name: "parkgate_login_failure_total", Help: "Failed login attempts."},
	{ID: parkgate.MetricLogout, Name: "parkgate_logout_total", Help: "Logout operations."},
	{ID: parkgate.MetricLogoutServerFailure, Name: "parkgate_logout_server_failure_total", Help: "Logouts where the server call failed but local state was cleared."},
	{ID: parkgate.MetricForcedInvalidation, Name: "parkgate_forced_invalidation_total", Help: "Sessions invalidated by an observed authorization failure."},
	{ID: parkgate.MetricUnauthorizedObserved, Name: "parkgate_unauthorized_observed_total", Help: "Observed 401 responses on resource calls."},
	{ID: parkgate.MetricForbiddenObserved, Name: "parkgate_forbidden_observed_total", Help: "Observed 403 responses on resource calls."},
	{ID: parkgate.MetricEpisodeOpened, Name: "parkgate_episode_opened_total", Help: "New failure episodes opened by the coordinator."},
	{ID: parkgate.MetricEpisodeAbsorbed, Name: "parkgate_episode_absorbed_total", Help: "Failures absorbed into an already-open episode."},
	{ID: parkgate.MetricNavigationEmitted, Name: "parkgate_navigation_emitted_total", Help: "Navigation intents handed to the sink."},
	{ID: parkgate.MetricNavigationSuppressed, Name: "parkgate_navigation_suppressed_total", Help: "Navigation intents suppressed because the target was already current."},
	{ID: parkgate.MetricStaleResultDropped, Name: "parkgate_stale_result_dropped_total", Help: "Probe or login results dropped for arriving after an invalidation."},
	{ID: parkgate.MetricGuardRender, Name: "parkgate_guard_render_total", Help: "Route guard decisions that rendered the requested route."},
	{ID: parkgate.MetricGuardLoading, Name: "parkgate_guard_loading_total", Help: "Route guard decisions that held the route in a loading state."},
	{ID: parkgate.MetricGuardRedirect, Name: "parkgate_guard_redirect_total", Help: "Route guard decisions that redirected the caller."},
}

// HistogramDefs is an exported constant or variable used by the coordination layer.
var HistogramDefs = []HistogramDef{
	{ID: parkgate.MetricProbeLatency, Name: "parkgate_probe_latency_seconds", Help: "Session probe latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the coordination layer.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the coordination layer.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
