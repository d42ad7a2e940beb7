package parkgate

import (
	"context"
	"time"
)

// Role is the closed set of roles the facility API issues.
//
//	Docs: docs/policy.md
type Role string

const (
	// RoleAdmin is an exported constant or variable used by the coordination layer.
	RoleAdmin Role = "admin"
	// RoleGuard is an exported constant or variable used by the coordination layer.
	RoleGuard Role = "guard"
	// RoleUser is an exported constant or variable used by the coordination layer.
	RoleUser Role = "user"
)

// Known describes the known operation and its observable behavior.
//
// Known does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleGuard, RoleUser:
		return true
	default:
		return false
	}
}

// UserProfile is the immutable-once-fetched account record returned by the
// facility API. It is owned by the Client and replaced wholesale on every
// successful authentication or refresh, never partially mutated.
type UserProfile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Phone        string `json:"phone,omitempty"`
	VehiclePlate string `json:"vehicle_plate,omitempty"`
}

// SessionState defines a public type used by parkgate APIs.
//
// SessionState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionState uint8

const (
	// StateUnknown is an exported constant or variable used by the coordination layer.
	StateUnknown SessionState = iota
	// StateChecking is an exported constant or variable used by the coordination layer.
	StateChecking
	// StateAuthenticated is an exported constant or variable used by the coordination layer.
	StateAuthenticated
	// StateUnauthenticated is an exported constant or variable used by the coordination layer.
	StateUnauthenticated
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s SessionState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// Session is the tagged session value consumers read through
// [Client.Current]. User is non-nil only while State is StateAuthenticated.
// Generation increases on every invalidation; in-flight operations compare it
// before applying their result.
type Session struct {
	State      SessionState
	User       *UserProfile
	Generation uint64
}

// Credential is the opaque proof of authentication carried between the client
// and the API boundary. Cookie-mode transports never materialize one; token
// mode stores the bearer token plus the expiry observed from its own claims.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Expired describes the expired operation and its observable behavior.
//
// Expired does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// AuthAPI is the narrow contract the Client consumes from the remote API
// layer: the login/logout endpoints and the "who am I" startup probe. The api
// subpackage provides the HTTP implementation; tests supply fakes.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*UserProfile, Credential, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*UserProfile, error)
}
