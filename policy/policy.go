package policy

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrFrozen is an exported constant or variable used by the coordination layer.
var ErrFrozen = errors.New("policy frozen")

// ErrRoleExists is an exported constant or variable used by the coordination layer.
var ErrRoleExists = errors.New("role already registered")

// ErrUnknownRole is an exported constant or variable used by the coordination layer.
var ErrUnknownRole = errors.New("role not registered")

type roleRule struct {
	prefixes []string
	home     string
}

// Policy defines a public type used by parkgate APIs.
//
// Policy instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Policy struct {
	mu     sync.RWMutex
	roles  map[string]roleRule
	frozen bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Policy {
	return &Policy{
		roles: make(map[string]roleRule),
	}
}

// RegisterRole records the allowed path prefixes and home path for a role.
// All validation happens here, fail-fast: an empty allowed set or a home path
// outside the allowed set would otherwise guarantee a redirect loop at
// runtime.
func (p *Policy) RegisterRole(role string, prefixes []string, home string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.frozen {
		return ErrFrozen
	}

	if role == "" {
		return errors.New("role name empty")
	}

	if _, exists := p.roles[role]; exists {
		return ErrRoleExists
	}

	if len(prefixes) == 0 {
		return errors.New("role has no allowed prefixes: " + role)
	}

	normalized := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		n, err := normalizePath(prefix)
		if err != nil {
			return errors.New("invalid prefix for role " + role + ": " + prefix)
		}
		normalized = append(normalized, n)
	}
	sort.Strings(normalized)

	homePath, err := normalizePath(home)
	if err != nil {
		return errors.New("invalid home path for role " + role + ": " + home)
	}
	if !matchAny(normalized, homePath) {
		return errors.New("home path outside allowed set for role " + role)
	}

	p.roles[role] = roleRule{
		prefixes: normalized,
		home:     homePath,
	}
	return nil
}

/*
====================================
QUERIES
*/

// Allowed describes the allowed operation and its observable behavior.
//
// Allowed does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Policy) Allowed(role, path string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rule, ok := p.roles[role]
	if !ok {
		return false
	}

	normalized, err := normalizePath(path)
	if err != nil {
		return false
	}
	return matchAny(rule.prefixes, normalized)
}

// Home describes the home operation and its observable behavior.
//
// Home does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Policy) Home(role string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rule, ok := p.roles[role]
	if !ok {
		return "", false
	}
	return rule.home, true
}

// Prefixes describes the prefixes operation and its observable behavior.
//
// Prefixes does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Policy) Prefixes(role string) ([]string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rule, ok := p.roles[role]
	if !ok {
		return nil, false
	}
	return append([]string(nil), rule.prefixes...), true
}

// Roles describes the roles operation and its observable behavior.
//
// Roles does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Policy) Roles() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.roles))
	for role := range p.roles {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

/*
====================================
FREEZE
*/

// Freeze describes the freeze operation and its observable behavior.
//
// Freeze does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Policy) Freeze() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frozen = true
}

// Frozen describes the frozen operation and its observable behavior.
//
// Frozen does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Policy) Frozen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frozen
}

/*
====================================
COUNT
*/

// Count describes the count operation and its observable behavior.
//
// Count does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Policy) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.roles)
}

// matchAny reports whether path sits under any of the prefixes. A prefix
// matches on exact equality or on a "/"-delimited boundary, so "/cards" does
// not capture "/cardsets".
func matchAny(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		if prefix == "/" {
			return true
		}
		if path == prefix {
			return true
		}
		if strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func normalizePath(p string) (string, error) {
	if p == "" || !strings.HasPrefix(p, "/") {
		return "", errors.New("path must be absolute")
	}
	if p != "/" {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p, nil
}
