// Package policy holds the static role access policy: which path prefixes a
// role may enter and the single home path it is redirected to when it
// attempts a disallowed prefix. Policies are registered during initialization,
// validated at construction time, then frozen; an invalid configuration (a
// role with no allowed prefixes, a home outside its own allowed set) is
// rejected when it is registered, never discovered as a redirect loop at
// runtime.
package policy
