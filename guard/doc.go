// Package guard evaluates whether a requested screen may render for the
// current session: render, show a loading placeholder while the startup probe
// resolves, or redirect. It is UI-framework-free — hosts consume the Decision
// value — with an http middleware flavor for server-rendered consoles.
package guard
