// Package api binds the remote parking-facility API: the auth endpoints the
// Client consumes as its AuthAPI, and the resource endpoints (cards, devices,
// parking sessions, invoices, firmware) the console and companion app call.
//
// Every response uses the {success, data, message} envelope. Auth endpoints
// run on a bare transport; resource endpoints run through the coordinator
// transport installed with [Client.UseTransport], so authorization failures
// feed the episode machinery while the original error still reaches the
// caller.
package api
