// Package testserver implements TestServer: the abstraction a test suite
// uses to launch a framework-specific HTTP server under an ephemeral
// net.Listener and wait for it to report healthy before driving it
// through ApiClient. The interface is deliberately framework-agnostic —
// an axum-style router, a plain http.Handler, or a hand-rolled listener
// loop all satisfy it the same way.
package testserver

import (
	"context"
	"net"
	"net/http"
)

// HealthStatus is the result of a single health probe.
type HealthStatus int

const (
	// Uncheckable means the TestServer has no health-check logic of its
	// own; Probe falls back to a bare TCP connection test.
	Uncheckable HealthStatus = iota
	// Healthy means the server reported itself ready to accept requests.
	Healthy
	// Unhealthy means the server is reachable but not yet ready.
	Unhealthy
)

// String implements fmt.Stringer.
func (s HealthStatus) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Unhealthy:
		return "unhealthy"
	default:
		return "uncheckable"
	}
}

// TestServer launches a server bound to an already-allocated listener.
// Implementations typically wrap a specific web framework's router.
type TestServer interface {
	// Launch starts the server on ln. It blocks for the server's
	// lifetime and returns only on shutdown or failure.
	Launch(ln net.Listener) error
}

// HealthChecker is an optional capability a TestServer can implement to
// replace Probe's default bare TCP connection test with a real request
// against the running server.
type HealthChecker interface {
	Health(ctx context.Context, client *http.Client) (HealthStatus, error)
}

// Configurer is an optional capability a TestServer can implement to
// override DefaultConfig's backoff parameters.
type Configurer interface {
	Config() Config
}
