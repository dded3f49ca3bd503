// Package server exposes a read-only HTTP view of a running sandbox.
//
// Routes:
//
//	GET /healthz  health verdict; 200 when healthy or degraded, 503 otherwise
//	GET /status   full RuntimeStatus as JSON
//	GET /metrics  Prometheus metrics, when a metrics handler is configured
//
// The server never changes sandbox state.
package server
