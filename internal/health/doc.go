// Package health derives a health verdict from a sandbox status snapshot.
//
// # Health Status
//
// Sandbox health is represented by Status:
//
//	StatusHealthy   - Ready or busy, no recorded error
//	StatusDegraded  - Starting, terminating, or ready with a recorded error
//	StatusUnhealthy - Failed
//	StatusStopped   - Idle
//
// # Checking
//
//	result := health.Check(rt.Status(ctx), time.Now())
//	// result.Status, .Uptime, .LastError
//
// Status.HTTPStatus maps a verdict to 200 or 503 for liveness probes.
package health
