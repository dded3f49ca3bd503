package health

import (
	"fmt"
	"net/http"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/sandbox"
)

// Status represents the health status of a sandbox
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusStopped   Status = "stopped"
)

// HTTPStatus maps a health status to a response code for probes
func (s Status) HTTPStatus() int {
	switch s {
	case StatusHealthy, StatusDegraded:
		return http.StatusOK
	default:
		return http.StatusServiceUnavailable
	}
}

// CheckResult contains the results of a health check
type CheckResult struct {
	Status    Status        `json:"status"`
	State     sandbox.State `json:"state"`
	PID       int           `json:"pid,omitempty"`
	Uptime    string        `json:"uptime,omitempty"`
	LastError string        `json:"lastError,omitempty"`
}

// Check derives a health verdict from a status snapshot.
//
// A ready or busy sandbox is healthy unless it carries a last error, which
// makes it degraded. Transitional states are degraded, failed is unhealthy
// and idle is stopped.
func Check(st sandbox.RuntimeStatus, now time.Time) CheckResult {
	result := CheckResult{
		State:     st.State,
		PID:       st.Runtime.PID,
		LastError: st.Runtime.LastError,
	}

	switch st.State {
	case sandbox.StateReady, sandbox.StateBusy:
		result.Status = StatusHealthy
		if st.Runtime.LastError != "" {
			result.Status = StatusDegraded
		}
		if !st.ReadyAt.IsZero() {
			result.Uptime = formatDuration(now.Sub(st.ReadyAt))
		}
	case sandbox.StateStarting, sandbox.StateTerminating:
		result.Status = StatusDegraded
	case sandbox.StateFailed:
		result.Status = StatusUnhealthy
	default:
		result.Status = StatusStopped
	}

	return result
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
