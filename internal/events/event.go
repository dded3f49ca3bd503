package events

import (
	"fmt"
	"time"
)

// Kind classifies a lifecycle event.
type Kind string

const (
	KindStarted Kind = "started"
	KindStopped Kind = "stopped"
	KindBusy    Kind = "busy"
	KindIdle    Kind = "idle"
	KindError   Kind = "error"
)

// Kinds lists every event kind in a stable order.
var Kinds = []Kind{KindStarted, KindStopped, KindBusy, KindIdle, KindError}

// SandboxEvent is a point-in-time lifecycle notification.
type SandboxEvent struct {
	Kind    Kind      `json:"type"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"timestamp"`
}

func (e SandboxEvent) String() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Build constructs an event stamped with the current time.
func Build(kind Kind, message string) SandboxEvent {
	return SandboxEvent{
		Kind:    kind,
		Message: message,
		Time:    time.Now(),
	}
}
