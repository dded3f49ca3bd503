// Package audit persists sandbox lifecycle events.
// Events are stored as JSON Lines (JSONL) under the workspace state prefix,
// so journal writes never trigger a hot reload.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/events"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/workspace"
)

// Journal appends and reads the lifecycle events of one workspace.
// Events are stored in {root}/.forage-runtime/events.jsonl.
type Journal struct {
	path string
	mu   sync.Mutex
}

// NewJournal creates a journal for the workspace at root.
func NewJournal(root string) *Journal {
	return &Journal{path: workspace.JournalPath(root)}
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	return j.path
}

// Append writes event to the end of the journal.
func (j *Journal) Append(event events.SandboxEvent) error {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// Handler returns an event bus subscriber that appends every event.
// Write failures are logged, not returned.
func (j *Journal) Handler() events.Handler {
	return func(event events.SandboxEvent) {
		if err := j.Append(event); err != nil {
			logging.Warn("failed to journal event", "kind", event.Kind, "error", err)
		}
	}
}

// Events reads all events in the order they were written.
func (j *Journal) Events() ([]events.SandboxEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	var out []events.SandboxEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event events.SandboxEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		out = append(out, event)
	}

	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("error reading journal: %w", err)
	}

	return out, nil
}

// Remove deletes the journal.
func (j *Journal) Remove() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
