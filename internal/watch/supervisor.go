package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/workspace"
)

// Config holds Supervisor settings
type Config struct {
	// Root is the validated workspace root
	Root string

	// Debounce is the quiet interval before Trigger runs
	Debounce time.Duration

	// Trigger runs once per burst of changes, on its own goroutine
	Trigger func() error

	// OnError receives errors returned by Trigger after they are logged
	OnError func(error)

	// Factory opens watchers; nil uses NewFSNotifyWatcher
	Factory Factory
}

// Supervisor owns the watcher set and the single debounce timer of one
// sandbox. Activate and Close are not safe to call concurrently with each
// other; the orchestrator serializes them.
type Supervisor struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	watchers []Watcher
	timer    *time.Timer
	pending  bool
	// gen identifies the latest timer; a callback from an earlier one that
	// lost the race for mu must not fire
	gen uint64
}

// NewSupervisor creates a supervisor. Nothing is watched until Activate.
func NewSupervisor(cfg Config) *Supervisor {
	if cfg.Factory == nil {
		cfg.Factory = NewFSNotifyWatcher
	}
	return &Supervisor{
		cfg:    cfg,
		logger: logging.With("component", "watch"),
	}
}

// Active reports whether any watcher is open
func (s *Supervisor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers) > 0
}

// Pending reports whether the debounce timer is armed
func (s *Supervisor) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Activate opens a watcher for each path, resolved under the root. It is a
// no-op while watchers are open. Paths that cannot be resolved or watched
// are logged and skipped.
func (s *Supervisor) Activate(paths []string) {
	if s.Active() {
		return
	}

	var opened []Watcher
	for _, p := range paths {
		dir, err := workspace.ResolvePath(s.cfg.Root, p)
		if err != nil {
			s.logger.Debug("skipping watch path", "path", p, "error", err)
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			s.logger.Debug("skipping watch path", "path", p, "error", err)
			continue
		}
		w, err := s.cfg.Factory(s.cfg.Root, dir, s.Notify)
		if err != nil {
			s.logger.Debug("failed to watch path", "path", p, "error", err)
			continue
		}
		opened = append(opened, w)
	}

	s.mu.Lock()
	s.watchers = append(s.watchers, opened...)
	s.mu.Unlock()

	s.logger.Debug("watchers active", "root", s.cfg.Root, "count", len(opened))
}

// Notify records a change to path. Absolute paths are taken relative to
// the root; paths outside it and ignored paths are dropped. Any other
// change restarts the debounce interval.
func (s *Supervisor) Notify(path string) {
	rel := path
	if filepath.IsAbs(path) {
		var ok bool
		rel, ok = workspace.RelativePath(s.cfg.Root, path)
		if !ok {
			return
		}
	}
	if ShouldIgnore(rel) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.watchers) == 0 {
		return
	}

	s.pending = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.cfg.Debounce, func() { s.fire(gen) })
}

func (s *Supervisor) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.pending || len(s.watchers) == 0 {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.mu.Unlock()

	if s.cfg.Trigger == nil {
		return
	}
	if err := s.cfg.Trigger(); err != nil {
		s.logger.Error("reload failed", "error", err)
		if s.cfg.OnError != nil {
			s.cfg.OnError(err)
		}
	}
}

// Close stops the pending timer and closes every watcher. It does not
// wait for a trigger that is already running. Calling Close on an inactive
// supervisor is a no-op.
func (s *Supervisor) Close() {
	s.mu.Lock()
	watchers := s.watchers
	s.watchers = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = false
	s.mu.Unlock()

	for _, w := range watchers {
		if err := w.Close(); err != nil {
			s.logger.Debug("failed to close watcher", "error", err)
		}
	}
}
