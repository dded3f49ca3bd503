package sandbox

import (
	"context"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/events"
)

// Stop terminates the sandbox process and closes the watchers. Stopping an
// idle sandbox is a no-op.
//
// If the manager fails to stop the process the sandbox moves to failed and
// the returned error carries the cause.
func (r *Runtime) Stop(ctx context.Context, opts StopOptions) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()
	return r.stop(ctx, opts.Force, false)
}

// stop runs the terminating sequence. keepWatchers leaves the watcher set
// and debounce timer open for a reload's following start.
func (r *Runtime) stop(ctx context.Context, force, keepWatchers bool) error {
	if r.State() == StateIdle {
		return nil
	}

	r.update(StateTerminating, nil)
	r.emit(events.KindStopped, "stopping "+r.opts.Command)

	err := r.mgr.Stop(ctx, force)
	if !keepWatchers || err != nil {
		r.supervisor.Close()
	}
	if err != nil {
		r.fail(err)
		return errors.ProcessFailed("stop", err)
	}

	r.update(StateIdle, func(s *RuntimeStatus) {
		s.Runtime.PID = 0
		s.Runtime.RSSBytes = 0
		s.StoppedAt = r.now()
	})
	r.logger.Info("sandbox stopped", "force", force)
	return nil
}

// Close force-stops the sandbox if needed and releases the watchers. After
// Close, Start and Exec fail with an unavailable error. Close is
// idempotent.
func (r *Runtime) Close(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if r.closed {
		return nil
	}

	err := r.stop(ctx, true, false)
	r.supervisor.Close()
	r.closed = true
	return err
}
