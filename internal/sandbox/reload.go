package sandbox

import (
	"context"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
)

// reload restarts a ready sandbox in place. It is the watch trigger: at
// most one reload runs at a time and triggers that overlap one are dropped.
//
// The watchers stay open across the stop/start pair. A failed reload has
// already been recorded in LastError and broadcast as an error event by
// the step that failed; the returned error goes to the supervisor, which
// logs it.
func (r *Runtime) reload() error {
	if !r.opts.Watch.Enabled {
		return nil
	}
	if !r.reloading.CompareAndSwap(false, true) {
		r.logger.Debug("reload already in flight")
		return nil
	}
	defer r.reloading.Store(false)

	r.opMu.Lock()
	defer r.opMu.Unlock()

	if r.closed || r.State() != StateReady {
		return nil
	}

	r.logger.Info("reloading sandbox")

	ctx := context.Background()
	err := r.stop(ctx, true, true)
	if err == nil {
		err = r.start(ctx)
	}

	if err != nil {
		r.supervisor.Close()
		if !errors.Is(err, errors.ErrUnavailable) {
			err = errors.Unavailable("reload", err)
		}
	}

	for _, o := range r.observers {
		o.Reloaded(err)
	}
	return err
}
