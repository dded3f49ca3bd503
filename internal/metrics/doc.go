// Package metrics exposes sandbox lifecycle metrics for Prometheus.
//
// A Collector owns a private registry so several runtimes in one process do
// not collide. Wire it as both an event handler and an observer:
//
//	c := metrics.NewCollector()
//	rt.StreamEvents(c.Handler())
//	rt, _ := sandbox.New(opts, nil, sandbox.WithObserver(c))
//
// Metrics:
//
//	forage_runtime_events_total{kind}
//	forage_runtime_state{state}           one-hot
//	forage_runtime_reloads_total{result}
//	forage_runtime_exec_total{result}
//	forage_runtime_exec_duration_seconds
//	forage_runtime_exec_nonzero_exit_total
package metrics
