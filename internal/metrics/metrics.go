package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/events"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/sandbox"
)

const namespace = "forage_runtime"

// Result label values
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Collector records sandbox lifecycle metrics on its own registry.
// It implements sandbox.Observer.
type Collector struct {
	registry *prometheus.Registry

	events       *prometheus.CounterVec
	state        *prometheus.GaugeVec
	reloads      *prometheus.CounterVec
	execs        *prometheus.CounterVec
	execDuration prometheus.Histogram
	nonzeroExits prometheus.Counter
}

var _ sandbox.Observer = (*Collector)(nil)

// NewCollector creates a collector with every state gauge registered at 0
// and idle set to 1.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Lifecycle events emitted, by kind",
			},
			[]string{"kind"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "state",
				Help:      "Current lifecycle state (1 for the active state)",
			},
			[]string{"state"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Hot reloads, by result",
			},
			[]string{"result"},
		),
		execs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exec_total",
				Help:      "Executions, by result",
			},
			[]string{"result"},
		),
		execDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "exec_duration_seconds",
				Help:      "Execution wall time",
				Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
			},
		),
		nonzeroExits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exec_nonzero_exit_total",
				Help:      "Executions that completed with a non-zero exit code",
			},
		),
	}

	c.registry.MustRegister(c.events, c.state, c.reloads, c.execs, c.execDuration, c.nonzeroExits)

	for _, k := range events.Kinds {
		c.events.WithLabelValues(string(k))
	}
	for _, r := range []string{ResultOK, ResultError} {
		c.reloads.WithLabelValues(r)
		c.execs.WithLabelValues(r)
	}
	c.setState(sandbox.StateIdle)

	return c
}

// Registry returns the registry holding the collector's metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an event handler that counts events by kind
func (c *Collector) Handler() events.Handler {
	return func(e events.SandboxEvent) {
		c.events.WithLabelValues(string(e.Kind)).Inc()
	}
}

// HTTPHandler serves the registry in the Prometheus exposition format
func (c *Collector) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// StateChanged implements sandbox.Observer
func (c *Collector) StateChanged(_, to sandbox.State) {
	c.setState(to)
}

// ExecFinished implements sandbox.Observer
func (c *Collector) ExecFinished(resp *runtime.ExecResponse, duration time.Duration, err error) {
	c.execDuration.Observe(duration.Seconds())
	if err != nil {
		c.execs.WithLabelValues(ResultError).Inc()
		return
	}
	c.execs.WithLabelValues(ResultOK).Inc()
	if resp != nil && resp.ExitCode != 0 {
		c.nonzeroExits.Inc()
	}
}

// Reloaded implements sandbox.Observer
func (c *Collector) Reloaded(err error) {
	if err != nil {
		c.reloads.WithLabelValues(ResultError).Inc()
		return
	}
	c.reloads.WithLabelValues(ResultOK).Inc()
}

func (c *Collector) setState(active sandbox.State) {
	for _, s := range sandbox.States {
		v := 0.0
		if s == active {
			v = 1
		}
		c.state.WithLabelValues(string(s)).Set(v)
	}
}
