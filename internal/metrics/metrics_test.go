package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/events"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/sandbox"
)

func TestNewCollector_InitialState(t *testing.T) {
	c := NewCollector()

	for _, s := range sandbox.States {
		want := 0.0
		if s == sandbox.StateIdle {
			want = 1
		}
		if got := promtest.ToFloat64(c.state.WithLabelValues(string(s))); got != want {
			t.Errorf("state{%s} = %v, want %v", s, got, want)
		}
	}
}

func TestStateChanged_OneHot(t *testing.T) {
	c := NewCollector()
	c.StateChanged(sandbox.StateIdle, sandbox.StateStarting)
	c.StateChanged(sandbox.StateStarting, sandbox.StateReady)

	if got := promtest.ToFloat64(c.state.WithLabelValues(string(sandbox.StateReady))); got != 1 {
		t.Errorf("state{ready} = %v, want 1", got)
	}
	for _, s := range []sandbox.State{sandbox.StateIdle, sandbox.StateStarting} {
		if got := promtest.ToFloat64(c.state.WithLabelValues(string(s))); got != 0 {
			t.Errorf("state{%s} = %v, want 0", s, got)
		}
	}
}

func TestHandler_CountsEvents(t *testing.T) {
	c := NewCollector()
	bus := events.NewBus()
	bus.Subscribe(c.Handler())

	bus.Emit(events.Build(events.KindBusy, "execution started"))
	bus.Emit(events.Build(events.KindIdle, "execution complete"))
	bus.Emit(events.Build(events.KindBusy, "execution started"))

	tests := []struct {
		kind events.Kind
		want float64
	}{
		{events.KindBusy, 2},
		{events.KindIdle, 1},
		{events.KindError, 0},
	}
	for _, tt := range tests {
		if got := promtest.ToFloat64(c.events.WithLabelValues(string(tt.kind))); got != tt.want {
			t.Errorf("events{%s} = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestExecFinished(t *testing.T) {
	c := NewCollector()

	c.ExecFinished(&runtime.ExecResponse{ExitCode: 0}, 10*time.Millisecond, nil)
	c.ExecFinished(&runtime.ExecResponse{ExitCode: 3}, 20*time.Millisecond, nil)
	c.ExecFinished(nil, time.Second, errors.New("timed out"))

	if got := promtest.ToFloat64(c.execs.WithLabelValues(ResultOK)); got != 2 {
		t.Errorf("exec{ok} = %v, want 2", got)
	}
	if got := promtest.ToFloat64(c.execs.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("exec{error} = %v, want 1", got)
	}
	if got := promtest.ToFloat64(c.nonzeroExits); got != 1 {
		t.Errorf("nonzero exits = %v, want 1", got)
	}
	if got := promtest.CollectAndCount(c.execDuration); got != 1 {
		t.Errorf("exec duration series = %d, want 1", got)
	}
}

func TestReloaded(t *testing.T) {
	c := NewCollector()
	c.Reloaded(nil)
	c.Reloaded(nil)
	c.Reloaded(errors.New("spawn failed"))

	if got := promtest.ToFloat64(c.reloads.WithLabelValues(ResultOK)); got != 2 {
		t.Errorf("reloads{ok} = %v, want 2", got)
	}
	if got := promtest.ToFloat64(c.reloads.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("reloads{error} = %v, want 1", got)
	}
}

func TestHTTPHandler(t *testing.T) {
	c := NewCollector()
	c.Reloaded(nil)

	srv := httptest.NewServer(c.HTTPHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`forage_runtime_reloads_total{result="ok"} 1`,
		`forage_runtime_state{state="idle"} 1`,
		"forage_runtime_exec_duration_seconds",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
