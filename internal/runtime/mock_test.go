package runtime

import (
	"context"
	"errors"
	"testing"
)

func TestMockManager_Lifecycle(t *testing.T) {
	m := NewMockManager()
	ctx := context.Background()

	if st := m.Status(ctx); st.PID != 0 || st.Running {
		t.Errorf("Status() before start = %+v", st)
	}

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	first := m.Status(ctx)
	if !first.Running || first.PID == 0 {
		t.Errorf("Status() after start = %+v", first)
	}

	if err := m.Stop(ctx, true); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if m.Running() {
		t.Error("Running() should be false after Stop")
	}

	if err := m.Start(ctx); err != nil {
		t.Fatalf("restart error: %v", err)
	}
	if second := m.Status(ctx); second.PID == first.PID {
		t.Errorf("restart should allocate a new PID, got %d twice", second.PID)
	}

	stops := m.GetCallsFor("Stop")
	if len(stops) != 1 || stops[0].Args[0] != true {
		t.Errorf("Stop calls = %+v", stops)
	}
}

func TestMockManager_StartWhileRunning(t *testing.T) {
	m := NewMockManager()
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	pid := m.Status(ctx).PID

	if err := m.Start(ctx); err == nil {
		t.Fatal("Start() while running should fail like the local manager")
	}
	if got := m.Status(ctx).PID; got != pid {
		t.Errorf("PID = %d after rejected Start, want %d", got, pid)
	}

	m.SetError("Stop", errors.New("kill: operation not permitted"))
	_ = m.Stop(ctx, false)
	if err := m.Start(ctx); err == nil {
		t.Error("a failed Stop should leave the process running")
	}

	m.SetError("Stop", nil)
	if err := m.Stop(ctx, true); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(ctx); err != nil {
		t.Errorf("Start() after Stop error: %v", err)
	}
}

func TestMockManager_Errors(t *testing.T) {
	m := NewMockManager()
	ctx := context.Background()
	boom := errors.New("boom")

	m.SetError("Start", boom)
	if err := m.Start(ctx); !errors.Is(err, boom) {
		t.Errorf("Start() = %v, want boom", err)
	}
	if m.Running() {
		t.Error("failed Start should not mark running")
	}

	m.SetError("Start", nil)
	if err := m.Start(ctx); err != nil {
		t.Errorf("Start() after clearing error = %v", err)
	}

	m.SetError("Exec", boom)
	if _, err := m.Exec(ctx, ExecRequest{Command: "ls"}); !errors.Is(err, boom) {
		t.Errorf("Exec() = %v, want boom", err)
	}
}

func TestMockManager_ExecResults(t *testing.T) {
	m := NewMockManager()
	ctx := context.Background()

	m.SetExecResult("make test", &ExecResponse{ExitCode: 2, Stderr: "FAIL"})

	resp, err := m.Exec(ctx, ExecRequest{ID: "req-1", Command: "make test"})
	if err != nil {
		t.Fatalf("Exec() error: %v", err)
	}
	if resp.ID != "req-1" || resp.ExitCode != 2 || resp.Stderr != "FAIL" {
		t.Errorf("Exec() = %+v", resp)
	}

	resp, err = m.Exec(ctx, ExecRequest{Command: "ls"})
	if err != nil {
		t.Fatalf("Exec() error: %v", err)
	}
	if resp.ExitCode != 0 || resp.ID == "" {
		t.Errorf("default Exec() = %+v", resp)
	}

	calls := m.GetCallsFor("Exec")
	if len(calls) != 2 {
		t.Fatalf("Exec calls = %d, want 2", len(calls))
	}
	if req := calls[0].Args[0].(ExecRequest); req.Command != "make test" {
		t.Errorf("first Exec command = %q", req.Command)
	}
}

func TestMockManager_Hooks(t *testing.T) {
	m := NewMockManager()
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	m.SetHook("Start", func(ctx context.Context) {
		close(entered)
		<-release
	})

	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	<-entered
	if m.Running() {
		t.Error("Start should not complete before its hook returns")
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !m.Running() {
		t.Error("Running() should be true once Start returns")
	}
}

func TestMockManager_Crash(t *testing.T) {
	m := NewMockManager()
	ctx := context.Background()
	m.RSSBytes = 4096

	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if st := m.Status(ctx); st.RSSBytes != 4096 {
		t.Errorf("RSSBytes = %d", st.RSSBytes)
	}

	m.Crash()
	st := m.Status(ctx)
	if st.Running || st.ExitError == "" || st.PID == 0 {
		t.Errorf("Status() after crash = %+v", st)
	}
}

func TestMockManager_Reset(t *testing.T) {
	m := NewMockManager()
	ctx := context.Background()

	_ = m.Start(ctx)
	m.SetError("Stop", errors.New("x"))
	m.Reset()

	if len(m.GetCalls()) != 0 || len(m.Errors) != 0 || m.Running() {
		t.Error("Reset() should clear calls, errors and running state")
	}
}
