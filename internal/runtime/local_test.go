package runtime

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
)

func requireShell(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"sh", "sleep"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available: %v", bin, err)
		}
	}
}

func newTestLocal(t *testing.T, mode config.Mode) *LocalManager {
	t.Helper()
	requireShell(t)

	m := NewLocalManager(ManagerConfig{
		RootDir: t.TempDir(),
		Command: "sleep 30",
		Mode:    mode,
		Timeout: 2 * time.Second,
		Env:     map[string]string{"PORT": "3000"},
		Mounts:  []config.MountPoint{{Source: "/opt/cache", Destination: "/cache", ReadOnly: true}},
	})
	m.GracePeriod = time.Second
	t.Cleanup(func() { _ = m.Stop(context.Background(), true) })
	return m
}

func TestLocalManager_StartStop(t *testing.T) {
	m := newTestLocal(t, config.ModeMemory)
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	st := m.Status(ctx)
	if !st.Running || st.PID == 0 {
		t.Fatalf("Status() after start = %+v", st)
	}

	if err := m.Start(ctx); err == nil {
		t.Error("second Start() should fail while running")
	}

	if err := m.Stop(ctx, false); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if st := m.Status(ctx); st.Running || st.PID != 0 {
		t.Errorf("Status() after stop = %+v", st)
	}

	if err := m.Stop(ctx, false); err != nil {
		t.Errorf("Stop() on stopped manager = %v, want nil", err)
	}
}

func TestLocalManager_ForceStop(t *testing.T) {
	m := newTestLocal(t, config.ModeMemory)
	m.GracePeriod = time.Minute
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	begin := time.Now()
	if err := m.Stop(ctx, true); err != nil {
		t.Fatalf("Stop(force) error: %v", err)
	}
	if elapsed := time.Since(begin); elapsed > 10*time.Second {
		t.Errorf("forced stop took %s", elapsed)
	}
}

func TestLocalManager_StartErrors(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name    string
		command string
	}{
		{"unbalanced quotes", `sleep "30`},
		{"empty", "   "},
		{"missing binary", "forage-runtime-no-such-binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewLocalManager(ManagerConfig{RootDir: t.TempDir(), Command: tt.command, Mode: config.ModeMemory})
			if err := m.Start(context.Background()); err == nil {
				_ = m.Stop(context.Background(), true)
				t.Errorf("Start(%q) should fail", tt.command)
			}
		})
	}
}

func TestLocalManager_Exec(t *testing.T) {
	m := newTestLocal(t, config.ModeMemory)
	ctx := context.Background()

	if _, err := m.Exec(ctx, ExecRequest{Command: "true"}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Exec() before start = %v, want ErrNotRunning", err)
	}

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	resp, err := m.Exec(ctx, ExecRequest{Command: `sh -c 'echo out; echo err >&2; exit 3'`})
	if err != nil {
		t.Fatalf("Exec() error: %v", err)
	}
	if resp.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", resp.ExitCode)
	}
	if resp.Stdout != "out\n" || resp.Stderr != "err\n" {
		t.Errorf("output = %q / %q", resp.Stdout, resp.Stderr)
	}
	if resp.ID == "" {
		t.Error("Exec() should assign an ID")
	}

	resp, err = m.Exec(ctx, ExecRequest{ID: "fixed", Command: "cat", Stdin: "piped"})
	if err != nil {
		t.Fatalf("Exec(stdin) error: %v", err)
	}
	if resp.ID != "fixed" || resp.Stdout != "piped" {
		t.Errorf("Exec(stdin) = %+v", resp)
	}
}

func TestLocalManager_ExecEnvironment(t *testing.T) {
	m := newTestLocal(t, config.ModeMemory)
	ctx := context.Background()
	t.Setenv("FORAGE_TEST_SECRET_TOKEN", "leak")

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	resp, err := m.Exec(ctx, ExecRequest{
		Command: `sh -c 'echo "$FORAGE_RUNTIME_MODE|$FORAGE_RUNTIME_MOUNTS|$PORT|$EXTRA|$FORAGE_TEST_SECRET_TOKEN"'`,
		Env:     map[string]string{"EXTRA": "yes"},
	})
	if err != nil {
		t.Fatalf("Exec() error: %v", err)
	}

	want := "memory|/opt/cache:/cache:ro|3000|yes|\n"
	if resp.Stdout != want {
		t.Errorf("environment = %q, want %q", resp.Stdout, want)
	}
}

func TestLocalManager_ExecTimeout(t *testing.T) {
	m := newTestLocal(t, config.ModeMemory)
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	tests := []struct {
		name    string
		command string
	}{
		{"direct child", "sleep 5"},
		{"shell child holding output", "sh -c 'sleep 3; echo done'"},
		{"background child holding output", "sh -c 'sleep 3 & echo started; wait'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			_, err := m.Exec(ctx, ExecRequest{Command: tt.command, Timeout: 100 * time.Millisecond})
			elapsed := time.Since(start)

			if err == nil || !strings.Contains(err.Error(), "timed out") {
				t.Errorf("Exec() = %v, want timeout error", err)
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Error("timeout error should wrap context.DeadlineExceeded")
			}
			if elapsed > 2*time.Second {
				t.Errorf("Exec() returned after %s, want prompt return on timeout", elapsed)
			}
		})
	}
}

func TestLocalManager_StateDir(t *testing.T) {
	ctx := context.Background()

	t.Run("memory is discarded", func(t *testing.T) {
		m := newTestLocal(t, config.ModeMemory)
		if err := m.Start(ctx); err != nil {
			t.Fatalf("Start() error: %v", err)
		}
		resp, err := m.Exec(ctx, ExecRequest{Command: `sh -c 'printf %s "$FORAGE_RUNTIME_STATE_DIR"'`})
		if err != nil {
			t.Fatalf("Exec() error: %v", err)
		}
		dir := resp.Stdout
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("state dir %q missing while running: %v", dir, err)
		}
		if err := m.Stop(ctx, true); err != nil {
			t.Fatalf("Stop() error: %v", err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("memory state dir %q should be removed on stop", dir)
		}
	})

	t.Run("persist is kept", func(t *testing.T) {
		m := newTestLocal(t, config.ModePersist)
		if err := m.Start(ctx); err != nil {
			t.Fatalf("Start() error: %v", err)
		}
		if err := m.Stop(ctx, true); err != nil {
			t.Fatalf("Stop() error: %v", err)
		}
		dir := filepath.Join(m.cfg.RootDir, ".forage-runtime", "state")
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("persist state dir %q should survive stop", dir)
		}
	})
}

func TestLocalManager_ProcessExit(t *testing.T) {
	requireShell(t)
	ctx := context.Background()

	m := NewLocalManager(ManagerConfig{RootDir: t.TempDir(), Command: "sh -c 'exit 7'", Mode: config.ModeMemory})
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer m.Stop(ctx, true)

	deadline := time.Now().Add(5 * time.Second)
	for {
		st := m.Status(ctx)
		if !st.Running {
			if !strings.Contains(st.ExitError, "7") {
				t.Errorf("ExitError = %q, want exit status 7", st.ExitError)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("process never exited")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMountsValue(t *testing.T) {
	got := mountsValue([]config.MountPoint{
		{Source: "/a", Destination: "/b"},
		{Source: "/c", Destination: "/d", ReadOnly: true},
	})
	if got != "/a:/b,/c:/d:ro" {
		t.Errorf("mountsValue() = %q", got)
	}
	if got := mountsValue(nil); got != "" {
		t.Errorf("mountsValue(nil) = %q", got)
	}
}

func TestConfigFromOptions(t *testing.T) {
	opts := config.Resolve(config.Input{RootDir: "/srv/ws", Command: "node app.js", Mode: config.ModePersist})
	cfg := ConfigFromOptions(opts)
	if cfg.RootDir != "/srv/ws" || cfg.Command != "node app.js" || cfg.Mode != config.ModePersist || cfg.Timeout != config.DefaultTimeout {
		t.Errorf("ConfigFromOptions() = %+v", cfg)
	}
}
